package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIgnoresTrailingWhitespace(t *testing.T) {
	a := "func greet() {   \n  print(\"hi\")\n}\n"
	b := "func greet() {\n  print(\"hi\")\n}\n"
	assert.Equal(t, Hash(a, "go"), Hash(b, "go"))
}

func TestHashIgnoresLineCommentsForLanguage(t *testing.T) {
	a := "func greet() {\n  // say hi\n  print(\"hi\")\n}\n"
	b := "func greet() {\n  print(\"hi\")\n}\n"
	assert.Equal(t, Hash(a, "go"), Hash(b, "go"))
}

func TestHashIgnoresCommentOnlyLines(t *testing.T) {
	a := "// a comment\nfunc greet() {}\n"
	b := "func greet() {}\n"
	assert.Equal(t, Hash(a, "go"), Hash(b, "go"))
}

func TestHashDoesNotStripBlockComments(t *testing.T) {
	a := "/* block comment */\nfunc greet() {}\n"
	b := "func greet() {}\n"
	assert.NotEqual(t, Hash(a, "go"), Hash(b, "go"))
}

func TestHashCollapsesRunsOfBlankLines(t *testing.T) {
	a := "func a() {}\n\n\n\nfunc b() {}\n"
	b := "func a() {}\n\nfunc b() {}\n"
	assert.Equal(t, Hash(a, "go"), Hash(b, "go"))
}

func TestHashNormalizesLineEndings(t *testing.T) {
	a := "func greet() {\r\n  print(1)\r\n}\r\n"
	b := "func greet() {\n  print(1)\n}\n"
	assert.Equal(t, Hash(a, "go"), Hash(b, "go"))
}

func TestHashDiffersOnRealChange(t *testing.T) {
	a := "func greet() { print(1) }\n"
	b := "func greet() { print(2) }\n"
	assert.NotEqual(t, Hash(a, "go"), Hash(b, "go"))
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	text := "func greet() {\n  // hi\n  print(1)\n\n\n}\n"
	once := Canonicalize(text, "go")
	twice := Canonicalize(once, "go")
	assert.Equal(t, once, twice)
}

func TestHashSpanExtractsInclusiveLineRange(t *testing.T) {
	text := "line1\nline2\nline3\nline4\nline5\n"
	expected := Hash("line2\nline3\nline4", "")
	assert.Equal(t, expected, HashSpan(text, "", 2, 4))
}

func TestHashSpanClampsOutOfRangeBounds(t *testing.T) {
	text := "line1\nline2\nline3\n"
	expected := Hash("line1\nline2\nline3", "")
	assert.Equal(t, expected, HashSpan(text, "", 0, 100))
}

func TestHashUnknownLanguageFallsBackToDefaultPrefixes(t *testing.T) {
	text := "# a python-ish comment\nprint(1)\n"
	assert.Equal(t, Hash("print(1)\n", ""), Hash(text, "unknown-language"))
}
