package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDiffDetectsAddedLine(t *testing.T) {
	old := "func greet() {\n  print(\"hi\")\n}\n"
	new := "func greet() {\n  print(\"hi\")\n  print(\"bye\")\n}\n"
	fd := ComputeDiff("greet.go", "greet.go", old, new)
	require := assert.New(t)
	require.False(fd.IsNew)
	require.False(fd.IsDelete)
	require.NotEmpty(fd.Hunks)

	var sawAdded bool
	for _, h := range fd.Hunks {
		for _, l := range h.Lines {
			if l.Type == LineAdded && strings.Contains(l.Content, "bye") {
				sawAdded = true
			}
		}
	}
	require.True(sawAdded)
}

func TestComputeDiffEmptyOldIsNew(t *testing.T) {
	fd := ComputeDiff("greet.go", "greet.go", "", "func greet() {}\n")
	assert.True(t, fd.IsNew)
}

func TestComputeDiffEmptyNewIsDelete(t *testing.T) {
	fd := ComputeDiff("greet.go", "greet.go", "func greet() {}\n", "")
	assert.True(t, fd.IsDelete)
}

func TestComputeDiffIdenticalContentHasNoHunks(t *testing.T) {
	same := "func greet() {}\n"
	fd := ComputeDiff("greet.go", "greet.go", same, same)
	assert.Empty(t, fd.Hunks)
}

func TestRenderUnifiedProducesPlusMinusLines(t *testing.T) {
	fd := ComputeDiff("a.go", "a.go", "line one\nline two\n", "line one\nline three\n")
	out := RenderUnified(fd)
	assert.Contains(t, out, "--- a.go")
	assert.Contains(t, out, "+++ a.go")
	assert.Contains(t, out, "-line two")
	assert.Contains(t, out, "+line three")
}

func TestRenderUnifiedEmptyDiffIsEmptyString(t *testing.T) {
	fd := ComputeDiff("a.go", "a.go", "same\n", "same\n")
	assert.Equal(t, "", RenderUnified(fd))
}

func TestEngineCachesIdenticalInputPairs(t *testing.T) {
	e := NewEngine()
	first := e.ComputeDiff("a.go", "a.go", "x\n", "y\n")
	second := e.ComputeDiff("a.go", "a.go", "x\n", "y\n")
	assert.Equal(t, first.Hunks, second.Hunks)
}

func TestEngineClearCacheResetsState(t *testing.T) {
	e := NewEngine()
	e.ComputeDiff("a.go", "a.go", "x\n", "y\n")
	e.ClearCache()
	// no panic, and a fresh compute still works
	fd := e.ComputeDiff("a.go", "a.go", "x\n", "y\n")
	assert.NotEmpty(t, fd.Hunks)
}
