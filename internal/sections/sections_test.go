package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suncc/internal/model"
)

const sampleGo = `import (
	"fmt"
)

func foo() {
	fmt.Println("foo")
}

func bar() {
	fmt.Println("bar")
}
`

func TestSplitOrdersSectionsByAnchor(t *testing.T) {
	secs := Split(sampleGo, "go")
	require.Len(t, secs, 3)
	assert.Equal(t, model.SectionImport, secs[0].Kind)
	assert.Equal(t, "foo", secs[1].ElementName)
	assert.Equal(t, "bar", secs[2].ElementName)
}

func TestRoundTripSplitAssemble(t *testing.T) {
	secs := Split(sampleGo, "go")
	out := Assemble(secs)
	assert.Equal(t, strings.TrimSpace(sampleGo), strings.TrimSpace(out))
}

func TestSpliceReplacesByElementName(t *testing.T) {
	secs := Split(sampleGo, "go")
	replacement := model.Section{
		Kind:        model.SectionFunction,
		ElementName: "foo",
		Text:        "func foo() {\n\tfmt.Println(\"changed\")\n}",
	}
	spliced := Splice(secs, replacement)

	require.Len(t, spliced, 3)
	assert.Contains(t, spliced[1].Text, "changed")
}

func TestSpliceAppendsNewSectionBeforeExports(t *testing.T) {
	withExport := append(Split(sampleGo, "go"), model.Section{
		Kind: model.SectionExport,
		Text: "export { foo, bar }",
	})
	newFn := model.Section{Kind: model.SectionFunction, ElementName: "baz", Text: "func baz() {}"}

	spliced := Splice(withExport, newFn)
	assert.Equal(t, "baz", spliced[len(spliced)-2].ElementName)
	assert.Equal(t, model.SectionExport, spliced[len(spliced)-1].Kind)
}

func TestRemoveDropsSectionByName(t *testing.T) {
	secs := Split(sampleGo, "go")
	removed := Remove(secs, "foo")

	for _, s := range removed {
		assert.NotEqual(t, "foo", s.ElementName)
	}
}
