package depindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suncc/internal/logging"
	"suncc/internal/model"
)

func buildFiles() map[string]model.File {
	return map[string]model.File{
		"foo.go": {
			SourcePath: "foo.go",
			Elements: []model.Element{
				{Name: "foo", Kind: model.KindFunction},
			},
		},
		"baz.go": {
			SourcePath: "baz.go",
			Elements: []model.Element{
				{Name: "baz", Kind: model.KindFunction, DeclaredDependencies: []string{"foo"}},
			},
		},
		"qux.go": {
			SourcePath: "qux.go",
			Elements: []model.Element{
				{Name: "qux", Kind: model.KindFunction, DeclaredDependencies: []string{"baz"}},
			},
		},
	}
}

func TestRebuildAndDependentsOf(t *testing.T) {
	idx := Rebuild(buildFiles(), logging.NewNop())

	assert.Equal(t, []string{"baz.go"}, idx.DependentsOf("foo"))
	assert.Equal(t, []string{"qux.go"}, idx.DependentsOf("baz"))
	assert.Nil(t, idx.DependentsOf("nonexistent"))
}

func TestTransitiveImpactCascades(t *testing.T) {
	idx := Rebuild(buildFiles(), logging.NewNop())

	impact := TransitiveImpact(idx, []string{"foo"}, 2)
	require.Contains(t, impact, "foo")
	require.Contains(t, impact, "baz")
	require.Contains(t, impact, "qux")
}

func TestTransitiveImpactRespectsDepth(t *testing.T) {
	idx := Rebuild(buildFiles(), logging.NewNop())

	impact := TransitiveImpact(idx, []string{"foo"}, 1)
	assert.Contains(t, impact, "foo")
	assert.Contains(t, impact, "baz")
	assert.NotContains(t, impact, "qux")
}

func TestTransitiveImpactHandlesCycles(t *testing.T) {
	files := map[string]model.File{
		"a.go": {SourcePath: "a.go", Elements: []model.Element{
			{Name: "a", Kind: model.KindFunction, DeclaredDependencies: []string{"b"}},
		}},
		"b.go": {SourcePath: "b.go", Elements: []model.Element{
			{Name: "b", Kind: model.KindFunction, DeclaredDependencies: []string{"a"}},
		}},
	}
	idx := Rebuild(files, logging.NewNop())

	impact := TransitiveImpact(idx, []string{"a"}, 5)
	assert.ElementsMatch(t, []string{"a", "b"}, impact)
}

func TestForgetRemovesEdges(t *testing.T) {
	idx := Rebuild(buildFiles(), logging.NewNop())
	idx.Forget("baz.go", []string{"foo"})

	assert.Nil(t, idx.DependentsOf("foo"))
	assert.Nil(t, idx.ElementNamesIn("baz.go"))
}

func TestRecordEdge(t *testing.T) {
	idx := Rebuild(buildFiles(), logging.NewNop())
	idx.RecordEdge("newfile.go", "foo")

	assert.Contains(t, idx.DependentsOf("foo"), "newfile.go")
}
