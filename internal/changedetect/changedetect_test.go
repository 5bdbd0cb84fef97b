package changedetect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"suncc/internal/model"
)

func elem(kind model.ElementKind, name, hash string) model.Element {
	return model.Element{Kind: kind, Name: name, CanonicalHash: hash}
}

func TestDetectNewFileIsAllAdded(t *testing.T) {
	cur := []model.File{
		{SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "greet", "h1")}},
	}
	changes := Detect(cur, map[string]model.File{})
	require := assert.New(t)
	require.Len(changes, 1)
	require.Equal(model.FileAdded, changes[0].Kind)
	require.Len(changes[0].ElementChanges, 1)
	require.Equal(model.ElementAdded, changes[0].ElementChanges[0].Change)
}

func TestDetectDeletedFileIsAllDeleted(t *testing.T) {
	baseline := map[string]model.File{
		"a.sun": {SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "greet", "h1")}},
	}
	changes := Detect(nil, baseline)
	assert.Len(t, changes, 1)
	assert.Equal(t, model.FileDeleted, changes[0].Kind)
	assert.Equal(t, model.ElementDeleted, changes[0].ElementChanges[0].Change)
}

func TestDetectUnchangedFileIsOmitted(t *testing.T) {
	f := model.File{SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "greet", "h1")}}
	baseline := map[string]model.File{"a.sun": f}
	changes := Detect([]model.File{f}, baseline)
	assert.Empty(t, changes)
}

func TestDetectModifiedElementHashProducesElementModified(t *testing.T) {
	baseline := map[string]model.File{
		"a.sun": {SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "greet", "h1")}},
	}
	cur := []model.File{
		{SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "greet", "h2")}},
	}
	changes := Detect(cur, baseline)
	require := assert.New(t)
	require.Len(changes, 1)
	require.Equal(model.FileModified, changes[0].Kind)
	require.Len(changes[0].ElementChanges, 1)
	ec := changes[0].ElementChanges[0]
	require.Equal(model.ElementModified, ec.Change)
	require.Equal("h1", ec.PrevHash)
	require.Equal("h2", ec.NewHash)
}

func TestDetectRenameIsDeletePlusAdd(t *testing.T) {
	baseline := map[string]model.File{
		"a.sun": {SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "oldName", "h1")}},
	}
	cur := []model.File{
		{SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "newName", "h1")}},
	}
	changes := Detect(cur, baseline)
	require := assert.New(t)
	require.Len(changes, 1)
	require.Len(changes[0].ElementChanges, 2)

	var kinds []model.ElementChangeKind
	for _, ec := range changes[0].ElementChanges {
		kinds = append(kinds, ec.Change)
	}
	require.Contains(kinds, model.ElementAdded)
	require.Contains(kinds, model.ElementDeleted)
}

func TestDetectStableOrderingByPath(t *testing.T) {
	baseline := map[string]model.File{}
	cur := []model.File{
		{SourcePath: "z.sun", Elements: []model.Element{elem(model.KindFunction, "f", "h")}},
		{SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "f", "h")}},
	}
	changes := Detect(cur, baseline)
	require := assert.New(t)
	require.Len(changes, 2)
	require.Equal("a.sun", changes[0].SourcePath)
	require.Equal("z.sun", changes[1].SourcePath)
}

func TestDetectUnrelatedKindWithSameNameIsNotConflated(t *testing.T) {
	baseline := map[string]model.File{
		"a.sun": {SourcePath: "a.sun", Elements: []model.Element{elem(model.KindFunction, "widget", "h1")}},
	}
	cur := []model.File{
		{SourcePath: "a.sun", Elements: []model.Element{
			elem(model.KindFunction, "widget", "h1"),
			elem(model.KindType, "widget", "h2"),
		}},
	}
	changes := Detect(cur, baseline)
	require := assert.New(t)
	require.Len(changes, 1)
	require.Len(changes[0].ElementChanges, 1)
	require.Equal(model.KindType, changes[0].ElementChanges[0].Kind)
	require.Equal(model.ElementAdded, changes[0].ElementChanges[0].Change)
}
