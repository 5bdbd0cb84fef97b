// Package changedetect implements the Change Detector (spec §4.C3): it
// diffs a new set of File Records against the Element Store baseline and
// emits per-file Change Records.
package changedetect

import (
	"sort"

	"suncc/internal/model"
)

// Detect compares currentFiles (freshly parsed) against the baseline held
// in the store snapshot and returns Change Records in stable,
// lexicographic-by-path order. A file with no element changes and that
// existed in both the baseline and current set is omitted entirely, per
// spec §4.C3: "the record is omitted" when kind would otherwise be empty.
func Detect(currentFiles []model.File, baseline map[string]model.File) []model.Change {
	currentByPath := make(map[string]model.File, len(currentFiles))
	for _, f := range currentFiles {
		currentByPath[f.SourcePath] = f
	}

	paths := make(map[string]struct{}, len(currentByPath)+len(baseline))
	for p := range currentByPath {
		paths[p] = struct{}{}
	}
	for p := range baseline {
		paths[p] = struct{}{}
	}

	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var changes []model.Change
	for _, path := range sorted {
		cur, inCurrent := currentByPath[path]
		prev, inBaseline := baseline[path]

		switch {
		case inCurrent && !inBaseline:
			changes = append(changes, model.Change{
				SourcePath:     path,
				Kind:           model.FileAdded,
				ElementChanges: allAdded(cur.Elements),
			})
		case !inCurrent && inBaseline:
			changes = append(changes, model.Change{
				SourcePath:     path,
				Kind:           model.FileDeleted,
				ElementChanges: allDeleted(prev.Elements),
			})
		case inCurrent && inBaseline:
			elementChanges := diffElements(prev.Elements, cur.Elements)
			if len(elementChanges) > 0 {
				changes = append(changes, model.Change{
					SourcePath:     path,
					Kind:           model.FileModified,
					ElementChanges: elementChanges,
				})
			}
			// else: omitted, per spec.
		}
	}

	return changes
}

func allAdded(elements []model.Element) []model.ElementChange {
	out := make([]model.ElementChange, 0, len(elements))
	for _, e := range elements {
		out = append(out, model.ElementChange{
			Name: e.Name, Kind: e.Kind, NewHash: e.CanonicalHash, Change: model.ElementAdded,
		})
	}
	return out
}

func allDeleted(elements []model.Element) []model.ElementChange {
	out := make([]model.ElementChange, 0, len(elements))
	for _, e := range elements {
		out = append(out, model.ElementChange{
			Name: e.Name, Kind: e.Kind, PrevHash: e.CanonicalHash, Change: model.ElementDeleted,
		})
	}
	return out
}

// elementKey pairs (kind, name) — the matching key the spec mandates. A
// renamed element with an identical hash is deliberately treated as
// delete+add: there is no rename heuristic (spec §4.C3, §9 Open Question).
type elementKey struct {
	kind model.ElementKind
	name string
}

func diffElements(prev, cur []model.Element) []model.ElementChange {
	prevByKey := make(map[elementKey]model.Element, len(prev))
	for _, e := range prev {
		prevByKey[elementKey{e.Kind, e.Name}] = e
	}
	curByKey := make(map[elementKey]model.Element, len(cur))
	for _, e := range cur {
		curByKey[elementKey{e.Kind, e.Name}] = e
	}

	keys := make(map[elementKey]struct{}, len(prevByKey)+len(curByKey))
	for k := range prevByKey {
		keys[k] = struct{}{}
	}
	for k := range curByKey {
		keys[k] = struct{}{}
	}

	// Stable order: by kind, then name.
	sortedKeys := make([]elementKey, 0, len(keys))
	for k := range keys {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Slice(sortedKeys, func(i, j int) bool {
		if sortedKeys[i].kind != sortedKeys[j].kind {
			return sortedKeys[i].kind < sortedKeys[j].kind
		}
		return sortedKeys[i].name < sortedKeys[j].name
	})

	var out []model.ElementChange
	for _, k := range sortedKeys {
		p, inPrev := prevByKey[k]
		c, inCur := curByKey[k]
		switch {
		case inPrev && !inCur:
			out = append(out, model.ElementChange{Name: k.name, Kind: k.kind, PrevHash: p.CanonicalHash, Change: model.ElementDeleted})
		case !inPrev && inCur:
			out = append(out, model.ElementChange{Name: k.name, Kind: k.kind, NewHash: c.CanonicalHash, Change: model.ElementAdded})
		case inPrev && inCur:
			if p.CanonicalHash != c.CanonicalHash {
				out = append(out, model.ElementChange{
					Name: k.name, Kind: k.kind, PrevHash: p.CanonicalHash, NewHash: c.CanonicalHash, Change: model.ElementModified,
				})
			}
		}
	}
	return out
}
