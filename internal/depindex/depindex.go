// Package depindex implements the Dependency Index (spec §4.C4): a
// reverse map from element name to the set of source paths declaring a
// dependency on it, and the bounded transitive-impact walk the Build
// Planner uses.
package depindex

import (
	"sort"

	"suncc/internal/logging"
	"suncc/internal/model"
)

// Index is the reverse dependency map. It holds only names — no ownership
// over File Records, which remain the Element Store's.
type Index struct {
	log *logging.Logger
	// dependents[name] is the set of source paths with at least one
	// element whose declared_dependencies contains name.
	dependents map[string]map[string]struct{}
	// definedIn[path] is the set of element names declared by path. This
	// is the minimal extra bookkeeping needed to walk name -> dependent
	// path -> that path's own element names -> ... without the Index
	// taking ownership of full File/Element Records.
	definedIn map[string]map[string]struct{}
}

// Rebuild constructs an Index from a store snapshot. The spec requires
// this be eager on load and incremental on update; Rebuild handles the
// eager case, RecordEdge/Forget handle incremental updates within a
// single build.
func Rebuild(files map[string]model.File, log *logging.Logger) *Index {
	idx := &Index{
		log:        log.With(logging.CategoryDepIndex),
		dependents: make(map[string]map[string]struct{}),
		definedIn:  make(map[string]map[string]struct{}),
	}
	for path, f := range files {
		for _, e := range f.Elements {
			idx.addDefined(path, e.Name)
			for _, dep := range e.DeclaredDependencies {
				idx.addEdge(dep, path)
			}
		}
	}
	idx.log.Debug("dependency index rebuilt")
	return idx
}

func (idx *Index) addEdge(name, path string) {
	set, ok := idx.dependents[name]
	if !ok {
		set = make(map[string]struct{})
		idx.dependents[name] = set
	}
	set[path] = struct{}{}
}

func (idx *Index) addDefined(path, name string) {
	set, ok := idx.definedIn[path]
	if !ok {
		set = make(map[string]struct{})
		idx.definedIn[path] = set
	}
	set[name] = struct{}{}
}

// RecordEdge declares that path depends on name. Edges are declared by the
// Structural Analyzer, never inferred from generated code.
func (idx *Index) RecordEdge(path, name string) {
	idx.addEdge(name, path)
}

// Forget removes every edge a File Record for path previously contributed
// (keyed by the element names it used to declare dependencies on) and its
// defined-element-name bookkeeping. Called when a file is re-parsed or
// deleted so stale edges don't linger within a single build.
func (idx *Index) Forget(path string, previouslyDeclaredDeps []string) {
	for _, name := range previouslyDeclaredDeps {
		if set, ok := idx.dependents[name]; ok {
			delete(set, path)
			if len(set) == 0 {
				delete(idx.dependents, name)
			}
		}
	}
	delete(idx.definedIn, path)
}

// DependentsOf returns the source paths with at least one element
// declaring a dependency on name, in lexicographic order.
func (idx *Index) DependentsOf(name string) []string {
	set, ok := idx.dependents[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ElementNamesIn returns the element names the Index knows are declared by
// path, in lexicographic order.
func (idx *Index) ElementNamesIn(path string) []string {
	set, ok := idx.definedIn[path]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// TransitiveImpact collects, for each name in changed, the element names
// declared by every file that depends on it, then those names' own
// dependents, up to depth K (spec §4.C4 default 2). Cycles are handled by
// a visited set. The returned slice is the changed names plus every name
// discovered to transitively depend on them, deduplicated and sorted.
func TransitiveImpact(idx *Index, changed []string, k int) []string {
	visited := make(map[string]struct{}, len(changed))
	frontier := make([]string, 0, len(changed))
	for _, c := range changed {
		if _, ok := visited[c]; !ok {
			visited[c] = struct{}{}
			frontier = append(frontier, c)
		}
	}

	for depth := 0; depth < k && len(frontier) > 0; depth++ {
		var next []string
		for _, name := range frontier {
			for _, depPath := range idx.DependentsOf(name) {
				for _, n := range idx.ElementNamesIn(depPath) {
					if _, ok := visited[n]; !ok {
						visited[n] = struct{}{}
						next = append(next, n)
					}
				}
			}
		}
		frontier = next
	}

	out := make([]string, 0, len(visited))
	for n := range visited {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
