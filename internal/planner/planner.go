// Package planner implements the Build Planner (spec §4.C5): it turns the
// Change Detector's output into a Build Plan deciding whether to run an
// incremental, full, or no-op build.
package planner

import (
	"sort"

	"suncc/internal/depindex"
	"suncc/internal/logging"
	"suncc/internal/model"
)

// Options carries the tunables the decision rules consult. Defaults mirror
// spec §4.C5: a ratio of changed files over total files above Threshold
// forces a full build, and TransitiveDepth (K) bounds the impact walk.
type Options struct {
	ForceFull       bool
	RatioThreshold  float64
	TransitiveDepth int
}

// DefaultOptions matches the documented defaults: a ratio_threshold of
// 0.20 and a transitive impact depth K of 2.
func DefaultOptions() Options {
	return Options{RatioThreshold: 0.20, TransitiveDepth: 2}
}

// Plan applies the five ordered decision rules from spec §4.C5 and returns
// a Build Plan. totalFileCount is the size of the full known corpus (for
// the ratio rule); idx is the Dependency Index rebuilt from the Element
// Store baseline, used to compute incremental impact.
func Plan(changes []model.Change, cold bool, totalFileCount int, idx *depindex.Index, opts Options, log *logging.Logger) model.Plan {
	log = log.With(logging.CategoryPlan)

	// Rule 1: forced or cold store -> full.
	if opts.ForceFull {
		log.Info("full build: forced")
		return model.Plan{Mode: model.ModeFull, Rationale: "full build forced"}
	}
	if cold {
		log.Info("full build: cold store")
		return model.Plan{Mode: model.ModeFull, Rationale: "element store is cold"}
	}

	// Rule 2: no Change Records -> no-op.
	if len(changes) == 0 {
		log.Info("no-op: no changes detected")
		return model.Plan{Mode: model.ModeNoOp, Rationale: "no changes detected"}
	}

	// Rule 3: change ratio exceeds threshold -> full.
	if totalFileCount > 0 {
		ratio := float64(len(changes)) / float64(totalFileCount)
		if ratio > opts.RatioThreshold {
			log.Info("full build: change ratio exceeded")
			return model.Plan{Mode: model.ModeFull, Rationale: "change ratio exceeded threshold"}
		}
	}

	// Rule 4: any structural change (file added/deleted, or an element
	// added/deleted) -> full.
	for _, c := range changes {
		if c.HasStructuralChange() {
			log.Info("full build: structural change")
			return model.Plan{Mode: model.ModeFull, Rationale: "structural change detected"}
		}
	}

	// Rule 5: incremental. Affected is the set of changed files; Impact is
	// the transitive closure of changed element names over the Dependency
	// Index, bounded to depth K.
	affected := affectedPaths(changes)
	changedNames := changedElementNames(changes)
	impact := depindex.TransitiveImpact(idx, changedNames, opts.TransitiveDepth)

	log.Info("incremental build planned")
	return model.Plan{
		Mode:      model.ModeIncremental,
		Affected:  affected,
		Impact:    impact,
		Rationale: "incremental: bounded transitive impact",
	}
}

func affectedPaths(changes []model.Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.SourcePath)
	}
	sort.Strings(out)
	return out
}

func changedElementNames(changes []model.Change) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range changes {
		for _, ec := range c.ElementChanges {
			if _, ok := seen[ec.Name]; !ok {
				seen[ec.Name] = struct{}{}
				out = append(out, ec.Name)
			}
		}
	}
	sort.Strings(out)
	return out
}
