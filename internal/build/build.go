// Package build drives one Build Invocation end to end: Scanning →
// Parsing → Diffing → Planning → (Incremental | Full | NoOp) →
// Persisting, per spec §4.C7's state machine. It is the glue that wires
// C1–C7 together for the cmd/suncc subcommands.
package build

import (
	"context"
	"path/filepath"
	"time"

	"suncc/internal/changedetect"
	"suncc/internal/depindex"
	"suncc/internal/errs"
	"suncc/internal/fingerprint"
	"suncc/internal/generate"
	"suncc/internal/logging"
	"suncc/internal/model"
	"suncc/internal/oracle"
	"suncc/internal/planner"
	"suncc/internal/store"
	"suncc/internal/sunparse"
)

// Source is one input file to a build: its path, language, and the output
// path it is compiled to.
type Source struct {
	Path       string
	Language   string
	OutputPath string
	Text       string
}

// Options configures a single Build Invocation.
type Options struct {
	ProjectRoot string
	ForceFull   bool
	ClearCache  bool
	Verbose     bool
	Planner     planner.Options
	Generate    generate.Options
}

// Outcome summarizes what the invocation did.
type Outcome struct {
	Plan    model.Plan
	Result  generate.Result
	Elapsed time.Duration
}

// Invoke runs Scanning (already done by the caller, which supplies
// sources) through Persisting. The Element Store is the only state
// mutated, and only once Generating succeeds — matching the
// Idle→Detecting→Planning→…→Persisting→Idle invariant that an error
// before Persisting leaves the store untouched.
func Invoke(ctx context.Context, sources []Source, o oracle.Oracle, opts Options, log *logging.Logger) (Outcome, error) {
	start := time.Now()
	log = log.With(logging.CategoryPlan)

	st, err := store.Open(opts.ProjectRoot, log)
	if err != nil {
		return Outcome{}, errs.NewCache("open element store", err)
	}
	if opts.ClearCache {
		st.Clear()
	}

	currentFiles := make([]model.File, 0, len(sources))
	bySourcePath := make(map[string]Source, len(sources))
	for _, src := range sources {
		bySourcePath[src.Path] = src

		var elements []model.Element
		if filepath.Ext(src.Path) == ".sun" {
			elements = sunparse.Parse(src.Text)
		}
		for i := range elements {
			elements[i].CanonicalHash = fingerprint.HashSpan(src.Text, src.Language, elements[i].StartLine, elements[i].EndLine)
		}

		currentFiles = append(currentFiles, model.File{
			SourcePath:  src.Path,
			FileHash:    fingerprint.Hash(src.Text, src.Language),
			Elements:    elements,
			OutputPaths: []string{src.OutputPath},
			Language:    src.Language,
		})
	}

	baseline := st.Snapshot()
	changes := changedetect.Detect(currentFiles, baseline)

	idx := depindex.Rebuild(baseline, log)

	plannerOpts := opts.Planner
	if opts.ForceFull {
		plannerOpts.ForceFull = true
	}
	plan := planner.Plan(changes, st.Cold(), len(currentFiles), idx, plannerOpts, log)

	genOpts := opts.Generate
	if opts.Verbose {
		genOpts.Verbose = true
	}

	outcome := Outcome{Plan: plan}

	switch plan.Mode {
	case model.ModeNoOp:
		outcome.Elapsed = time.Since(start)
		return outcome, nil

	case model.ModeFull:
		targets := fullTargets(currentFiles, bySourcePath)
		gen := generate.New(o, genOpts, log)
		result, err := gen.Run(ctx, targets)
		if err != nil {
			return Outcome{}, err
		}
		for _, f := range currentFiles {
			st.Put(f.SourcePath, f)
		}
		if err := st.Save(); err != nil {
			return Outcome{}, err
		}
		outcome.Result = result
		outcome.Elapsed = time.Since(start)
		return outcome, nil

	default: // incremental
		targets := incrementalTargets(changes, plan, currentFiles, bySourcePath)
		gen := generate.New(o, genOpts, log)
		result, err := gen.Run(ctx, targets)
		if err != nil {
			return Outcome{}, err
		}
		for _, c := range changes {
			if c.Kind == model.FileDeleted {
				st.Remove(c.SourcePath)
				continue
			}
			for _, f := range currentFiles {
				if f.SourcePath == c.SourcePath {
					st.Put(f.SourcePath, f)
					break
				}
			}
		}
		if err := st.Save(); err != nil {
			return Outcome{}, err
		}
		outcome.Result = result
		outcome.Elapsed = time.Since(start)
		return outcome, nil
	}
}

// fullTargets regenerates every element of every current file.
func fullTargets(files []model.File, sources map[string]Source) []generate.Target {
	targets := make([]generate.Target, 0, len(files))
	for _, f := range files {
		src := sources[f.SourcePath]
		regen := make([]model.ElementChange, 0, len(f.Elements))
		for _, e := range f.Elements {
			regen = append(regen, model.ElementChange{Name: e.Name, Kind: e.Kind, NewHash: e.CanonicalHash, Change: model.ElementAdded})
		}
		targets = append(targets, generate.Target{
			SourcePath: f.SourcePath,
			OutputPath: src.OutputPath,
			Language:   f.Language,
			Regenerate: regen,
		})
	}
	return targets
}

// incrementalTargets regenerates the changed elements (from the Change
// Records) plus every impacted dependent (from the Build Plan's bounded
// transitive walk), including dependents that live in files with no
// Change Record of their own (spec §4.C4 cascade: modifying foo must also
// regenerate baz's section when baz declares a dependency on foo, even
// though baz's own file didn't change).
func incrementalTargets(changes []model.Change, plan model.Plan, files []model.File, sources map[string]Source) []generate.Target {
	filesByPath := make(map[string]model.File, len(files))
	for _, f := range files {
		filesByPath[f.SourcePath] = f
	}

	// elementOwners maps an element name to every source path that
	// currently defines it, so an impacted name can be resolved to a
	// target even when it isn't in the changed-files set.
	elementOwners := make(map[string][]string)
	for _, f := range files {
		for _, e := range f.Elements {
			elementOwners[e.Name] = append(elementOwners[e.Name], f.SourcePath)
		}
	}

	targetsByPath := make(map[string]*generate.Target, len(changes))
	// regeneratedNames tracks, per path, which element names already have
	// a pending regeneration — from their own Change Record or from an
	// earlier impact match — so the impact walk (which includes the
	// changed names themselves) never queues the same element twice.
	regeneratedNames := make(map[string]map[string]struct{}, len(changes))
	var order []string

	for _, c := range changes {
		src, ok := sources[c.SourcePath]
		if !ok {
			continue
		}
		f := filesByPath[c.SourcePath]

		var regen []model.ElementChange
		var del []string
		seen := make(map[string]struct{}, len(c.ElementChanges))
		for _, ec := range c.ElementChanges {
			seen[ec.Name] = struct{}{}
			if ec.Change == model.ElementDeleted {
				del = append(del, ec.Name)
				continue
			}
			regen = append(regen, ec)
		}
		regeneratedNames[c.SourcePath] = seen

		targetsByPath[c.SourcePath] = &generate.Target{
			SourcePath: c.SourcePath,
			OutputPath: src.OutputPath,
			Language:   f.Language,
			Regenerate: regen,
			Delete:     del,
		}
		order = append(order, c.SourcePath)
	}

	for _, name := range plan.Impact {
		for _, path := range elementOwners[name] {
			if _, already := regeneratedNames[path][name]; already {
				continue
			}
			f := filesByPath[path]
			var element model.Element
			found := false
			for _, e := range f.Elements {
				if e.Name == name {
					element = e
					found = true
					break
				}
			}
			if !found {
				continue
			}

			t, ok := targetsByPath[path]
			if !ok {
				src, ok := sources[path]
				if !ok {
					continue
				}
				t = &generate.Target{
					SourcePath: path,
					OutputPath: src.OutputPath,
					Language:   f.Language,
				}
				targetsByPath[path] = t
				order = append(order, path)
			}
			if regeneratedNames[path] == nil {
				regeneratedNames[path] = make(map[string]struct{})
			}

			t.Regenerate = append(t.Regenerate, model.ElementChange{
				Name: element.Name, Kind: element.Kind, NewHash: element.CanonicalHash, Change: model.ElementModified,
			})
			regeneratedNames[path][name] = struct{}{}
		}
	}

	targets := make([]generate.Target, 0, len(order))
	for _, path := range order {
		targets = append(targets, *targetsByPath[path])
	}
	return targets
}


