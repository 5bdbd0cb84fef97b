// Package generate implements the Incremental Generator (spec §4.C7): it
// applies a Build Plan of mode incremental, regenerating only the sections
// that changed or were impacted, and splices them back into each affected
// output file.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"suncc/internal/diff"
	"suncc/internal/errs"
	"suncc/internal/fingerprint"
	"suncc/internal/logging"
	"suncc/internal/model"
	"suncc/internal/oracle"
	"suncc/internal/sections"
)

// Target describes one changed source path: the elements that must be
// regenerated (changed plus impacted dependents), which of those are
// deletions, and the output file the regenerated sections belong to.
type Target struct {
	SourcePath   string
	OutputPath   string
	Language     string
	Regenerate   []model.ElementChange // added or modified
	Delete       []string              // element names to drop from the output
}

// Result is the Incremental Generator's result record (spec §4.C7).
type Result struct {
	Modified         []string
	Added            []string
	Deleted          []string
	AffectedElements []string
	ElapsedMS        int64
}

// Options bounds the generator's concurrency and per-call timeout. Verbose
// logs one unified diff per output file, between its previous text and its
// text after all sections are spliced.
type Options struct {
	MaxParallelOracle int
	OracleTimeoutMS   int
	Verbose           bool
}

// DefaultOptions matches the concurrency model's stated defaults: 4
// parallel oracle calls, 30s per-call timeout.
func DefaultOptions() Options {
	return Options{MaxParallelOracle: 4, OracleTimeoutMS: 30000}
}

// Generator runs the incremental regeneration algorithm over a set of
// Targets. It never touches the Element Store directly — callers persist
// the store themselves once Run returns without error, matching the
// state-machine invariant that only Persisting writes the store.
type Generator struct {
	oracle oracle.Oracle
	opts   Options
	log    *logging.Logger
}

// New constructs a Generator bound to an oracle and concurrency options.
func New(o oracle.Oracle, opts Options, log *logging.Logger) *Generator {
	return &Generator{oracle: o, opts: opts, log: log.With(logging.CategoryGenerate)}
}

// Run applies the algorithm of spec §4.C7 per affected source path,
// bounded by errgroup.SetLimit(MaxParallelOracle). A failure on any target
// aborts the whole invocation: no output file for the failing path is
// left partially written, and the caller must not persist Element Store
// entries for any target once Run returns an error.
func (g *Generator) Run(ctx context.Context, targets []Target) (Result, error) {
	start := time.Now()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.MaxParallelOracle)

	type outcome struct {
		target  Target
		wrote   bool
		isNew   bool
	}
	outcomes := make([]outcome, len(targets))

	for i, t := range targets {
		i, t := i, t
		eg.Go(func() error {
			wrote, isNew, err := g.runOne(egCtx, t)
			if err != nil {
				return fmt.Errorf("regenerate %s: %w", t.SourcePath, err)
			}
			outcomes[i] = outcome{target: t, wrote: wrote, isNew: isNew}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		g.log.Error("incremental generation aborted", zap.Error(err))
		return Result{}, err
	}

	result := Result{}
	for _, o := range outcomes {
		if !o.wrote {
			continue
		}
		if o.isNew {
			result.Added = append(result.Added, o.target.OutputPath)
		} else {
			result.Modified = append(result.Modified, o.target.OutputPath)
		}
		for _, ec := range o.target.Regenerate {
			result.AffectedElements = append(result.AffectedElements, ec.Name)
		}
		result.Deleted = append(result.Deleted, o.target.Delete...)
	}
	sort.Strings(result.Modified)
	sort.Strings(result.Added)
	sort.Strings(result.AffectedElements)
	sort.Strings(result.Deleted)

	result.ElapsedMS = time.Since(start).Milliseconds()
	return result, nil
}

func (g *Generator) runOne(ctx context.Context, t Target) (wrote bool, isNew bool, err error) {
	existing, readErr := os.ReadFile(t.OutputPath)
	isNew = readErr != nil

	var current []model.Section
	if !isNew {
		current = sections.Split(string(existing), t.Language)
	}

	for _, ec := range t.Regenerate {
		if ec.Change == model.ElementDeleted {
			current = sections.Remove(current, ec.Name)
			continue
		}

		req := oracle.Request{
			Prompt:         buildPrompt(t, ec),
			TargetLanguage: t.Language,
			MaxTokens:      4096,
			Temperature:    0.2,
			TopP:           0.9,
			TimeoutMS:      g.opts.OracleTimeoutMS,
		}
		resp, callErr := g.oracle.Complete(ctx, req)
		if callErr != nil {
			return false, isNew, callErr
		}

		section := model.Section{
			Kind:        sectionKindFor(ec.Kind),
			ElementName: ec.Name,
			Text:        resp.Code,
			Hash:        fingerprint.Hash(resp.Code, t.Language),
		}
		current = sections.Splice(current, section)
	}

	for _, name := range t.Delete {
		current = sections.Remove(current, name)
	}

	assembled := sections.Assemble(current)

	if g.opts.Verbose {
		fd := diff.ComputeDiff(t.OutputPath, t.OutputPath, string(existing), assembled)
		if rendered := diff.RenderUnified(fd); rendered != "" {
			g.log.Info("section diff", zap.String("path", t.OutputPath), zap.String("diff", rendered))
		}
	}

	if err := writeAtomic(t.OutputPath, assembled); err != nil {
		return false, isNew, errs.NewIO(t.OutputPath, err)
	}

	return true, isNew, nil
}

func buildPrompt(t Target, ec model.ElementChange) string {
	return fmt.Sprintf(
		"Regenerate the %s element %q for %s in %s. Surrounding context digest: %s.",
		ec.Kind, ec.Name, t.SourcePath, t.Language, ec.NewHash,
	)
}

func sectionKindFor(kind model.ElementKind) model.SectionKind {
	switch kind {
	case model.KindFunction:
		return model.SectionFunction
	case model.KindClass, model.KindInterface, model.KindType:
		return model.SectionClass
	case model.KindImport:
		return model.SectionImport
	case model.KindExport:
		return model.SectionExport
	default:
		return model.SectionOther
	}
}

// writeAtomic writes text to path via a temp file plus rename, so a
// cancellation mid-write never leaves a torn output file (spec §5).
func writeAtomic(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
