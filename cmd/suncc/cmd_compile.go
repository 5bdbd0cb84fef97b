package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suncc/internal/build"
	"suncc/internal/config"
	"suncc/internal/generate"
	"suncc/internal/oracle"
	"suncc/internal/planner"
	"suncc/internal/watch"
)

var (
	compileInput      string
	compileOutput     string
	compileTarget     string
	compileWatch      bool
	compileForceFull  bool
	compileClearCache bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "compile a directory of .sun sources into the target language",
	RunE: func(cmd *cobra.Command, args []string) error {
		if compileInput == "" || compileOutput == "" {
			return fmt.Errorf("--input and --output are required")
		}

		cfg, err := config.Load(filepath.Join(workspace, "suncc.yaml"), log)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		o, err := oracle.NewGenAIOracle(cmd.Context(), apiKey, cfg.Oracle.Model, log)
		if err != nil {
			return err
		}

		opts := build.Options{
			ProjectRoot: workspace,
			ForceFull:   compileForceFull,
			ClearCache:  compileClearCache,
			Verbose:     verbose,
			Planner: planner.Options{
				RatioThreshold:  cfg.Planner.RatioThreshold,
				TransitiveDepth: cfg.Planner.TransitiveDepth,
			},
			Generate: generate.Options{
				MaxParallelOracle: cfg.Concurrency.MaxParallelOracle,
				OracleTimeoutMS:   int(cfg.OracleTimeout().Milliseconds()),
			},
		}

		runOnce := func(ctx context.Context, changed []string) error {
			sources, err := loadSunSources(compileInput, compileOutput, compileTarget)
			if err != nil {
				return err
			}
			reqLog := log.WithRequestID(correlationID())
			outcome, err := build.Invoke(ctx, sources, o, opts, reqLog)
			if err != nil {
				return err
			}
			reqLog.Info("build finished",
				zap.String("mode", string(outcome.Plan.Mode)),
				zap.Duration("elapsed", outcome.Elapsed),
			)
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if !compileWatch {
			return runOnce(ctx, nil)
		}

		w, err := watch.New(compileInput, watch.Options{
			Debounce:   watch.DefaultOptions().Debounce,
			Extensions: []string{".sun"},
		}, runOnce, log)
		if err != nil {
			return err
		}
		watchCtx, watchCancel := context.WithCancel(cmd.Context())
		defer watchCancel()
		if err := w.Start(watchCtx); err != nil {
			return err
		}
		<-watchCtx.Done()
		w.Stop()
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVar(&compileInput, "input", "", "input directory of .sun sources")
	compileCmd.Flags().StringVar(&compileOutput, "output", "", "output directory for generated files")
	compileCmd.Flags().StringVar(&compileTarget, "target", "go", "target language")
	compileCmd.Flags().BoolVar(&compileWatch, "watch", false, "watch for changes and rebuild incrementally")
	compileCmd.Flags().BoolVar(&compileForceFull, "force-full", false, "force a full build, bypassing the change detector")
	compileCmd.Flags().BoolVar(&compileClearCache, "clear-cache", false, "clear the element store before building")
}

// loadSunSources walks dir for .sun files and maps each to an output path
// under outDir, swapping the extension for target's conventional one.
func loadSunSources(dir, outDir, target string) ([]build.Source, error) {
	var sources []build.Source
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if de.Name() == ".build-cache" || de.Name() == ".git" {
					return godirwalk.SkipThis
				}
				return nil
			}
			if filepath.Ext(path) != ".sun" {
				return nil
			}
			text, readErr := os.ReadFile(path)
			if readErr != nil {
				return readErr
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = filepath.Base(path)
			}
			out := filepath.Join(outDir, strings.TrimSuffix(rel, ".sun")+targetExtension(target))
			sources = append(sources, build.Source{
				Path:       path,
				Language:   target,
				OutputPath: out,
				Text:       string(text),
			})
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	return sources, err
}

func targetExtension(target string) string {
	switch target {
	case "python":
		return ".py"
	case "javascript":
		return ".js"
	case "typescript":
		return ".ts"
	case "java":
		return ".java"
	case "rust":
		return ".rs"
	default:
		return ".go"
	}
}

