package main

import (
	"context"
	"fmt"
	"path/filepath"

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
	runSource     string
	runOutput     string
	runTarget     string
	runFull       bool
	runWatch      bool
	runClearCache bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "build the current workspace using its suncc.yaml config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runSource == "" || runOutput == "" {
			return fmt.Errorf("--source and --output are required")
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
			ForceFull:   runFull,
			ClearCache:  runClearCache,
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

		sourceDir := filepath.Join(workspace, runSource)
		outputDir := filepath.Join(workspace, runOutput)

		runOnce := func(ctx context.Context, changed []string) error {
			sources, err := loadSunSources(sourceDir, outputDir, runTarget)
			if err != nil {
				return err
			}
			reqLog := log.WithRequestID(correlationID())
			outcome, err := build.Invoke(ctx, sources, o, opts, reqLog)
			if err != nil {
				return err
			}
			reqLog.Info("run finished", zap.String("mode", string(outcome.Plan.Mode)))
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.BuildTimeout())
		defer cancel()

		if !runWatch {
			return runOnce(ctx, nil)
		}

		w, err := watch.New(sourceDir, watch.Options{
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
	runCmd.Flags().StringVar(&runSource, "source", "src", "source directory, relative to the workspace")
	runCmd.Flags().StringVar(&runOutput, "output", "out", "output directory, relative to the workspace")
	runCmd.Flags().StringVar(&runTarget, "target", "go", "target language")
	runCmd.Flags().BoolVar(&runFull, "full", false, "force a full build")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "watch the source directory")
	runCmd.Flags().BoolVar(&runClearCache, "clear-cache", false, "clear the element store before building")
}
