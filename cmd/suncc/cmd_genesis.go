package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suncc/internal/build"
	"suncc/internal/config"
	"suncc/internal/errs"
	"suncc/internal/generate"
	"suncc/internal/manifest"
	"suncc/internal/oracle"
	"suncc/internal/planner"
	"suncc/internal/watch"
)

var (
	genesisFile       string
	genesisFull       bool
	genesisWatch      bool
	genesisClearCache bool
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "build a project from a genesis manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		if genesisFile == "" {
			return fmt.Errorf("--file is required")
		}

		f, err := os.Open(genesisFile)
		if err != nil {
			return errs.NewValidation("open genesis manifest", err)
		}
		m, err := manifest.Parse(f)
		f.Close()
		if err != nil {
			return errs.NewValidation("parse genesis manifest", err)
		}
		if err := manifest.Validate(m); err != nil {
			return errs.NewValidation("validate genesis manifest", err)
		}

		manifestDir := filepath.Dir(genesisFile)
		sourceDir := filepath.Join(manifestDir, m.Source)
		outputDir := filepath.Join(manifestDir, m.Output)
		target := m.Domain
		if target == "" {
			target = "go"
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
			ProjectRoot: manifestDir,
			ForceFull:   genesisFull,
			ClearCache:  genesisClearCache,
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

		log.Info("genesis manifest loaded",
			zap.String("project", m.Project),
			zap.Int("questions", len(m.Questions)),
		)

		runOnce := func(ctx context.Context, changed []string) error {
			sources, err := loadSunSources(sourceDir, outputDir, target)
			if err != nil {
				return err
			}
			reqLog := log.WithRequestID(correlationID())
			outcome, err := build.Invoke(ctx, sources, o, opts, reqLog)
			if err != nil {
				return err
			}
			reqLog.Info("genesis build finished", zap.String("mode", string(outcome.Plan.Mode)))
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if !genesisWatch {
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
	genesisCmd.Flags().StringVar(&genesisFile, "file", "", "path to a genesis manifest")
	genesisCmd.Flags().BoolVar(&genesisFull, "full", false, "force a full build")
	genesisCmd.Flags().BoolVar(&genesisWatch, "watch", false, "watch the manifest's source directory")
	genesisCmd.Flags().BoolVar(&genesisClearCache, "clear-cache", false, "clear the element store before building")
}
