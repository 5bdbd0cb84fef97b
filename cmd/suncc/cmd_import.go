package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/karrick/godirwalk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suncc/internal/analysiscache"
	"suncc/internal/config"
	"suncc/internal/errs"
	"suncc/internal/langdetect"
	"suncc/internal/logging"
	"suncc/internal/model"
	"suncc/internal/oracle"
	"suncc/internal/quality"
	"suncc/internal/structural"
	"suncc/internal/synth"
)

var (
	importOutput   string
	importSource   string
	importComments bool
)

var importCmd = &cobra.Command{
	Use:   "import <github-url>",
	Short: "clone a GitHub repository and run the reverse-compilation analysis pipeline over it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoURL := args[0]
		if importOutput == "" {
			return fmt.Errorf("--output is required")
		}

		cloneDir, err := os.MkdirTemp("", "suncc-import-*")
		if err != nil {
			return errs.NewIO("create clone directory", err)
		}
		defer os.RemoveAll(cloneDir)

		log.Info("cloning repository", zap.String("url", repoURL))
		repo, err := git.PlainCloneContext(cmd.Context(), cloneDir, false, &git.CloneOptions{
			URL:   repoURL,
			Depth: 1,
		})
		if err != nil {
			return errs.NewIO("clone "+repoURL, err)
		}

		head, err := repo.Head()
		if err != nil {
			return errs.NewIO("resolve HEAD", err)
		}
		commitSHA := head.Hash().String()

		scanRoot := cloneDir
		if importSource != "" {
			scanRoot = filepath.Join(cloneDir, importSource)
		}

		cachePath := filepath.Join(workspace, ".build-cache", "analysis.db")
		cache, err := analysiscache.Open(cachePath, log)
		if err != nil {
			return err
		}
		defer cache.Close()

		cfg, err := config.Load(filepath.Join(workspace, "suncc.yaml"), log)
		if err != nil {
			return err
		}

		var o oracle.Oracle
		if importComments {
			genOracle, oracleErr := oracle.NewGenAIOracle(cmd.Context(), apiKey, cfg.Oracle.Model, log)
			if oracleErr != nil {
				return oracleErr
			}
			o = genOracle
		}

		var relPaths []string
		err = godirwalk.Walk(scanRoot, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					if de.Name() == ".git" || de.Name() == "node_modules" || de.Name() == "vendor" {
						return godirwalk.SkipThis
					}
					return nil
				}
				rel, relErr := filepath.Rel(cloneDir, path)
				if relErr != nil {
					return nil
				}
				relPaths = append(relPaths, rel)
				return nil
			},
			ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
				return godirwalk.SkipNode
			},
		})
		if err != nil {
			return errs.NewIO("walk "+scanRoot, err)
		}

		var analyses []model.Analysis
		for _, rel := range relPaths {
			abs := filepath.Join(cloneDir, rel)
			text, readErr := os.ReadFile(abs)
			if readErr != nil {
				continue
			}

			if cached, ok, getErr := cache.Get(repoURL, commitSHA, rel); getErr == nil && ok {
				analyses = append(analyses, cached)
				continue
			}

			a := analyzeFile(cmd.Context(), rel, string(text), o, importComments, log)
			if a.Language == "" {
				continue
			}
			if putErr := cache.Put(repoURL, commitSHA, rel, a); putErr != nil {
				log.Warn("failed to cache analysis", zap.String("file", rel), zap.Error(putErr))
			}
			analyses = append(analyses, a)
		}

		if err := os.MkdirAll(importOutput, 0o755); err != nil {
			return errs.NewIO(importOutput, err)
		}
		reportPath := filepath.Join(importOutput, "genesis.sun")
		if err := writeGenesisReport(reportPath, repoURL, commitSHA, analyses); err != nil {
			return err
		}

		log.Info("import complete",
			zap.String("repo", repoURL),
			zap.String("commit", commitSHA),
			zap.Int("files_analyzed", len(analyses)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importOutput, "output", "", "directory to write the synthesized genesis manifest into")
	importCmd.Flags().StringVar(&importSource, "source", "", "subdirectory of the repository to analyze (default: repository root)")
	importCmd.Flags().BoolVar(&importComments, "comments", false, "synthesize natural-language descriptions via the AI oracle")
}

// analyzeFile runs the Language Detector, Structural Analyzer, and
// Quality & Content Analyzer over one file's text, then the
// Natural-Language Synthesizer when enabled.
func analyzeFile(ctx context.Context, relPath, text string, o oracle.Oracle, comments bool, log *logging.Logger) model.Analysis {
	detected := langdetect.DetectFile(relPath, text)
	if detected.Language == "" || detected.Confidence < 30 {
		return model.Analysis{}
	}

	elements := structural.Analyze(text, detected.Language)
	a := model.Analysis{
		Language: detected.Language,
		File:     relPath,
	}
	for _, e := range elements {
		switch e.Kind {
		case model.KindFunction:
			a.Functions = append(a.Functions, e)
		case model.KindClass:
			a.Classes = append(a.Classes, e)
		case model.KindInterface:
			a.Interfaces = append(a.Interfaces, e)
		case model.KindType:
			a.Types = append(a.Types, e)
		case model.KindImport:
			a.Imports = append(a.Imports, e)
			a.Dependencies = append(a.Dependencies, e.DeclaredDependencies...)
		case model.KindExport:
			a.Exports = append(a.Exports, e)
		}
	}

	complexFns := 0
	cyclomatic := quality.Cyclomatic(text)
	if cyclomatic > 10 {
		complexFns++
	}
	a.Complexity = cyclomatic
	a.CognitiveComplexity = quality.Cognitive(text)
	a.NestingDepth = quality.NestingDepth(text, detected.Language)
	a.Maintainability = quality.Maintainability(text, cyclomatic)
	a.Testability = quality.Testability(text, complexFns, len(a.Functions))
	a.Documentation = quality.Documentation(text)
	a.Patterns = quality.Detect(a, text)

	if comments && o != nil {
		a = synth.Synthesize(ctx, o, a, log)
	}
	return a
}

func writeGenesisReport(path, repoURL, commitSHA string, analyses []model.Analysis) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@project %s\n", filepath.Base(strings.TrimSuffix(repoURL, ".git")))
	fmt.Fprintf(&sb, "@source .\n@output out\n@context imported from %s at %s\n\n", repoURL, commitSHA)

	sb.WriteString("imports {\n")
	seen := make(map[string]bool)
	for _, a := range analyses {
		for _, dep := range a.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			fmt.Fprintf(&sb, "  %s = external\n", dep)
		}
	}
	sb.WriteString("}\n\n")

	for _, a := range analyses {
		fmt.Fprintf(&sb, "## %s: %d function(s), %d class(es), maintainability %d\n", a.File, len(a.Functions), len(a.Classes), a.Maintainability)
		if a.NaturalLanguageDescription != "" {
			fmt.Fprintf(&sb, "## %s\n", a.NaturalLanguageDescription)
		}
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
