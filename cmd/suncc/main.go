// Package main implements suncc, the SunScript incremental compiler CLI.
//
// Commands:
//   - compile  - run a one-shot or watched build over a directory of .sun
//                sources
//   - genesis  - drive a build from a project genesis manifest
//   - run      - build the current workspace using its suncc.yaml config
//   - import   - clone a GitHub repository and run the reverse-compilation
//                analysis pipeline over it
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"suncc/internal/errs"
	"suncc/internal/logging"
)

var (
	verbose   bool
	apiKey    string
	workspace string
	timeout   time.Duration

	log *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "suncc",
	Short: "suncc - incremental compiler and reverse-compilation engine for SunScript",
	// main prints the sanitized error itself.
	SilenceErrors: true,
	Long: `suncc turns content-addressed change detection into section-level
incremental code generation, and can run the pipeline in reverse over an
existing GitHub repository to synthesize SunScript genesis manifests.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LevelFromEnv()
		if verbose {
			level = logging.LevelDebug
		}
		var err error
		log, err = logging.New(level, false)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		} else if abs, absErr := filepath.Abs(ws); absErr == nil {
			ws = abs
		}
		workspace = ws

		if key := os.Getenv("SUNCC_API_KEY"); key != "" && apiKey == "" {
			apiKey = key
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "oracle API key (or set SUNCC_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "project root (default: current directory)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "build invocation timeout")

	rootCmd.AddCommand(compileCmd, genesisCmd, runCmd, importCmd)
}

// correlationID mints a request id used to tag a build invocation's log
// lines end to end, mirroring the teacher's per-session request id.
func correlationID() string {
	return uuid.NewString()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errs.Sanitize(err))
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
