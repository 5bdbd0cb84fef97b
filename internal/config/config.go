// Package config loads and validates suncc's YAML configuration, grounded
// on the teacher's internal/config/config.go Load/Save/applyEnvOverrides
// shape.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"suncc/internal/errs"
	"suncc/internal/logging"
)

// Config holds every tunable the compilation engine and reverse-compilation
// pipeline need. Every numeric tunable spec §4.C7 calls out explicitly
// (K, ratio_threshold, max_parallel_oracle) lives here rather than as a
// hard-coded constant.
type Config struct {
	Oracle      OracleConfig      `yaml:"oracle"`
	Planner     PlannerConfig     `yaml:"planner"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Logging     LoggingConfig     `yaml:"logging"`
	Watch       WatchConfig       `yaml:"watch"`
}

// OracleConfig configures the AI oracle collaborator.
type OracleConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryBudget    int    `yaml:"retry_budget"`
}

// PlannerConfig configures the Build Planner's decision rules.
type PlannerConfig struct {
	RatioThreshold  float64 `yaml:"ratio_threshold"`
	TransitiveDepth int     `yaml:"transitive_depth"`
}

// ConcurrencyConfig bounds parallel oracle dispatch and the overall build
// wall-clock budget.
type ConcurrencyConfig struct {
	MaxParallelOracle int `yaml:"max_parallel_oracle"`
	BuildTimeoutMin   int `yaml:"build_timeout_minutes"`
}

// LoggingConfig controls the root Logger's level and encoding.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// WatchConfig controls fsnotify-based watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// DefaultConfig returns the documented defaults: ratio_threshold 0.20,
// transitive depth K 2, 4 parallel oracle calls, 30s oracle timeout, 10m
// build timeout.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:       "genai",
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 30,
			RetryBudget:    3,
		},
		Planner: PlannerConfig{
			RatioThreshold:  0.20,
			TransitiveDepth: 2,
		},
		Concurrency: ConcurrencyConfig{
			MaxParallelOracle: 4,
			BuildTimeoutMin:   10,
		},
		Logging: LoggingConfig{
			Level: "INFO",
			JSON:  false,
		},
		Watch: WatchConfig{
			DebounceMS: 300,
		},
	}
}

// Load reads configuration from a YAML file at path, falling back to
// DefaultConfig (with env overrides still applied) when the file does not
// exist. A malformed file is a ValidationError, not a silent fallback —
// the caller asked for this file explicitly.
func Load(path string, log *logging.Logger) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("no config file found; using defaults")
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.NewValidation("parse config "+path, err)
	}

	cfg.applyEnvOverrides()
	log.Info("config loaded")
	return cfg, nil
}

// Save writes c to path as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides lets SUNCC_ORACLE_MODEL / LOG_LEVEL override the file-or-default configuration without a config edit.
func (c *Config) applyEnvOverrides() {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if model := os.Getenv("SUNCC_ORACLE_MODEL"); model != "" {
		c.Oracle.Model = model
	}
}

// OracleTimeout returns the configured per-call oracle timeout as a
// Duration.
func (c *Config) OracleTimeout() time.Duration {
	if c.Oracle.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// BuildTimeout returns the configured per-build wall-clock budget.
func (c *Config) BuildTimeout() time.Duration {
	if c.Concurrency.BuildTimeoutMin <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Concurrency.BuildTimeoutMin) * time.Minute
}

// Validate reports a ValidationError for out-of-range tunables before a
// build ever starts.
func (c *Config) Validate() error {
	if c.Planner.RatioThreshold <= 0 || c.Planner.RatioThreshold > 1 {
		return errs.NewValidation(fmt.Sprintf("planner.ratio_threshold must be in (0, 1], got %v", c.Planner.RatioThreshold), nil)
	}
	if c.Planner.TransitiveDepth < 0 {
		return errs.NewValidation(fmt.Sprintf("planner.transitive_depth must be >= 0, got %d", c.Planner.TransitiveDepth), nil)
	}
	if c.Concurrency.MaxParallelOracle <= 0 {
		return errs.NewValidation(fmt.Sprintf("concurrency.max_parallel_oracle must be > 0, got %d", c.Concurrency.MaxParallelOracle), nil)
	}
	return nil
}
