package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suncc/internal/logging"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.20, cfg.Planner.RatioThreshold)
	assert.Equal(t, 2, cfg.Planner.TransitiveDepth)
	assert.Equal(t, 4, cfg.Concurrency.MaxParallelOracle)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Planner, cfg.Planner)
}

func TestLoadParsesYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suncc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner:\n  ratio_threshold: 0.5\n  transitive_depth: 3\n"), 0o644))

	cfg, err := Load(path, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Planner.RatioThreshold)
	assert.Equal(t, 3, cfg.Planner.TransitiveDepth)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::: not yaml"), 0o644))

	_, err := Load(path, logging.NewNop())
	assert.Error(t, err)
}

func TestEnvOverridesWinOverDefaults(t *testing.T) {
	t.Setenv("SUNCC_ORACLE_MODEL", "gemini-override")
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	assert.Equal(t, "gemini-override", cfg.Oracle.Model)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "suncc.yaml")
	cfg := DefaultConfig()
	cfg.Oracle.Model = "custom-model"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "custom-model", loaded.Oracle.Model)
}

func TestValidateRejectsOutOfRangeRatio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Planner.RatioThreshold = 1.5
	assert.Error(t, cfg.Validate())
}
