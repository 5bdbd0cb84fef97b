package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersAllSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["compile"])
	assert.True(t, names["genesis"])
	assert.True(t, names["run"])
	assert.True(t, names["import"])
}

func TestTargetExtensionKnownLanguages(t *testing.T) {
	assert.Equal(t, ".py", targetExtension("python"))
	assert.Equal(t, ".js", targetExtension("javascript"))
	assert.Equal(t, ".ts", targetExtension("typescript"))
	assert.Equal(t, ".java", targetExtension("java"))
	assert.Equal(t, ".rs", targetExtension("rust"))
	assert.Equal(t, ".go", targetExtension("go"))
	assert.Equal(t, ".go", targetExtension("unknown-language"))
}

func TestLoadSunSourcesWalksAndMapsOutputPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sun"), []byte("fn a() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not sun"), 0o644))
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.sun"), []byte("fn b() {}\n"), 0o644))

	out := filepath.Join(t.TempDir(), "out")
	sources, err := loadSunSources(dir, out, "python")
	require.NoError(t, err)
	require.Len(t, sources, 2)

	var outputs []string
	for _, s := range sources {
		outputs = append(outputs, s.OutputPath)
		assert.Equal(t, "python", s.Language)
	}
	assert.Contains(t, outputs, filepath.Join(out, "a.py"))
	assert.Contains(t, outputs, filepath.Join(out, "nested", "b.py"))
}

func TestCorrelationIDsAreUnique(t *testing.T) {
	a := correlationID()
	b := correlationID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
