package analysiscache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suncc/internal/logging"
	"suncc/internal/model"
)

func TestPutThenGetRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, logging.NewNop())
	require.NoError(t, err)
	defer c.Close()

	a := model.Analysis{Language: "go", File: "main.go", Complexity: 3}
	require.NoError(t, c.Put("https://example.com/repo", "abc123", "main.go", a))

	got, ok, err := c.Get("https://example.com/repo", "abc123", "main.go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a.Language, got.Language)
	assert.Equal(t, a.Complexity, got.Complexity)
}

func TestGetMissingReturnsFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, logging.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get("repo", "sha", "nope.go")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutOverwritesExistingRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, logging.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put("repo", "sha", "f.go", model.Analysis{Complexity: 1}))
	require.NoError(t, c.Put("repo", "sha", "f.go", model.Analysis{Complexity: 9}))

	got, ok, err := c.Get("repo", "sha", "f.go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, got.Complexity)
}
