// Package analysiscache persists reverse-compilation Analysis Records to a
// local SQLite database, keyed by (repo_url, commit, file_path), so that
// `import` runs against the same commit skip re-analyzing unchanged files.
// Grounded on the teacher's internal/store/local_core.go SQLite bring-up
// (WAL + busy_timeout pragmas, single-writer sql.DB).
package analysiscache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"suncc/internal/logging"
	"suncc/internal/model"
)

// Cache is a SQLite-backed store of Analysis Records.
type Cache struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logging.Logger
}

// Open creates (or reopens) the cache database at path, creating parent
// directories as needed.
func Open(path string, log *logging.Logger) (*Cache, error) {
	log = log.With(logging.CategoryStore)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analysis cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open analysis cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Warn("pragma failed: " + pragma)
		}
	}

	c := &Cache{db: db, log: log}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS analysis_records (
		repo_url   TEXT NOT NULL,
		commit_sha TEXT NOT NULL,
		file_path  TEXT NOT NULL,
		analysis_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (repo_url, commit_sha, file_path)
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached Analysis for (repoURL, commit, filePath), if any.
func (c *Cache) Get(repoURL, commitSHA, filePath string) (model.Analysis, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var raw string
	err := c.db.QueryRow(
		`SELECT analysis_json FROM analysis_records WHERE repo_url = ? AND commit_sha = ? AND file_path = ?`,
		repoURL, commitSHA, filePath,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.Analysis{}, false, nil
	}
	if err != nil {
		return model.Analysis{}, false, fmt.Errorf("query analysis cache: %w", err)
	}

	var a model.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return model.Analysis{}, false, fmt.Errorf("decode cached analysis: %w", err)
	}
	return a, true, nil
}

// Put stores or replaces the Analysis Record for (repoURL, commit, filePath).
func (c *Cache) Put(repoURL, commitSHA, filePath string, a model.Analysis) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis for cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		`INSERT INTO analysis_records (repo_url, commit_sha, file_path, analysis_json)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(repo_url, commit_sha, file_path) DO UPDATE SET analysis_json = excluded.analysis_json`,
		repoURL, commitSHA, filePath, string(raw),
	)
	if err != nil {
		return fmt.Errorf("store analysis in cache: %w", err)
	}
	return nil
}
