// Package store implements the Element Store (spec §4.C2): a persisted
// map from source path to File Record, backed by a single self-describing
// JSON document at <project-root>/.build-cache/elements.json. Saves are
// atomic (temp file + rename), grounded on the teacher's promote/reject
// rename-or-copy pattern in internal/autopoiesis/prompt_evolution/evolver.go.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"suncc/internal/errs"
	"suncc/internal/logging"
	"suncc/internal/model"
)

// CacheVersion is the schema version tag written into elements.json.
const CacheVersion = 1

// CacheFileName is the stable name of the cache artifact (spec §6).
const CacheFileName = "elements.json"

// CacheDirName is the stable directory name under the project root.
const CacheDirName = ".build-cache"

// document is the on-disk shape of the cache artifact.
type document struct {
	Version int                   `json:"version"`
	Files   map[string]model.File `json:"files"`
}

// Store is the Element Store. It enforces a single-writer invariant:
// callers must serialize calls to Put/Remove/Save/Clear themselves (the
// Build Invocation owns exactly one Store). Snapshot gives readers a safe
// copy to iterate without racing a concurrent writer.
type Store struct {
	mu   sync.RWMutex
	path string
	log  *logging.Logger
	data document
	cold bool
}

// Open loads the Element Store rooted at projectRoot. A missing or corrupt
// cache file is reported as "cold" rather than an error: callers must
// treat a cold store as empty and proceed with a full build (spec §4.C2,
// §7 CacheError policy).
func Open(projectRoot string, log *logging.Logger) (*Store, error) {
	log = log.With(logging.CategoryStore)
	s := &Store{
		path: filepath.Join(projectRoot, CacheDirName, CacheFileName),
		log:  log,
		data: document{Version: CacheVersion, Files: map[string]model.File{}},
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("no cache artifact found; cold start")
			s.cold = true
			return s, nil
		}
		log.Warn("cache artifact unreadable; treating as cold")
		s.cold = true
		return s, nil
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn("cache artifact corrupt; treating as cold")
		s.cold = true
		return s, nil
	}
	if doc.Files == nil {
		doc.Files = map[string]model.File{}
	}
	s.data = doc
	return s, nil
}

// Cold reports whether the store failed to load a prior cache artifact —
// a signal to the Build Planner to force a full build.
func (s *Store) Cold() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cold
}

// Get returns the File Record for path, if present.
func (s *Store) Get(path string) (model.File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.data.Files[path]
	return f, ok
}

// Put installs or replaces the File Record for path.
func (s *Store) Put(path string, f model.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Files[path] = f
	s.cold = false
}

// Remove deletes the File Record for path, if any.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Files, path)
}

// Iterate returns a stable, lexicographically sorted copy of all known
// source paths and their File Records.
func (s *Store) Iterate() []model.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.File, 0, len(s.data.Files))
	paths := make([]string, 0, len(s.data.Files))
	for p := range s.data.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		out = append(out, s.data.Files[p])
	}
	return out
}

// Clear empties the store in memory. Save must be called to persist the
// cleared state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = document{Version: CacheVersion, Files: map[string]model.File{}}
	s.cold = true
}

// Snapshot returns a deep-enough copy of the current file map for
// concurrent readers (e.g. the Dependency Index rebuild) to use without
// taking the Store's lock for the duration of their work.
func (s *Store) Snapshot() map[string]model.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.File, len(s.data.Files))
	for k, v := range s.data.Files {
		out[k] = v
	}
	return out
}

// Save writes the store to disk atomically: it marshals to a temp file in
// the same directory, then renames over the real path. A process killed
// mid-save leaves either the previous artifact intact or the new one fully
// installed — never a partial write (spec §8 "Store atomicity").
func (s *Store) Save() error {
	s.mu.RLock()
	doc := s.data
	s.mu.RUnlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.NewIO(dir, err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.NewInternal("STORE_MARSHAL", err.Error())
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errs.NewIO(tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		// Cross-device rename can fail; fall back to copy+remove like the
		// teacher's evolver.go promote path.
		if copyErr := os.WriteFile(s.path, raw, 0o644); copyErr != nil {
			_ = os.Remove(tmp)
			return errs.NewIO(s.path, fmt.Errorf("rename failed (%v) and copy fallback failed: %w", err, copyErr))
		}
		_ = os.Remove(tmp)
	}

	s.log.Debug("store saved")
	return nil
}
