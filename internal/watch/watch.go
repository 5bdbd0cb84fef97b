// Package watch implements fsnotify-based watch mode: it debounces rapid
// filesystem events and serializes builds so that a second change arriving
// mid-build is folded into the next run rather than racing it. Grounded on
// the teacher's internal/core/mangle_watcher.go debounce-map pattern.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"suncc/internal/logging"
)

// BuildFunc runs one build invocation over the given changed paths. It is
// called at most once at a time — Watcher guarantees builds never overlap.
type BuildFunc func(ctx context.Context, changedPaths []string) error

// Options configures debounce timing and which file extensions matter.
type Options struct {
	Debounce   time.Duration
	Extensions []string // e.g. []string{".go", ".py"}; empty means all files
}

// DefaultOptions debounces at 300ms, matching the teacher's ~500ms order of
// magnitude scaled down for a faster edit-compile loop.
func DefaultOptions() Options {
	return Options{Debounce: 300 * time.Millisecond}
}

// Watcher watches a source root and invokes build on settled changes,
// never running two builds concurrently.
type Watcher struct {
	root  string
	opts  Options
	build BuildFunc
	log   *logging.Logger

	fsw *fsnotify.Watcher

	mu          sync.Mutex
	pending     map[string]time.Time
	running     bool
	buildMu     sync.Mutex
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// New constructs a Watcher rooted at root. build is invoked serially on
// debounced change batches.
func New(root string, opts Options, build BuildFunc, log *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    root,
		opts:    opts,
		build:   build,
		log:     log.With(logging.CategoryWatch),
		fsw:     fsw,
		pending: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start walks root adding every directory to the watch list, then runs the
// event loop in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".build-cache" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return w.fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and waits for any in-flight build to finish.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.opts.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.recordEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			w.flushSettled(ctx)
		}
	}
}

func (w *Watcher) recordEvent(event fsnotify.Event) {
	if !w.matchesExtension(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) matchesExtension(name string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, want := range w.opts.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func (w *Watcher) flushSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, t := range w.pending {
		if now.Sub(t) >= w.opts.Debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	w.runBuild(ctx, settled)
}

// runBuild serializes build invocations: if a build is already running, a
// concurrent call would race on the Element Store, so buildMu enforces one
// at a time while recordEvent keeps accumulating into the next batch.
func (w *Watcher) runBuild(ctx context.Context, paths []string) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	w.log.Info("rebuilding on change", zap.Strings("paths", paths))
	if err := w.build(ctx, paths); err != nil {
		w.log.Warn("watch build failed", zap.Error(err))
	}
}
