// Package watch re-runs generation when source files under a root change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/praefixum/praefixum/internal/ignore"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the tree has to be quiet before the handler
// runs.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called with the root-relative slash paths that changed since
// the previous call.
type Handler func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	Ignore     []string
	Extensions []string
	Debounce   time.Duration
	Logger     *zap.Logger
}

// Stats counts watcher activity.
type Stats struct {
	Events        int
	Runs          int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher watches every non-ignored directory below root.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	root     string
	handler  Handler
	matcher  *ignore.Matcher
	exts     map[string]bool
	debounce time.Duration
	logger   *zap.Logger

	pending   map[string]bool
	lastEvent time.Time
	stats     Stats

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New creates a watcher for root. It does not start watching.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".cs"}
	}
	extSet := make(map[string]bool, len(exts))
	for _, ext := range exts {
		extSet[strings.ToLower(ext)] = true
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher:  fw,
		root:     root,
		handler:  handler,
		matcher:  ignore.NewMatcher(opts.Ignore),
		exts:     extSet,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]bool),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins watching in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root, false); err != nil {
		w.watcher.Close()
		return err
	}
	w.logger.Info("watching source tree", zap.String("root", w.root))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("failed to close file watcher", zap.Error(err))
	}
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.matcher.ShouldIgnore(rel, true) {
				return
			}
			if err := w.addTree(event.Name, true); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("dir", rel), zap.Error(err))
			}
			return
		}
	}
	w.enqueue(rel)
}

func (w *Watcher) enqueue(rel string) {
	if !w.exts[strings.ToLower(filepath.Ext(rel))] || w.matcher.ShouldIgnore(rel, false) {
		return
	}
	w.logger.Debug("source change", zap.String("path", rel))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[rel] = true
	w.lastEvent = time.Now()
	w.stats.Events++
	w.stats.LastEventPath = rel
	w.stats.LastEventTime = w.lastEvent
}

// flush runs the handler once the tree has been quiet for the debounce
// interval.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 || time.Since(w.lastEvent) < w.debounce {
		w.mu.Unlock()
		return
	}
	changed := fileutil.MapKeysSorted(w.pending)
	w.pending = make(map[string]bool)
	w.stats.Runs++
	w.mu.Unlock()

	if err := w.handler(ctx, changed); err != nil {
		w.logger.Error("regeneration failed", zap.Strings("changed", changed), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
	}
}

// addTree watches dir and every non-ignored directory below it. When
// enqueueFiles is set, matching files already present are queued; they may
// have been written before the watch was in place.
func (w *Watcher) addTree(dir string, enqueueFiles bool) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, ok := w.relative(path)
		if !ok {
			return nil
		}
		if info.IsDir() {
			if rel != "." && w.matcher.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			return nil
		}
		if enqueueFiles {
			w.enqueue(rel)
		}
		return nil
	})
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
