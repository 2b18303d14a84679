package policy

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"modatlas/internal/logging"
)

// Watcher watches the policy and alias documents for on-disk changes and
// invalidates the alias cache so long-running processes (the stdio server)
// pick up edits without a restart.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	policyPath  string
	aliasPath   string
	cache       *AliasCache
	onChange    func(path string)
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a Watcher over the given policy and alias file paths.
// onChange may be nil; when set it fires once per debounced file change.
func NewWatcher(policyPath, aliasPath string, cache *AliasCache, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fw,
		policyPath:  filepath.Clean(policyPath),
		aliasPath:   filepath.Clean(aliasPath),
		cache:       cache,
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	// Watch the parent directories: editors replace files rather than
	// writing in place, so watching the file inode directly misses saves.
	dirs := map[string]struct{}{
		filepath.Dir(w.policyPath): {},
	}
	if w.aliasPath != "" && w.aliasPath != "." {
		dirs[filepath.Dir(w.aliasPath)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			logging.Get(logging.CategoryPolicy).Warn("Watcher: failed to watch %s: %v", dir, err)
		} else {
			logging.Policy("Watcher: watching directory %s", dir)
		}
	}

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
		logging.Get(logging.CategoryPolicy).Error("Watcher: error closing: %v", err)
	}
	logging.Policy("Watcher: stopped")
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.PolicyDebug("Watcher: context cancelled")
			return

		case <-w.stopCh:
			logging.PolicyDebug("Watcher: stop signal received")
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
			logging.Get(logging.CategoryPolicy).Error("Watcher error: %v", err)

		case <-debounceTicker.C:
			w.processDebounced()
		}
	}
}

// handleEvent records a relevant filesystem event for debounced processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if name != w.policyPath && name != w.aliasPath {
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // Ignore chmod etc.
	}

	logging.PolicyDebug("Watcher: %s event for %s", event.Op, name)

	w.mu.Lock()
	w.debounceMap[name] = time.Now()
	w.mu.Unlock()
}

// processDebounced fires change handling for files whose last event is
// older than the debounce window.
func (w *Watcher) processDebounced() {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for path, last := range w.debounceMap {
		if now.Sub(last) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		logging.Policy("Watcher: change detected in %s, invalidating alias cache", path)
		if w.cache != nil {
			w.cache.Clear()
		}
		if w.onChange != nil {
			w.onChange(path)
		}
	}
}
