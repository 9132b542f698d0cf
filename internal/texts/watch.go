package texts

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/verte-zerg/tempotype/internal/logger"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a user catalog file into a Catalog whenever it changes.
type Watcher struct {
	catalog  *Catalog
	path     string
	watcher  *fsnotify.Watcher
	onReload func(int)

	mu       sync.Mutex
	debounce *time.Timer
	stopCh   chan struct{}
	stopOnce sync.Once
}

// Watch loads path into the catalog and keeps it in sync. onReload, if not
// nil, receives the number of user texts after each successful reload.
func Watch(catalog *Catalog, path string, onReload func(int)) (*Watcher, error) {
	w := &Watcher{
		catalog:  catalog,
		path:     path,
		onReload: onReload,
		stopCh:   make(chan struct{}),
	}
	if err := w.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory so the file can be created or replaced.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	w.watcher = watcher

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(reloadDebounce, func() {
				if err := w.reload(); err != nil {
					logger.Warn("catalog reload failed", "path", w.path, "error", err)
				}
			})
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("catalog watcher error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() error {
	extra, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	w.catalog.SetExtra(extra)
	logger.Debug("catalog reloaded", "path", w.path, "texts", len(extra))
	if w.onReload != nil {
		w.onReload(len(extra))
	}
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
