package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"campaignd/pkg/logging"
)

// debounceInterval is how long to wait after the last write before
// reloading, so editors that write in several steps trigger one reload.
const debounceInterval = 500 * time.Millisecond

// manifestWatcher reloads the manifest when the file changes on disk.
// It watches the containing directory rather than the file itself, so
// atomic replace-by-rename (the common editor save strategy) is seen.
type manifestWatcher struct {
	path     string
	onChange func()

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	stopOnce sync.Once
}

func newManifestWatcher(path string, onChange func()) (*manifestWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &manifestWatcher{
		path:     absPath,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. The callback fires debounced, from a watcher
// goroutine.
func (w *manifestWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}
	w.fsWatcher = watcher

	go w.processEvents(watcher.Events, watcher.Errors)
	logging.Info("App", "Watching %s for manifest changes", w.path)
	return nil
}

func (w *manifestWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("App", err, "Manifest watcher error")
		}
	}
}

func (w *manifestWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	logging.Debug("App", "Manifest changed: %s (%s)", event.Name, event.Op)

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceInterval, func() {
		select {
		case <-w.stopCh:
		default:
			w.onChange()
		}
	})
}

// Stop ends watching. Safe to call more than once.
func (w *manifestWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)

		w.debounceMu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
			w.debounceTimer = nil
		}
		w.debounceMu.Unlock()

		if w.fsWatcher != nil {
			if err := w.fsWatcher.Close(); err != nil {
				logging.Warn("App", "Error closing manifest watcher: %v", err)
			}
		}
	})
}
