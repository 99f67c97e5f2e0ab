package actors

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses editor write bursts into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Directory when its backing file changes.
//
// The parent directory is watched rather than the file itself so atomic
// replace-by-rename (the common editor save strategy) is still observed.
type Watcher struct {
	dir      *Directory
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending *time.Timer
	stopped bool
}

// Watch starts watching the directory's backing file. The returned Watcher
// must be stopped before process exit.
func Watch(dir *Directory, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(dir.path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{dir: dir, fsw: fsw, debounce: debounce}
	go w.loop()
	return w, nil
}

// Stop cancels the watch and any pending reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()
	w.fsw.Close()
}

func (w *Watcher) loop() {
	target := filepath.Base(w.dir.path)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.trigger()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.dir.logger != nil {
				w.dir.logger.Warn("actor directory watch error", "err", err)
			}
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		if err := w.dir.Reload(); err != nil && w.dir.logger != nil {
			w.dir.logger.Warn("actor directory reload failed", "err", err)
		}
	})
}
