// Package watcher provides debounced watching of individual files,
// used to hot-reload the product catalog.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"parley/internal/logging"
)

const defaultDebounce = 100 * time.Millisecond

var ErrClosed = errors.New("watcher closed")

type Options struct {
	Debounce time.Duration
	Logger   *logging.Logger
}

type Watcher struct {
	fs        *fsnotify.Watcher
	logger    *logging.Logger
	debounce  time.Duration
	mu        sync.Mutex
	callbacks map[string]func()
	timers    map[string]*time.Timer
	closed    bool
}

func New(options Options) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := options.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		fs:        fs,
		logger:    options.Logger,
		debounce:  debounce,
		callbacks: make(map[string]func()),
		timers:    make(map[string]*time.Timer),
	}
	go w.run()
	return w, nil
}

// Add registers onChange to fire, debounced, whenever path is written,
// created, or removed. The parent directory is watched so editors that
// replace the file atomically are still observed.
func (w *Watcher) Add(path string, onChange func()) error {
	if w == nil || onChange == nil {
		return errors.New("watcher: nil watcher or callback")
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.callbacks[absolute] = onChange
	w.mu.Unlock()

	return w.fs.Add(filepath.Dir(absolute))
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.timers = nil
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher error", map[string]string{"error": err.Error()})
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if _, watched := w.callbacks[path]; !watched {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.flush(path)
	})
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.timers, path)
	callback := w.callbacks[path]
	w.mu.Unlock()

	if callback != nil {
		callback()
	}
}
