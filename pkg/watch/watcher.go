// Package watch re-runs charset detection when watched files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one re-detection outcome.
type Event struct {
	Path  string
	Label string
	Err   error
}

// Watcher monitors files and directories and re-detects on change.
// Detection itself is injected so the watcher stays free of policy.
type Watcher struct {
	watcher  *fsnotify.Watcher
	detect   func(path string) (string, error)
	debounce time.Duration

	mu     sync.Mutex
	dirAll map[string]struct{} // directories watched in full
	files  map[string]struct{} // individually watched files

	// OnEvent receives every re-detection outcome, including failures.
	OnEvent func(Event)
}

// New creates a Watcher around a detection function.
func New(detect func(path string) (string, error)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		watcher:  fsWatcher,
		detect:   detect,
		debounce: 500 * time.Millisecond,
		dirAll:   make(map[string]struct{}),
		files:    make(map[string]struct{}),
	}, nil
}

// Add starts watching path. A directory covers every file in it,
// including files created later; a plain file covers just itself.
// fsnotify behaves better on directories, so file watches register the
// parent directory and filter events.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	dir := abs
	w.mu.Lock()
	if info.IsDir() {
		w.dirAll[abs] = struct{}{}
	} else {
		dir = filepath.Dir(abs)
		w.files[abs] = struct{}{}
	}
	w.mu.Unlock()

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}

// Run blocks until ctx is cancelled, dispatching debounced re-detections.
func (w *Watcher) Run(ctx context.Context) error {
	timers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			path, err := filepath.Abs(event.Name)
			if err != nil || !w.wants(path) {
				continue
			}

			// Debounce rapid changes
			timerMu.Lock()
			if timer, exists := timers[path]; exists {
				timer.Stop()
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				w.handleChange(path)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnEvent != nil {
				w.OnEvent(Event{Err: err})
			}
		}
	}
}

// wants reports whether path falls under a watch registration.
func (w *Watcher) wants(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; ok {
		return true
	}
	_, ok := w.dirAll[filepath.Dir(path)]
	return ok
}

func (w *Watcher) handleChange(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	label, err := w.detect(path)
	if w.OnEvent != nil {
		w.OnEvent(Event{Path: path, Label: label, Err: err})
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
