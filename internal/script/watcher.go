package script

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of writes to one reload.
const DefaultDebounce = 50 * time.Millisecond

// ErrWatcherClosed is returned when adding to a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Watcher reloads scripts when their files are written or replaced.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	scripts  map[string]*Script
	dirs     map[string]bool
	timers   map[string]*time.Timer
	debounce time.Duration

	onReload func(*Script)
	onError  func(error)

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits after the last change
// before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// OnReload sets the function called after each successful reload.
func OnReload(fn func(*Script)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// OnError sets the function called for failed reloads and watch errors.
func OnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// NewWatcher starts watching the given scripts.
func NewWatcher(scripts []*Script, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		scripts:  make(map[string]*Script),
		dirs:     make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		debounce: DefaultDebounce,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, s := range scripts {
		if err := w.Add(s); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Add starts watching another script. The script's directory is watched so
// that editors which replace files on save are handled.
func (w *Watcher) Add(s *Script) error {
	path, err := filepath.Abs(s.Path())
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.scripts[path] = s
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.schedule(filepath.Clean(ev.Name))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// schedule arms or re-arms the reload timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.scripts[path]
	if !ok || w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		w.reload(s)
	})
}

func (w *Watcher) reload(s *Script) {
	if err := s.Reload(); err != nil {
		w.reportError(err)
		return
	}
	if w.onReload != nil {
		w.onReload(s)
	}
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
