package conf

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/editkit/tether/ratelimit"
)

// DefaultDebounce is how long the watcher waits after the last write
// before reloading, coalescing editor save bursts into one reload.
const DefaultDebounce = 200 * time.Millisecond

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce overrides the reload debounce window.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler installs a callback for reload failures. Without one,
// failures are silently skipped and the previous configuration stands.
func WithErrorHandler(fn func(error)) WatchOption {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher reloads a configuration file whenever it changes on disk. It
// watches the parent directory rather than the file itself so atomic
// replace-by-rename saves are caught too.
type Watcher struct {
	path     string
	debounce time.Duration
	onLoad   func(*File)
	onError  func(error)

	fsw *fsnotify.Watcher
	deb *ratelimit.Debouncer

	closeOnce sync.Once
	done      chan struct{}
}

// Watch starts watching path and invokes onLoad with the freshly parsed
// file after each settled change. The callback runs on the watcher's
// goroutine; it must not block for long.
func Watch(path string, onLoad func(*File), opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onLoad:   onLoad,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.deb = ratelimit.NewDebouncer(w.debounce)

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		w.fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.deb.Call(w.reload)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.fail(err)
		}
	}
}

func (w *Watcher) reload() {
	f, err := Load(w.path)
	if err != nil {
		w.fail(err)
		return
	}
	w.onLoad(f)
}

func (w *Watcher) fail(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops watching. Safe to call more than once. A reload already in
// its debounce window is cancelled.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.deb.Cancel()
		err = w.fsw.Close()
		<-w.done
	})
	return err
}
