// Package watcher reports changes to a single configuration file.
//
// The parent directory is watched rather than the file itself so that
// editors that save by renaming a temporary file are still seen.
// Bursts of events are debounced into one notification.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// Event is one debounced change of the watched file.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Operation is the last kind of change seen before an Event fired.
type Operation int

const (
	OpWrite Operation = iota
	OpCreate
	OpRemove
	OpRename
)

var opNames = [...]string{OpWrite: "write", OpCreate: "create", OpRemove: "remove", OpRename: "rename"}

func (op Operation) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors one file for changes.
type Watcher struct {
	mu sync.Mutex

	fsw  *fsnotify.Watcher
	path string

	handlers []Handler
	onError  func(error)

	debounce time.Duration
	timer    *time.Timer
	pending  Event

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives errors reported by the file system watcher.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New starts watching path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// OnChange registers a handler for changes to the file.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Close stops the watcher. Pending notifications are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			w.schedule(Event{Path: w.path, Op: convertOp(ev.Op), Time: time.Now()})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			onError := w.onError
			w.mu.Unlock()
			if onError != nil {
				onError(err)
			}
		}
	}
}

// schedule records ev and (re)starts the debounce timer.
func (w *Watcher) schedule(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending = ev
	if w.debounce == 0 {
		go w.fire()
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	ev := w.pending
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func convertOp(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpWrite
	}
}
