package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file has to stay quiet before its change is emitted.
const DefaultDebounce = 2 * time.Second

// Watcher emits debounced change events for a single file, such as the config file.
// The parent directory is watched so that editors replacing the file are noticed too.
type Watcher struct {
	Debounce time.Duration

	fs     *fsnotify.Watcher
	target string
	events chan<- FileEvent
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	pending *time.Timer
	last    FileEventType
}

// NewWatcher creates a watcher that sends its events to events.
func NewWatcher(events chan<- FileEvent) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{Debounce: DefaultDebounce, fs: fs, events: events}, nil
}

// Start watches path until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context, path string) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fs.Add(filepath.Dir(target)); err != nil {
		return err
	}
	w.target = target

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx)

	slog.Info("Watching file for changes", "path", target)
	return nil
}

// Stop ends the watch and drops any change still waiting for its debounce.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
	w.fs.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "path", w.target, "error", err)
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.target {
				continue
			}
			if kind, ok := eventType(ev.Op); ok {
				slog.Debug("Watched file changed", "path", ev.Name, "op", ev.Op.String())
				w.schedule(kind)
			}
		}
	}
}

// schedule restarts the debounce timer, remembering the latest kind of change.
func (w *Watcher) schedule(kind FileEventType) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = kind
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.Debounce, w.emit)
}

func (w *Watcher) emit() {
	w.mu.Lock()
	ev := FileEvent{Path: w.target, EventType: w.last, Timestamp: time.Now()}
	w.mu.Unlock()

	select {
	case w.events <- ev:
		slog.Info("File change detected", "path", ev.Path, "type", ev.EventType)
	default:
		slog.Warn("Event channel full, dropping file event", "path", ev.Path)
	}
}
