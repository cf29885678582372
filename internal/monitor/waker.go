package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Waker watches input folders and signals when something arrives, so the
// monitor can start its next pass before the poll interval ends. It never
// touches the files itself; scanning stays on the monitor goroutine.
type Waker struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	wake    chan struct{}
}

// NewWaker watches every directory in dirs.
func NewWaker(dirs []string, logger *slog.Logger) (*Waker, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return &Waker{
		watcher: watcher,
		logger:  logger,
		wake:    make(chan struct{}, 1),
	}, nil
}

// C delivers at most one pending wake-up at a time.
func (w *Waker) C() <-chan struct{} {
	return w.wake
}

// Run forwards folder events until ctx is cancelled, then closes the
// watcher.
func (w *Waker) Run(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
