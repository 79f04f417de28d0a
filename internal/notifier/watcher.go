package notifier

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/progressr/internal/logger"
)

// QueueWatcher wakes the notifier when the update flag file is written.
// It watches the flag's directory because the flag is replaced by rename.
type QueueWatcher struct {
	watcher *fsnotify.Watcher
	file    string
	wake    chan<- struct{}
	done    chan struct{}
	stopped chan struct{}
}

// NewQueueWatcher creates a watcher for the flag file at path.
func NewQueueWatcher(path string, wake chan<- struct{}) (*QueueWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &QueueWatcher{
		watcher: w,
		file:    filepath.Clean(path),
		wake:    wake,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// Start runs the event loop in the background.
func (qw *QueueWatcher) Start() {
	go qw.eventLoop()
	logger.Debug("Watching %s for update flags", qw.file)
}

// Stop shuts down the event loop and the underlying watcher.
func (qw *QueueWatcher) Stop() error {
	close(qw.done)
	<-qw.stopped
	return qw.watcher.Close()
}

func (qw *QueueWatcher) eventLoop() {
	defer close(qw.stopped)

	for {
		select {
		case <-qw.done:
			return

		case event, ok := <-qw.watcher.Events:
			if !ok {
				return
			}
			qw.handleEvent(event)

		case err, ok := <-qw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Queue watcher error: %v", err)
		}
	}
}

func (qw *QueueWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Clean(event.Name) != qw.file {
		return
	}
	select {
	case qw.wake <- struct{}{}:
	default:
	}
}
