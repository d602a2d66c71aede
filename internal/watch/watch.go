// Package watch reports when a training batch lands in the data directory
// while the bot is running. The batch is only merged on the next start.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/intentbot/internal/logger"
)

// Operation is what happened to the batch file
type Operation int

const (
	Created Operation = iota
	Modified
)

func (o Operation) String() string {
	switch o {
	case Created:
		return "created"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event is a change to the training batch file
type Event struct {
	Path      string
	Operation Operation
}

// Watcher watches one file name inside a directory
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	name    string
	log     *logrus.Logger
}

// New creates a watcher for dir/fileName. The directory is watched rather
// than the file so a batch that does not exist yet is still seen.
func New(dir, fileName string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		watcher: w,
		dir:     dir,
		name:    fileName,
		log:     logger.GetLogger(),
	}, nil
}

// Watch starts delivering events until ctx is done or Close is called
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	if err := w.watcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != w.name {
					continue
				}

				var op Operation
				switch {
				case event.Op.Has(fsnotify.Create):
					op = Created
				case event.Op.Has(fsnotify.Write):
					op = Modified
				default:
					continue
				}

				select {
				case events <- Event{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.WithError(err).WithField("path", w.dir).Warn("watch error")
			}
		}
	}()

	return events, nil
}

// Close stops the watcher and closes the event channel
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
