package fs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/tally/pkg/core"
)

// Watch reports modifications of the canonical file made by anything other
// than this repository. The channel is closed when ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	if r.path == "" {
		return nil, core.ErrNoPath
	}
	events := make(chan core.Event, 16)
	w := newWatchWorker(r, events)
	w.ownsEvents = true
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	repo     *Repository
	events   chan core.Event
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	reported *[sha256.Size]byte
	// ownsEvents closes events when the worker exits. Workers restarted by a
	// supervisor share a channel and leave it open.
	ownsEvents bool
}

func newWatchWorker(repo *Repository, events chan core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		repo:       repo,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: editors and our own commits replace the file by
	// rename, which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(w.repo.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.repo.path), err)
	}

	w.watcher = watcher
	w.repo.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger := w.repo.config.Logger; logger != nil {
				if logger.Enabled(ctx, slog.LevelDebug) {
					logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
				} else {
					logger.Error("watcher panic", "error", err)
				}
			}
		}
	}()
	defer func() {
		if w.ownsEvents {
			close(w.events)
		}
	}()
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.repo.debug("fsnotify error", "error", wErr)
			if w.repo.config.ErrorHandler != nil {
				w.repo.config.ErrorHandler(wErr)
			}
		}
	}
}

// handle filters events down to foreign changes of the canonical file.
// Own commits leave the fingerprint equal to the file and are ignored; the
// same foreign content is reported once.
func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.repo.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	changed, data := w.repo.changedOnDisk()
	if !changed {
		w.reported = nil
		return
	}

	sum := sha256.Sum256(data)
	if w.reported != nil && *w.reported == sum {
		return
	}
	w.reported = &sum

	w.repo.debug("canonical file changed externally", "path", w.repo.path, "op", event.Op.String())
	select {
	case w.events <- core.Event{Type: core.EventExternalChange, Path: w.repo.path, Time: w.repo.config.Now()}:
	case <-ctx.Done():
	}
}
