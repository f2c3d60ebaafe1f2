package preset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/projector-rig/internal/logger"
)

// Event is a reload result.
type Event struct {
	Preset *Preset
	Err    error
}

// Watcher reloads a preset whenever its file changes.
//
// The parent directory is watched rather than the file itself, since many
// editors save by writing a new file and renaming it over the old one.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	events   chan Event
	log      *zap.Logger
}

// NewWatcher starts watching path. Bursts of file events within debounce
// produce a single reload.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	if _, err := FormatOf(abs); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
		events:   make(chan Event, 1),
		log:      logger.Named("watch").With(zap.String("path", abs)),
	}, nil
}

// Events delivers reload results. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.watcher.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("preset changed", zap.Stringer("op", ev.Op))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			p, err := Load(w.path)
			if err != nil {
				w.log.Warn("reload failed", zap.Error(err))
			}
			select {
			case w.events <- Event{Preset: p, Err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
