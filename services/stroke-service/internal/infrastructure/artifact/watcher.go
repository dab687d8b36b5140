package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is invoked by a Watcher after the model file settles.
type ReloadFunc func(ctx context.Context) error

// Watcher reloads the model when its file is rewritten. It watches the
// parent directory so atomic rename-into-place is seen, and coalesces
// bursts of events within the debounce window into one reload.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   ReloadFunc
	logger   *slog.Logger
}

// NewWatcher creates a Watcher for path.
func NewWatcher(path string, debounce time.Duration, reload ReloadFunc, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		reload:   reload,
		logger:   logger,
	}
}

// Run blocks until ctx is canceled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching model file", "path", w.path, "debounce", w.debounce)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("model file event", "op", ev.Op.String(), "name", ev.Name)
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				w.logger.Error("model reload failed", "path", w.path, "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
