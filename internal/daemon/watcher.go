package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// ConfigWatcher calls onChange after the config file is written, created or
// replaced. The parent directory is watched so that atomic renames are
// seen.
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger
}

// NewConfigWatcher creates a watcher for path.
func NewConfigWatcher(path string, onChange func(), logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until ctx is cancelled.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Debug("watching config", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			w.logger.Info("config file changed", "path", w.path)
			w.onChange()
		}
	}
}
