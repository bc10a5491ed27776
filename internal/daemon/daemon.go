// Package daemon assembles the compositor: it owns the control loop, answers
// IPC requests by hopping onto that loop and keeps the configuration live.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/1broseidon/compwm/internal/compositor"
	"github.com/1broseidon/compwm/internal/config"
	"github.com/1broseidon/compwm/internal/eventloop"
	"github.com/1broseidon/compwm/internal/ipc"
	"github.com/1broseidon/compwm/internal/metrics"
	"github.com/1broseidon/compwm/internal/platform"
	"github.com/1broseidon/compwm/internal/wm"
)

// ErrNotRunning is returned by requests that arrive before the compositor
// has adopted the display.
var ErrNotRunning = errors.New("compositor not running")

// Daemon runs one compositor session.
type Daemon struct {
	cfgPath string
	level   *slog.LevelVar
	logger  *slog.Logger
	metrics *metrics.Collector

	// Written once by attach; read by IPC goroutines afterwards.
	mu       sync.RWMutex
	loop     *eventloop.Loop
	session  *wm.Session
	renderer string

	// cfg is replaced on the control thread only.
	cfg *config.Config
}

var _ ipc.Handler = (*Daemon)(nil)

// New creates a daemon. cfgPath is re-read on reload; level, when non-nil,
// is adjusted to the configured log level.
func New(cfgPath string, cfg *config.Config, level *slog.LevelVar, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	if level == nil {
		level = new(slog.LevelVar)
	}
	level.Set(cfg.SlogLevel())
	return &Daemon{
		cfgPath: cfgPath,
		cfg:     cfg,
		level:   level,
		logger:  logger,
		metrics: metrics.NewCollector(),
	}
}

// Metrics returns the daemon's collector.
func (d *Daemon) Metrics() *metrics.Collector {
	return d.metrics
}

// settingsFor extracts the session settings from cfg.
func settingsFor(cfg *config.Config) wm.Settings {
	return wm.Settings{
		DecoratorClasses:     cfg.DecoratorClasses,
		AlwaysComposite:      cfg.Compositing == config.CompositingAlways,
		UnredirectFullscreen: cfg.UnredirectFullscreen,
	}
}

// attach publishes the running session to request handlers.
func (d *Daemon) attach(loop *eventloop.Loop, session *wm.Session, renderer string) {
	m := session.Manager()
	m.Subscribe(func(ev compositor.Event) {
		d.metrics.Observe(ev)
		d.metrics.Update(m.Snapshot())
	})
	d.metrics.Update(m.Snapshot())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loop = loop
	d.session = session
	d.renderer = renderer
}

// call runs fn against the session on the control thread.
func (d *Daemon) call(ctx context.Context, fn func(s *wm.Session)) error {
	d.mu.RLock()
	loop, session := d.loop, d.session
	d.mu.RUnlock()
	if loop == nil {
		return ErrNotRunning
	}
	return loop.Call(ctx, func() { fn(session) })
}

// Status implements ipc.Handler.
func (d *Daemon) Status(ctx context.Context) (ipc.StatusData, error) {
	var data ipc.StatusData
	err := d.call(ctx, func(s *wm.Session) {
		snap := s.Manager().Snapshot()
		d.metrics.Update(snap)
		data = ipc.StatusData{
			Windows:       snap.Windows,
			Visible:       snap.Visible,
			Transitioning: snap.Transitioning,
			Hung:          snap.Hung,
			Iconified:     snap.Iconified,
			Compositing:   snap.Compositing,
		}
	})
	if err != nil {
		return ipc.StatusData{}, err
	}
	d.mu.RLock()
	data.Renderer = d.renderer
	d.mu.RUnlock()
	return data, nil
}

// Windows implements ipc.Handler. Windows are listed bottom to top; windows
// missing from the stacking list follow in id order.
func (d *Daemon) Windows(ctx context.Context) ([]ipc.WindowInfo, error) {
	var out []ipc.WindowInfo
	err := d.call(ctx, func(s *wm.Session) {
		m := s.Manager()
		listed := make(map[platform.WindowID]bool)
		for _, id := range m.StackingList() {
			if w := m.Lookup(id); w != nil {
				out = append(out, windowInfo(w))
				listed[id] = true
			}
		}
		for _, w := range m.Windows() {
			if !listed[w.ID()] {
				out = append(out, windowInfo(w))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func windowInfo(w *compositor.Window) ipc.WindowInfo {
	info := ipc.WindowInfo{
		ID:        uint32(w.ID()),
		Status:    w.Status().String(),
		Visible:   w.IsVisible(),
		Mapped:    w.IsMapped(),
		Iconified: w.IsIconified(),
		Blurred:   w.Blurred(),
		ZValue:    w.ZValue(),
		Opacity:   w.Opacity(),
	}
	if behind := w.BehindWindow(); behind != nil {
		info.Behind = uint32(behind.ID())
	}
	return info
}

// Reload implements ipc.Handler. The file is parsed off the control thread;
// the result is installed on it.
func (d *Daemon) Reload(ctx context.Context) error {
	res, err := config.LoadFromPath(d.cfgPath)
	if err != nil {
		return err
	}
	cfg := res.Config
	err = d.call(ctx, func(s *wm.Session) {
		d.cfg = cfg
		d.level.Set(cfg.SlogLevel())
		s.Apply(settingsFor(cfg))
	})
	if err != nil {
		return err
	}
	d.logger.Info("config reloaded", "path", d.cfgPath, "files", len(res.Files))
	return nil
}

// Iconify implements ipc.Handler.
func (d *Daemon) Iconify(ctx context.Context, id uint32) error {
	var actionErr error
	if err := d.call(ctx, func(s *wm.Session) {
		actionErr = s.IconifyWindow(platform.WindowID(id))
	}); err != nil {
		return err
	}
	return actionErr
}

// Close implements ipc.Handler.
func (d *Daemon) Close(ctx context.Context, id uint32) error {
	var actionErr error
	if err := d.call(ctx, func(s *wm.Session) {
		actionErr = s.CloseWindow(platform.WindowID(id))
	}); err != nil {
		return err
	}
	return actionErr
}

// sessionActions lets hotkey callbacks, which already run on the control
// thread, reach the session directly.
type sessionActions struct {
	s *wm.Session
}

func (a sessionActions) IconifyWindow(id uint32) error {
	return a.s.IconifyWindow(platform.WindowID(id))
}

func (a sessionActions) CloseWindow(id uint32) error {
	return a.s.CloseWindow(platform.WindowID(id))
}
