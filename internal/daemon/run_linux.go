//go:build linux

package daemon

import (
	"context"
	"fmt"

	"github.com/1broseidon/compwm/internal/animator"
	"github.com/1broseidon/compwm/internal/compositor"
	"github.com/1broseidon/compwm/internal/eventloop"
	"github.com/1broseidon/compwm/internal/hotkeys"
	"github.com/1broseidon/compwm/internal/ipc"
	"github.com/1broseidon/compwm/internal/render"
	"github.com/1broseidon/compwm/internal/runtimepath"
	"github.com/1broseidon/compwm/internal/wm"
	"github.com/1broseidon/compwm/internal/x11"
)

// Run connects to the X server, adopts its windows and composites them until
// ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.cfg

	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer conn.Close()

	caps, err := render.Probe(conn.XUtil.Conn())
	if err != nil {
		return fmt.Errorf("probe renderer: %w", err)
	}
	mode := render.Select(caps)
	d.logger.Info("renderer selected", "mode", mode, "composite", fmt.Sprintf("%d.%d", caps.CompositeMajor, caps.CompositeMinor))

	if err := conn.InitCompositing(); err != nil {
		return fmt.Errorf("init compositing: %w", err)
	}
	display, err := wm.NewX11Display(conn)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}

	loop := eventloop.New(eventloop.DefaultQueueSize, d.logger.With("component", "loop"))
	defer loop.Stop()
	clock := loop.Clock()

	m := compositor.NewManager(compositor.Options{
		Clock:  clock,
		System: display,
		// Timings are read per window so that a reload affects new windows.
		NewAnimator: func(target compositor.AnimationTarget) compositor.Animator {
			return animator.New(target, animator.Options{
				Clock:    clock,
				Duration: d.cfg.AnimationDuration(),
				Frame:    d.cfg.FrameInterval(),
			})
		},
		NewRenderer: render.Factory(conn.XUtil.Conn(), mode, d.logger.With("component", "render")),
		Logger:      d.logger.With("component", "compositor"),
		Repaint:     d.metrics.Repaint,
	})

	session := wm.NewSession(display, m, settingsFor(cfg), d.logger.With("component", "session"))
	conn.Listen(display.Handlers(session))
	if err := session.Start(); err != nil {
		return err
	}
	d.attach(loop, session, mode.String())

	hk := hotkeys.NewHandler(conn.XUtil, conn.Root, sessionActions{s: session}, d.logger.With("component", "hotkeys"))
	if err := hk.Register(hotkeys.Bindings{Iconify: cfg.Hotkeys.Iconify, Close: cfg.Hotkeys.Close}); err != nil {
		d.logger.Warn("hotkeys unavailable", "error", err)
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return fmt.Errorf("resolve socket path: %w", err)
	}
	srv := ipc.NewServer(socketPath, d, d.logger.With("component", "ipc"))
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer srv.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: cfg.ReconcileInterval(),
		Logger:   d.logger.With("component", "reconciler"),
	}, session, WindowListerFromBackend(display), loop.Call)
	go reconciler.Run(ctx)

	if d.cfgPath != "" {
		watcher := NewConfigWatcher(d.cfgPath, func() {
			if err := d.Reload(ctx); err != nil {
				d.logger.Warn("config reload failed", "error", err)
			}
		}, d.logger.With("component", "watcher"))
		go func() {
			if err := watcher.Run(ctx); err != nil {
				d.logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := d.metrics.Serve(ctx, cfg.MetricsAddr, d.logger.With("component", "metrics")); err != nil {
				d.logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	d.logger.Info("compositor running", "socket", socketPath, "renderer", mode.String())
	conn.Run(ctx, loop)
	d.logger.Info("compositor stopped")
	return nil
}
