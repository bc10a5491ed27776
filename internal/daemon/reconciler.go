package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/compwm/internal/platform"
)

// WindowLister is a function that returns the top-level windows that exist.
type WindowLister func() ([]platform.WindowID, error)

// WindowListerFromBackend lists windows through a platform backend.
func WindowListerFromBackend(backend platform.Backend) WindowLister {
	return backend.ClientWindows
}

// Tracker is the set of windows the compositor holds state for. Its methods
// are only called on the control thread.
type Tracker interface {
	Tracked() []platform.WindowID
	WindowDestroyed(id platform.WindowID)
}

// Executor runs fn on the control thread and waits for it.
type Executor func(ctx context.Context, fn func()) error

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops the state of windows whose DestroyNotify was
// missed, e.g. because they vanished while the connection was busy.
type Reconciler struct {
	interval    time.Duration
	tracker     Tracker
	listWindows WindowLister
	exec        Executor
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, tracker Tracker, listWindows WindowLister, exec Executor) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		tracker:     tracker,
		listWindows: listWindows,
		exec:        exec,
		logger:      logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass and returns the number of
// windows dropped.
func (r *Reconciler) reconcile(ctx context.Context) int {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	actualWindowIDs, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return 0
	}

	actualIDs := make(map[platform.WindowID]bool, len(actualWindowIDs))
	for _, wid := range actualWindowIDs {
		actualIDs[wid] = true
	}

	dropped := 0
	err = r.exec(ctx, func() {
		for _, windowID := range r.tracker.Tracked() {
			if actualIDs[windowID] {
				continue
			}
			r.logger.Info("reconciler: stale window dropped", "window_id", windowID)
			r.tracker.WindowDestroyed(windowID)
			dropped++
		}
	})
	if err != nil {
		r.logger.Warn("reconciler: control loop unavailable", "error", err)
	}
	return dropped
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) int {
	return r.reconcile(ctx)
}
