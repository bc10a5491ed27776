// Package eventloop confines compositor state to a single control thread.
//
// Window-system events, timer expirations and requests from other goroutines
// (IPC, reconciler, metrics) are all funneled through one Loop so the core
// state machines never need locks.
package eventloop

import (
	"context"
	"errors"
	"log/slog"
)

// DefaultQueueSize is the task buffer used by New when size <= 0.
const DefaultQueueSize = 256

// ErrStopped is returned by Call once the loop has shut down.
var ErrStopped = errors.New("event loop stopped")

// Loop is a queue of tasks executed by whichever goroutine drains Tasks.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	logger *slog.Logger
}

// New creates a loop with the given task buffer size.
func New(size int, logger *slog.Logger) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Tasks exposes the queue to an external driver such as the X event loop.
func (l *Loop) Tasks() <-chan func() {
	return l.tasks
}

// Done is closed once Stop has been called.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn for execution on the loop thread. It reports false if the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop thread and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Execute runs a single task, recovering from panics so one misbehaving
// handler cannot take down the compositor.
func (l *Loop) Execute(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", err)
		}
	}()
	fn()
}

// Run drains tasks until ctx is cancelled or Stop is called. It is used when
// no window-system driver owns the thread.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case fn := <-l.tasks:
			l.Execute(fn)
		}
	}
}

// Stop shuts the loop down. Pending tasks are dropped.
func (l *Loop) Stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}
