// Package animator implements the per-window transition driver used by the
// compositor: one pending and at most one active translate/scale/fade
// transition, advanced by loop timers with linear interpolation.
package animator

import (
	"time"

	"github.com/1broseidon/compwm/internal/compositor"
	"github.com/1broseidon/compwm/internal/eventloop"
	"github.com/1broseidon/compwm/internal/platform"
)

// Default timings, overridable through config.
const (
	DefaultDuration = 250 * time.Millisecond
	DefaultFrame    = 16 * time.Millisecond
)

// Options configures the animators created by a Factory.
type Options struct {
	Clock    eventloop.Clock
	Duration time.Duration
	Frame    time.Duration
}

type params struct {
	fromX, fromY float64
	toX, toY     float64
	pos          platform.PointF
	reversed     bool
}

// Animator moves one AnimationTarget. It must only be used on the loop
// thread.
type Animator struct {
	target   compositor.AnimationTarget
	clock    eventloop.Clock
	duration time.Duration

	next     params
	cur      params
	startPos platform.PointF
	started  time.Time

	pending  bool
	active   bool
	deferred bool

	// kick starts a non-deferred transition on the next loop turn, so that
	// callers can still correct the parameters right after arming.
	kick  eventloop.Timer
	frame eventloop.Timer
}

// New creates an animator for target.
func New(target compositor.AnimationTarget, opts Options) *Animator {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Frame <= 0 {
		opts.Frame = DefaultFrame
	}
	a := &Animator{
		target:   target,
		clock:    opts.Clock,
		duration: opts.Duration,
	}
	a.kick = opts.Clock.NewTimer(0, false, a.StartAnimation)
	a.frame = opts.Clock.NewTimer(opts.Frame, true, a.step)
	return a
}

// Factory returns a compositor.AnimatorFactory creating animators with opts.
func Factory(opts Options) compositor.AnimatorFactory {
	return func(target compositor.AnimationTarget) compositor.Animator {
		return New(target, opts)
	}
}

// TranslateScale arms a transition. While a transition runs, its end point is
// moved instead and its progress is kept.
func (a *Animator) TranslateScale(fromX, fromY, toX, toY float64, pos platform.PointF, reversed bool) {
	p := params{fromX: fromX, fromY: fromY, toX: toX, toY: toY, pos: pos, reversed: reversed}
	if a.active && !a.pending && p.reversed == a.cur.reversed {
		a.cur = p
		return
	}
	a.next = p
	a.pending = true
	if !a.deferred {
		a.kick.Start()
	}
}

// DeferAnimation keeps a pending transition from starting on its own.
func (a *Animator) DeferAnimation(deferred bool) {
	a.deferred = deferred
	if deferred {
		a.kick.Stop()
	}
}

// StartAnimation runs the pending transition. A running transition is
// allowed to finish first; the pending one starts right after it.
func (a *Animator) StartAnimation() {
	a.kick.Stop()
	if !a.pending || a.active {
		return
	}
	a.pending = false
	a.cur = a.next
	a.active = true
	a.startPos = a.target.Pos()
	a.started = a.clock.Now()
	a.target.BeginAnimation()
	a.apply(0)
	a.frame.Start()
}

// StopAnimation drops the pending and the running transition without
// notifying the target.
func (a *Animator) StopAnimation() {
	a.kick.Stop()
	a.frame.Stop()
	a.pending = false
	a.active = false
}

func (a *Animator) PendingAnimation() bool {
	return a.pending
}

func (a *Animator) IsActive() bool {
	return a.active
}

func (a *Animator) step() {
	if !a.active {
		return
	}
	t := float64(a.clock.Now().Sub(a.started)) / float64(a.duration)
	if t < 1 {
		a.apply(t)
		return
	}
	a.apply(1)
	a.frame.Stop()
	a.active = false
	a.target.FinalizeState()
	if a.pending && !a.deferred {
		a.kick.Start()
	}
}

func (a *Animator) apply(t float64) {
	p := a.cur
	s := t
	if p.reversed {
		s = 1 - t
	}
	a.target.SetScale(lerp(p.fromX, p.toX, s), lerp(p.fromY, p.toY, s))
	a.target.SetPos(platform.PointF{
		X: lerp(a.startPos.X, p.pos.X, t),
		Y: lerp(a.startPos.Y, p.pos.Y, t),
	})
	a.target.SetOpacity(1 - s)
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
