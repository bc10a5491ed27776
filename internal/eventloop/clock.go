package eventloop

import "time"

// Timer is a restartable single-shot or interval timer whose callback runs on
// the loop thread.
type Timer interface {
	// Start arms the timer from now, replacing any pending expiry.
	Start()
	Stop()
	Active() bool
}

// Clock creates loop-confined timers.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration, periodic bool, fn func()) Timer
}

// Clock returns a wall clock whose timers fire on l.
func (l *Loop) Clock() Clock {
	return &loopClock{loop: l}
}

type loopClock struct {
	loop *Loop
}

func (c *loopClock) Now() time.Time {
	return time.Now()
}

func (c *loopClock) NewTimer(d time.Duration, periodic bool, fn func()) Timer {
	return &loopTimer{loop: c.loop, interval: d, periodic: periodic, fn: fn}
}

// loopTimer fields are only touched on the loop thread. The runtime timer
// goroutine only posts a closure carrying the generation it was armed with,
// so a stale expiry that raced with Stop or Start is discarded.
type loopTimer struct {
	loop     *Loop
	interval time.Duration
	periodic bool
	fn       func()

	t      *time.Timer
	gen    uint64
	active bool
}

func (lt *loopTimer) Start() {
	lt.active = true
	lt.arm()
}

func (lt *loopTimer) arm() {
	if lt.t != nil {
		lt.t.Stop()
	}
	lt.gen++
	gen := lt.gen
	lt.t = time.AfterFunc(lt.interval, func() {
		lt.loop.Post(func() { lt.fire(gen) })
	})
}

func (lt *loopTimer) fire(gen uint64) {
	if gen != lt.gen || !lt.active {
		return
	}
	if lt.periodic {
		lt.arm()
	} else {
		lt.active = false
	}
	lt.fn()
}

func (lt *loopTimer) Stop() {
	lt.active = false
	lt.gen++
	if lt.t != nil {
		lt.t.Stop()
		lt.t = nil
	}
}

func (lt *loopTimer) Active() bool {
	return lt.active
}
