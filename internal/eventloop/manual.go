package eventloop

import "time"

// ManualClock is a Clock driven by Advance. Timers fire synchronously inside
// Advance in deadline order, which makes timer-heavy state machines testable
// without sleeping.
type ManualClock struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

// NewManualClock returns a clock frozen at a fixed epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(1_000_000, 0)}
}

func (c *ManualClock) Now() time.Time {
	return c.now
}

func (c *ManualClock) NewTimer(d time.Duration, periodic bool, fn func()) Timer {
	if periodic && d <= 0 {
		d = time.Nanosecond
	}
	t := &manualTimer{clock: c, interval: d, periodic: periodic, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, firing every timer that comes due.
func (c *ManualClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		next := c.nextDue(target)
		if next == nil {
			break
		}
		c.now = next.deadline
		if next.periodic {
			next.deadline = next.deadline.Add(next.interval)
		} else {
			next.active = false
		}
		next.fn()
	}
	c.now = target
}

func (c *ManualClock) nextDue(target time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range c.timers {
		if !t.active || t.deadline.After(target) {
			continue
		}
		if best == nil || t.deadline.Before(best.deadline) ||
			(t.deadline.Equal(best.deadline) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

type manualTimer struct {
	clock    *ManualClock
	interval time.Duration
	periodic bool
	fn       func()

	deadline time.Time
	active   bool
	seq      uint64
}

func (t *manualTimer) Start() {
	t.clock.seq++
	t.seq = t.clock.seq
	t.deadline = t.clock.now.Add(t.interval)
	t.active = true
}

func (t *manualTimer) Stop() {
	t.active = false
}

func (t *manualTimer) Active() bool {
	return t.active
}
