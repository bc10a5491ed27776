package animator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/compwm/internal/eventloop"
	"github.com/1broseidon/compwm/internal/platform"
)

type fakeTarget struct {
	pos       platform.PointF
	sx, sy    float64
	opacity   float64
	begins    int
	finalizes int
	onFinal   func()
}

func (f *fakeTarget) Pos() platform.PointF       { return f.pos }
func (f *fakeTarget) SetPos(p platform.PointF)   { f.pos = p }
func (f *fakeTarget) SetScale(sx, sy float64)    { f.sx, f.sy = sx, sy }
func (f *fakeTarget) SetOpacity(opacity float64) { f.opacity = opacity }
func (f *fakeTarget) BeginAnimation()            { f.begins++ }
func (f *fakeTarget) FinalizeState() {
	f.finalizes++
	if f.onFinal != nil {
		f.onFinal()
	}
}

func newTestAnimator(t *testing.T) (*Animator, *fakeTarget, *eventloop.ManualClock) {
	t.Helper()
	clock := eventloop.NewManualClock()
	target := &fakeTarget{sx: 1, sy: 1, opacity: 1}
	a := New(target, Options{Clock: clock, Duration: 100 * time.Millisecond, Frame: 10 * time.Millisecond})
	return a, target, clock
}

func TestAutoStartOnNextTurn(t *testing.T) {
	a, target, clock := newTestAnimator(t)

	a.TranslateScale(1, 1, 0.5, 0.25, platform.PointF{X: 100, Y: 50}, false)
	require.True(t, a.PendingAnimation())
	require.False(t, a.IsActive())

	clock.Advance(0)
	require.True(t, a.IsActive())
	require.False(t, a.PendingAnimation())
	assert.Equal(t, 1, target.begins)

	clock.Advance(50 * time.Millisecond)
	assert.InDelta(t, 0.75, target.sx, 1e-9)
	assert.InDelta(t, 50, target.pos.X, 1e-9)
	assert.InDelta(t, 0.5, target.opacity, 1e-9)

	clock.Advance(50 * time.Millisecond)
	assert.False(t, a.IsActive())
	assert.Equal(t, 1, target.finalizes)
	assert.InDelta(t, 0.5, target.sx, 1e-9)
	assert.InDelta(t, 0.25, target.sy, 1e-9)
	assert.Equal(t, platform.PointF{X: 100, Y: 50}, target.pos)
	assert.InDelta(t, 0, target.opacity, 1e-9)
}

func TestDeferredWaitsForStart(t *testing.T) {
	a, target, clock := newTestAnimator(t)

	a.DeferAnimation(true)
	a.TranslateScale(1, 1, 0.5, 0.5, platform.PointF{}, false)
	clock.Advance(time.Second)
	assert.True(t, a.PendingAnimation())
	assert.Equal(t, 0, target.begins)

	a.StartAnimation()
	assert.True(t, a.IsActive())
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, target.finalizes)
}

func TestPendingIsReplaced(t *testing.T) {
	a, target, clock := newTestAnimator(t)

	a.TranslateScale(1, 1, 0.5, 0.5, platform.PointF{X: 10}, false)
	a.TranslateScale(1, 1, 0.2, 0.2, platform.PointF{X: 20}, true)
	clock.Advance(time.Second)

	assert.Equal(t, 1, target.begins)
	assert.Equal(t, 1, target.finalizes)
	// Reversed transitions end at identity scale and full opacity.
	assert.InDelta(t, 1, target.sx, 1e-9)
	assert.InDelta(t, 1, target.opacity, 1e-9)
	assert.Equal(t, platform.PointF{X: 20}, target.pos)
}

func TestRetargetWhileActive(t *testing.T) {
	a, target, clock := newTestAnimator(t)

	a.TranslateScale(1, 1, 0.5, 0.5, platform.PointF{X: 100}, false)
	clock.Advance(50 * time.Millisecond)
	require.True(t, a.IsActive())

	a.TranslateScale(1, 1, 0.1, 0.1, platform.PointF{X: 200}, false)
	assert.False(t, a.PendingAnimation())

	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, target.begins)
	assert.Equal(t, 1, target.finalizes)
	assert.Equal(t, platform.PointF{X: 200}, target.pos)
	assert.InDelta(t, 0.1, target.sx, 1e-9)
}

func TestOppositeDirectionQueuesBehindActive(t *testing.T) {
	a, target, clock := newTestAnimator(t)

	a.TranslateScale(1, 1, 0.5, 0.5, platform.PointF{X: 100}, false)
	clock.Advance(20 * time.Millisecond)
	a.TranslateScale(1, 1, 0.5, 0.5, platform.PointF{}, true)
	assert.True(t, a.PendingAnimation())

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, target.finalizes)
	assert.True(t, a.IsActive())

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, 2, target.finalizes)
	assert.Equal(t, 2, target.begins)
}

func TestStopAnimationIsSilent(t *testing.T) {
	a, target, clock := newTestAnimator(t)

	a.TranslateScale(1, 1, 0.5, 0.5, platform.PointF{}, false)
	clock.Advance(30 * time.Millisecond)
	a.StopAnimation()
	clock.Advance(time.Second)

	assert.False(t, a.IsActive())
	assert.False(t, a.PendingAnimation())
	assert.Equal(t, 0, target.finalizes)
}

func TestStopFromFinalize(t *testing.T) {
	a, target, clock := newTestAnimator(t)
	target.onFinal = a.StopAnimation

	a.TranslateScale(1, 1, 0.5, 0.5, platform.PointF{}, false)
	clock.Advance(time.Second)

	assert.Equal(t, 1, target.finalizes)
	assert.False(t, a.IsActive())
}
