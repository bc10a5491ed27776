package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/compwm/internal/platform"
)

var iconRect = platform.Rect{X: 10, Y: 500, Width: 40, Height: 30}

func TestIconifyRunsSingleTransition(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	a := h.anims[1]

	w.Iconify(iconRect, false)
	assert.Equal(t, StatusMinimizing, w.Status())
	assert.True(t, w.Iconifying())
	assert.True(t, w.IsTransitioning())
	assert.Equal(t, 1, h.m.Transitioning())
	assert.Equal(t, iconRect, w.IconGeometry())
	assert.Equal(t, platform.PointF{X: 100, Y: 100}, w.OrigPosition())

	call := a.last(t)
	assert.Equal(t, 1.0, call.fromX)
	assert.Equal(t, 1.0, call.fromY)
	assert.InDelta(t, 0.1, call.toX, 1e-9)
	assert.InDelta(t, 0.1, call.toY, 1e-9)
	assert.Equal(t, platform.PointF{X: 10, Y: 500}, call.pos)
	assert.False(t, call.reversed)

	a.StartAnimation()
	assert.False(t, w.IsIconified(), "not iconified while the transition runs")
	a.finish()

	assert.Equal(t, StatusNormal, w.Status())
	assert.True(t, w.IsIconified())
	assert.False(t, w.IsVisible())
	assert.Equal(t, IconifyTransition, w.IconifyState())
	assert.Equal(t, 1, h.count(EventIconified, true))
	assert.Equal(t, 1, a.starts)
	h.checkCounter()
}

func TestIconifyThenRestoreBeforeStart(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	a := h.anims[1]

	w.Iconify(iconRect, false)
	w.Restore(iconRect, false)

	assert.False(t, w.Iconifying())
	assert.Equal(t, StatusNormal, w.Status())
	assert.True(t, a.last(t).reversed)
	assert.Equal(t, 1, h.m.Transitioning())

	a.run()
	assert.Equal(t, 1, a.starts)
	assert.Zero(t, h.count(EventIconified, true))
	assert.Equal(t, 1, h.count(EventRestored, true))
	assert.True(t, w.IsVisible())
	assert.False(t, w.IsIconified())
	h.checkCounter()
}

func TestRestoreEmptyTargetUsesFadeRect(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)

	w.Restore(platform.Rect{}, true)
	assert.Equal(t, h.m.FadeRect(), w.IconGeometry())
	assert.Equal(t, h.m.FadeRect().TopLeft(), w.Pos())
	assert.True(t, h.anims[1].deferred)
}

func TestLateIconGeometryRetargetsPendingIconify(t *testing.T) {
	h := newHarness(t)
	w, pc := h.shown(1)
	a := h.anims[1]

	w.Iconify(iconRect, false)
	corrected := platform.Rect{X: 700, Y: 550, Width: 80, Height: 60}
	pc.setIconGeometry(corrected)

	call := a.last(t)
	assert.Equal(t, corrected.TopLeft(), call.pos)
	assert.InDelta(t, 0.2, call.toX, 1e-9)
	assert.InDelta(t, 0.2, call.toY, 1e-9)
	assert.Equal(t, corrected, w.IconGeometry())
	assert.True(t, a.IsActive(), "the corrected transition was started")
	assert.Zero(t, h.count(EventIconified, true))
	assert.Contains(t, h.sys.visibility, visibilitySent{1, true})

	a.finish()
	assert.Equal(t, 1, h.count(EventIconified, true))
	assert.Equal(t, 1, a.starts)
}

func TestStartTransitionWaitsForIconGeometry(t *testing.T) {
	h := newHarness(t)
	w, pc := h.shown(1)
	a := h.anims[1]

	w.Iconify(platform.Rect{}, true)
	w.StartTransition()
	assert.True(t, a.PendingAnimation())
	assert.Zero(t, a.starts)

	pc.setIconGeometry(iconRect)
	assert.Equal(t, 1, a.starts)
	assert.Equal(t, iconRect.TopLeft(), a.last(t).pos)
}

func TestIconGeometryIgnoredWhenNotIconifying(t *testing.T) {
	h := newHarness(t)
	w, pc := h.shown(1)

	pc.setIconGeometry(iconRect)
	assert.Empty(t, h.anims[1].calls)
	assert.Equal(t, iconRect, w.IconGeometry())
}

func TestManualIconifyBypassesAnimation(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	w.SetIconifyState(IconifyManual)

	w.Iconify(iconRect, false)
	assert.Empty(t, h.anims[1].calls)
	assert.False(t, w.IsVisible())
	assert.Equal(t, StatusNormal, w.Status())
	assert.True(t, w.IsIconified())
	assert.False(t, w.IsTransitioning())
	assert.Equal(t, 1, h.count(EventIconified, true))
}

func TestSetIconified(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)

	w.SetIconified(true)
	assert.Equal(t, IconifyManual, w.IconifyState())
	assert.Equal(t, 1, h.count(EventIconified, true))

	w.SetIconified(false)
	assert.Equal(t, IconifyNone, w.IconifyState())

	// A pending transition will report the outcome itself.
	w.Iconify(iconRect, true)
	w.SetIconified(true)
	assert.Equal(t, 1, h.count(EventIconified, true))
}

func TestIconifyHungWindowHidesWithoutAnimation(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	w.StartPing()
	h.clock.Advance(PingInterval)
	require.Equal(t, StatusHung, w.Status())

	w.Iconify(iconRect, false)
	assert.Empty(t, h.anims[1].calls)
	assert.False(t, w.IsVisible())
	assert.Equal(t, StatusHung, w.Status())
}

func TestIconifyToldBehindWindowUnobscured(t *testing.T) {
	h := newHarness(t)
	h.shown(1)
	w2, _ := h.shown(2)
	h.m.Restack([]platform.WindowID{1, 2})
	require.Equal(t, h.m.Lookup(1), w2.BehindWindow())

	w2.Iconify(iconRect, false)
	h.anims[2].run()
	assert.Contains(t, h.sys.visibility, visibilitySent{1, false})
}

func TestCloseWindowAnimation(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	h.renderers[1].pixmap = true

	w.CloseWindowAnimation()
	assert.Equal(t, StatusClosing, w.Status())
	assert.True(t, w.IsTransitioning())
	call := h.anims[1].last(t)
	assert.Equal(t, h.m.FadeRect().TopLeft(), call.pos)
	assert.False(t, h.anims[1].deferred)

	// Closing is entered once.
	w.CloseWindowAnimation()
	assert.Len(t, h.anims[1].calls, 1)

	h.anims[1].run()
	assert.Equal(t, StatusNormal, w.Status())
	assert.Equal(t, 1, h.count(EventIconified, true))
}

func TestCloseWindowAnimationRefused(t *testing.T) {
	h := newHarness(t)

	w, _ := h.shown(1)
	w.CloseWindowAnimation()
	assert.Equal(t, StatusNormal, w.Status(), "no pixmap to animate")

	w2, pc := h.shown(2)
	h.renderers[2].pixmap = true
	pc.wmState = platform.WMStateIconic
	w2.CloseWindowAnimation()
	assert.Equal(t, StatusNormal, w2.Status())
}

func TestCloseWindowAnimationVetoedByExtension(t *testing.T) {
	h := newHarness(t)
	h.m.AddExtension(&claimAll{})
	w, _ := h.shown(1)
	h.renderers[1].pixmap = true

	w.CloseWindowAnimation()
	assert.Equal(t, StatusNormal, w.Status())
	assert.Empty(t, h.anims[1].calls)
}

func TestCloseClearsHung(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	h.renderers[1].pixmap = true
	w.StartPing()
	h.clock.Advance(PingInterval)
	require.Equal(t, StatusHung, w.Status())
	require.True(t, w.Blurred())

	w.CloseWindowAnimation()
	assert.Equal(t, StatusClosing, w.Status())
	assert.Equal(t, 1, h.count(EventHung, false))
	assert.False(t, w.Blurred())
	assert.Len(t, h.anims[1].calls, 1)

	// No hang warning comes back while closing.
	h.clock.Advance(ReappearDelay)
	assert.Equal(t, 1, h.count(EventHung, true))
	assert.Equal(t, StatusClosing, w.Status())
}

func TestCloseWindowRequestEnablesCompositing(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	require.True(t, h.m.DisableCompositing())

	w.CloseWindowRequest()
	assert.True(t, h.m.IsCompositing())
	assert.True(t, h.renderers[1].HasPixmap())
	assert.Equal(t, 1, h.count(EventCloseRequest, true))
}

func TestCloseWindowRequestUnmappedIgnored(t *testing.T) {
	h := newHarness(t)
	w, pc := h.shown(1)
	pc.mapped = false

	w.CloseWindowRequest()
	assert.Zero(t, h.count(EventCloseRequest, true))

	pc.beingMapped = true
	w.CloseWindowRequest()
	assert.Equal(t, 1, h.count(EventCloseRequest, true))
}
