package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/compwm/internal/platform"
)

func TestFadeRectIsCenteredQuarter(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, platform.Rect{X: 200, Y: 150, Width: 400, Height: 300}, h.m.FadeRect())

	h.m.SetScreen(platform.Rect{X: 1920, Width: 1000, Height: 800})
	assert.Equal(t, platform.Rect{X: 2170, Y: 200, Width: 500, Height: 400}, h.m.FadeRect())
}

func TestAddReturnsExisting(t *testing.T) {
	h := newHarness(t)
	w := h.add(1, newFakeCache())
	assert.Same(t, w, h.add(1, newFakeCache()))
	assert.Len(t, h.m.Windows(), 1)
}

func TestDisableCompositingRefusedWhileAnimating(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	w.Iconify(iconRect, false)

	assert.False(t, h.m.DisableCompositing())
	assert.True(t, h.m.IsCompositing())
}

func TestEnableCompositingStartsPendingTransitions(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	require.True(t, h.m.DisableCompositing())
	require.True(t, h.renderers[1].IsDirectRendered())

	w.Iconify(iconRect, true)
	h.m.SetDisplayOff(true)
	h.m.EnableCompositing(false)
	assert.False(t, h.m.IsCompositing(), "refused while the display is off")

	h.m.EnableCompositing(true)
	assert.True(t, h.m.IsCompositing())
	assert.False(t, h.renderers[1].IsDirectRendered())
	assert.Equal(t, 1, h.anims[1].starts)
}

func fullscreenApp(h *harness, id platform.WindowID) (*Window, *fakeCache) {
	h.t.Helper()
	pc := newFakeCache()
	pc.geometry = testScreen
	w := h.add(id, pc)
	w.SetUntransformed()
	return w, pc
}

func TestPossiblyUnredirectTopmost(t *testing.T) {
	h := newHarness(t)
	fullscreenApp(h, 1)
	h.m.Restack([]platform.WindowID{1})

	assert.True(t, h.m.PossiblyUnredirectTopmost(testScreen))
	assert.False(t, h.m.IsCompositing())
	assert.True(t, h.renderers[1].IsDirectRendered())
}

func TestPossiblyUnredirectTopmostRefused(t *testing.T) {
	t.Run("shaped", func(t *testing.T) {
		h := newHarness(t)
		_, pc := fullscreenApp(h, 1)
		pc.shape = platform.Region{{Width: 800, Height: 500}}
		assert.False(t, h.m.PossiblyUnredirectTopmost(testScreen))
	})
	t.Run("not covering", func(t *testing.T) {
		h := newHarness(t)
		h.shown(1)
		assert.False(t, h.m.PossiblyUnredirectTopmost(testScreen))
	})
	t.Run("transitioning", func(t *testing.T) {
		h := newHarness(t)
		fullscreenApp(h, 1)
		w2, _ := h.shown(2)
		w2.Iconify(iconRect, false)
		assert.False(t, h.m.PossiblyUnredirectTopmost(testScreen))
	})
	t.Run("nothing visible", func(t *testing.T) {
		h := newHarness(t)
		assert.False(t, h.m.PossiblyUnredirectTopmost(testScreen))
	})
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t)
	w1, _ := h.shown(1)
	w2, _ := h.shown(2)
	h.shown(3)

	w1.StartPing()
	h.clock.Advance(PingInterval)
	w2.Iconify(iconRect, false)
	h.anims[2].run()
	w3 := h.m.Lookup(3)
	w3.Iconify(iconRect, false)

	s := h.m.Snapshot()
	assert.Equal(t, Snapshot{
		Windows:       3,
		Visible:       2,
		Transitioning: 1,
		Hung:          1,
		Iconified:     1,
		Compositing:   true,
	}, s)
}

func TestDamageForwardedByManager(t *testing.T) {
	h := newHarness(t)
	h.shown(1)

	h.m.Damage(1, []platform.Rect{{Width: 1, Height: 1}})
	h.m.Damage(99, nil)
	assert.Equal(t, 1, h.renderers[1].updates)
}

func TestVisibilityChangeBehindVisibleItemSkipsRepaint(t *testing.T) {
	h := newHarness(t)
	fullscreenApp(h, 1)
	pc := newFakeCache()
	pc.windowType = TypeDesktop
	low := h.add(2, pc)
	h.m.Restack([]platform.WindowID{2, 1})

	before := h.repaints
	low.SetVisible(false)
	assert.Equal(t, before, h.repaints)

	low.SetVisible(true)
	assert.Equal(t, before, h.repaints)
}
