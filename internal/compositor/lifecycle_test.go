package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/compwm/internal/platform"
)

func TestDestroyImmediateWhenIdle(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)

	h.m.Remove(1)
	assert.True(t, w.IsDestroyed())
	assert.Nil(t, h.m.Lookup(1))
	assert.True(t, h.renderers[1].released)
	assert.Equal(t, 1, h.count(EventDestroyed, true))

	// Everything after release is a no-op.
	w.Iconify(iconRect, false)
	w.ShowWindow()
	assert.Empty(t, h.anims[1].calls)
	h.m.Remove(1)
	assert.Equal(t, 1, h.count(EventDestroyed, true))
}

func TestDestroyDeferredDuringTransition(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	a := h.anims[1]

	w.Iconify(iconRect, false)
	a.StartAnimation()
	h.m.Remove(1)
	h.m.Remove(1)

	assert.True(t, w.DestroyPending())
	assert.Same(t, w, h.m.Lookup(1))
	assert.False(t, h.renderers[1].released)
	assert.Zero(t, h.count(EventDestroyed, true))
	h.checkCounter()

	a.finish()
	assert.True(t, w.IsDestroyed())
	assert.Nil(t, h.m.Lookup(1))
	assert.True(t, h.renderers[1].released)
	assert.Equal(t, 1, h.count(EventIconified, true), "the transition reached its end state first")
	assert.Equal(t, 1, h.count(EventDestroyed, true))
	assert.Zero(t, h.m.Transitioning())
}

func TestDestroyDuringDamageWait(t *testing.T) {
	h := newHarness(t)
	w := h.add(1, newFakeCache())
	a := h.anims[1]
	require.True(t, w.ShowWindow())

	h.m.Remove(1)
	assert.True(t, w.DestroyPending())

	h.clock.Advance(DamageWaitTime)
	require.True(t, a.PendingAnimation())
	assert.True(t, w.DestroyPending())

	a.run()
	assert.True(t, w.IsDestroyed())
	assert.Equal(t, 1, h.count(EventRestored, true))
	h.checkCounter()
}

func TestPrettyDestroy(t *testing.T) {
	h := newHarness(t)
	w, pc := h.shown(1)
	pc.iconGeometry = iconRect

	w.PrettyDestroy()
	assert.True(t, w.DestroyPending())
	assert.Equal(t, iconRect.TopLeft(), h.anims[1].last(t).pos)

	h.anims[1].run()
	assert.True(t, w.IsDestroyed())
	assert.Equal(t, 1, h.count(EventDestroyed, true))
}

func TestPrettyDestroyWithoutIconGeometryUsesFadeRect(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)

	w.PrettyDestroy()
	assert.Equal(t, h.m.FadeRect().TopLeft(), h.anims[1].last(t).pos)
}

func TestPrettyDestroyWithoutTransitionReleases(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	w.SetIconifyState(IconifyManual)

	w.PrettyDestroy()
	assert.True(t, w.IsDestroyed())
}

func TestSetUntransformedCompletesPendingDestroy(t *testing.T) {
	h := newHarness(t)
	w, _ := h.shown(1)
	w.Iconify(iconRect, false)
	h.m.Remove(1)
	require.True(t, w.DestroyPending())

	w.SetUntransformed()
	assert.True(t, w.IsDestroyed())
	h.checkCounter()
}

func TestForgetClearsDecoratorClient(t *testing.T) {
	h := newHarness(t)
	h.shown(1)
	h.m.SetDecoratorClient(1)

	h.m.Remove(1)
	id, ok := h.m.DecoratorClient()
	assert.False(t, ok)
	assert.Equal(t, platform.None, id)
}
