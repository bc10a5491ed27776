package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/compwm/internal/platform"
)

// stackHarness builds a desktop window (1) and application windows 2 and 3.
func stackHarness(t *testing.T) (*harness, *Window, *Window, *Window) {
	t.Helper()
	h := newHarness(t)
	desktop := newFakeCache()
	desktop.windowType = TypeDesktop
	d := h.add(1, desktop)
	h.m.SetDesktopWindow(1)
	w2, _ := h.shown(2)
	w3, _ := h.shown(3)
	return h, d, w2, w3
}

func TestResolveBehindNeighbour(t *testing.T) {
	h, d, w2, w3 := stackHarness(t)
	h.m.Restack([]platform.WindowID{1, 2, 3})

	assert.Equal(t, w2, w3.BehindWindow())
	assert.Equal(t, d, w2.BehindWindow())
	assert.Nil(t, d.BehindWindow(), "nothing below the bottom window")

	_, ok := h.m.ResolveBehind(1)
	assert.False(t, ok)
	_, ok = h.m.ResolveBehind(42)
	assert.False(t, ok, "unstacked windows have no neighbour")
}

func TestResolveBehindFallsBackToDesktop(t *testing.T) {
	tests := []struct {
		name  string
		setup func(pc *fakeCache)
	}{
		{"unmapped", func(pc *fakeCache) { pc.mapped = false }},
		{"iconic", func(pc *fakeCache) { pc.wmState = platform.WMStateIconic }},
		{"withdrawn", func(pc *fakeCache) { pc.wmState = platform.WMStateWithdrawn }},
		{"decorator without client", func(pc *fakeCache) { pc.decorator = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, d, _, w3 := stackHarness(t)
			tt.setup(h.m.Lookup(2).PropertyCache().(*fakeCache))

			h.m.Restack([]platform.WindowID{1, 2, 3})
			assert.Equal(t, d, w3.BehindWindow())
		})
	}
}

func TestResolveBehindSubstitutesDecoratorClient(t *testing.T) {
	h, _, w2, w3 := stackHarness(t)
	deco := newFakeCache()
	deco.decorator = true
	deco.windowType = TypeDesktop
	h.add(4, deco)
	h.m.SetDecoratorClient(2)

	h.m.Restack([]platform.WindowID{1, 2, 4, 3})
	assert.Equal(t, w2, w3.BehindWindow())
}

func TestBehindRecomputedOnEveryRestack(t *testing.T) {
	h, _, w2, w3 := stackHarness(t)
	h.m.Restack([]platform.WindowID{1, 2, 3})
	require.Equal(t, w2, w3.BehindWindow())

	h.m.Restack([]platform.WindowID{1, 3, 2})
	assert.Equal(t, w3, w2.BehindWindow())
	assert.Equal(t, []platform.WindowID{1, 3, 2}, h.m.StackingList())
	assert.Equal(t, 3, w2.ZValue())
	assert.Equal(t, 2, w3.ZValue())
}

func TestZValueHeldDuringTransition(t *testing.T) {
	h, _, w2, w3 := stackHarness(t)
	h.m.Restack([]platform.WindowID{1, 2, 3})
	require.Equal(t, 3, w3.ZValue())

	w3.Iconify(iconRect, false)
	h.m.Restack([]platform.WindowID{3, 1, 2})
	assert.Equal(t, 3, w3.ZValue(), "z is not touched mid-transition")
	assert.Equal(t, 3, w2.ZValue())

	h.anims[3].run()
	assert.Equal(t, 1, w3.ZValue())
}

func TestReleasedWindowLeavesNoBehindReference(t *testing.T) {
	h, d, w2, w3 := stackHarness(t)
	h.m.Restack([]platform.WindowID{1, 2, 3})

	h.m.Remove(2)
	require.Nil(t, h.m.Lookup(2))
	assert.NotEqual(t, w2, w3.BehindWindow())
	assert.Equal(t, d, w3.BehindWindow())
}

func TestRestackRepaints(t *testing.T) {
	h, _, _, _ := stackHarness(t)
	before := h.repaints
	h.m.Restack([]platform.WindowID{1, 2, 3})
	assert.Greater(t, h.repaints, before)
}
