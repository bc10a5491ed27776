package compositor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/1broseidon/compwm/internal/eventloop"
	"github.com/1broseidon/compwm/internal/platform"
)

type fakeCache struct {
	invalid          bool
	mapped           bool
	beingMapped      bool
	inputOnly        bool
	overrideRedirect bool
	decorator        bool
	windowType       string
	wmState          platform.WMState
	netState         []string
	transientFor     platform.WindowID
	geometry         platform.Rect
	shape            platform.Region
	iconGeometry     platform.Rect
	iconCallbacks    []func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		mapped:     true,
		windowType: TypeNormal,
		wmState:    platform.WMStateNormal,
		geometry:   platform.Rect{X: 100, Y: 100, Width: 400, Height: 300},
	}
}

func (c *fakeCache) IsValid() bool                   { return !c.invalid }
func (c *fakeCache) IsMapped() bool                  { return c.mapped }
func (c *fakeCache) BeingMapped() bool               { return c.beingMapped }
func (c *fakeCache) SetMapped(mapped bool)           { c.mapped = mapped }
func (c *fakeCache) IsInputOnly() bool               { return c.inputOnly }
func (c *fakeCache) IsOverrideRedirect() bool        { return c.overrideRedirect }
func (c *fakeCache) IsDecorator() bool               { return c.decorator }
func (c *fakeCache) WindowType() string              { return c.windowType }
func (c *fakeCache) WindowState() platform.WMState   { return c.wmState }
func (c *fakeCache) NetState() []string              { return c.netState }
func (c *fakeCache) TransientFor() platform.WindowID { return c.transientFor }
func (c *fakeCache) RealGeometry() platform.Rect     { return c.geometry }
func (c *fakeCache) IconGeometry() platform.Rect     { return c.iconGeometry }

func (c *fakeCache) ShapeRegion() platform.Region {
	if c.shape == nil {
		return platform.Region{{Width: c.geometry.Width, Height: c.geometry.Height}}
	}
	return c.shape
}

func (c *fakeCache) OnIconGeometryUpdated(fn func()) {
	c.iconCallbacks = append(c.iconCallbacks, fn)
}

// setIconGeometry simulates a late _NET_WM_ICON_GEOMETRY update.
func (c *fakeCache) setIconGeometry(r platform.Rect) {
	c.iconGeometry = r
	for _, fn := range c.iconCallbacks {
		fn()
	}
}

type translateCall struct {
	fromX, fromY float64
	toX, toY     float64
	pos          platform.PointF
	reversed     bool
}

// fakeAnimator never starts on its own; tests drive it with run.
type fakeAnimator struct {
	target   AnimationTarget
	calls    []translateCall
	pending  bool
	active   bool
	deferred bool
	starts   int
	stops    int
}

func (a *fakeAnimator) TranslateScale(fromX, fromY, toX, toY float64, pos platform.PointF, reversed bool) {
	a.calls = append(a.calls, translateCall{fromX, fromY, toX, toY, pos, reversed})
	if !a.active {
		a.pending = true
	}
}

func (a *fakeAnimator) StartAnimation() {
	if !a.pending || a.active {
		return
	}
	a.pending = false
	a.active = true
	a.starts++
	a.target.BeginAnimation()
}

func (a *fakeAnimator) StopAnimation() {
	a.stops++
	a.pending = false
	a.active = false
}

func (a *fakeAnimator) DeferAnimation(deferred bool) { a.deferred = deferred }
func (a *fakeAnimator) PendingAnimation() bool       { return a.pending }
func (a *fakeAnimator) IsActive() bool               { return a.active }

func (a *fakeAnimator) finish() {
	a.active = false
	a.target.FinalizeState()
}

// run starts the pending transition and lets it complete.
func (a *fakeAnimator) run() {
	a.StartAnimation()
	a.finish()
}

func (a *fakeAnimator) last(t *testing.T) translateCall {
	t.Helper()
	require.NotEmpty(t, a.calls, "no transition was armed")
	return a.calls[len(a.calls)-1]
}

type fakeRenderer struct {
	updates  int
	clears   int
	pixmap   bool
	direct   bool
	released bool
	resizes  []platform.Rect
}

func (r *fakeRenderer) UpdateTexture([]platform.Rect) {
	r.updates++
	r.pixmap = true
}

func (r *fakeRenderer) ClearTexture() {
	r.clears++
	r.pixmap = false
}

func (r *fakeRenderer) EnableDirectRendering()     { r.direct = true }
func (r *fakeRenderer) EnableRedirectedRendering() { r.direct = false }
func (r *fakeRenderer) IsDirectRendered() bool     { return r.direct }
func (r *fakeRenderer) HasPixmap() bool            { return r.pixmap }
func (r *fakeRenderer) Release()                   { r.released = true }
func (r *fakeRenderer) Resize(size platform.Rect)  { r.resizes = append(r.resizes, size) }

type pingSent struct {
	id     platform.WindowID
	serial uint32
}

type visibilitySent struct {
	id       platform.WindowID
	obscured bool
}

type fakeSystem struct {
	pings      []pingSent
	visibility []visibilitySent
}

func (s *fakeSystem) SendPing(id platform.WindowID, serial uint32) error {
	s.pings = append(s.pings, pingSent{id, serial})
	return nil
}

func (s *fakeSystem) SendVisibility(id platform.WindowID, obscured bool) error {
	s.visibility = append(s.visibility, visibilitySent{id, obscured})
	return nil
}

var testScreen = platform.Rect{Width: 800, Height: 600}

type harness struct {
	t         *testing.T
	m         *Manager
	clock     *eventloop.ManualClock
	sys       *fakeSystem
	anims     map[platform.WindowID]*fakeAnimator
	renderers map[platform.WindowID]*fakeRenderer
	events    []Event
	repaints  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:         t,
		clock:     eventloop.NewManualClock(),
		sys:       &fakeSystem{},
		anims:     make(map[platform.WindowID]*fakeAnimator),
		renderers: make(map[platform.WindowID]*fakeRenderer),
	}
	h.m = NewManager(Options{
		Clock:  h.clock,
		System: h.sys,
		NewAnimator: func(target AnimationTarget) Animator {
			a := &fakeAnimator{target: target}
			h.anims[target.(*Window).ID()] = a
			return a
		},
		NewRenderer: func(id platform.WindowID) Renderer {
			r := &fakeRenderer{}
			h.renderers[id] = r
			return r
		},
		Screen:  testScreen,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Repaint: func() { h.repaints++ },
	})
	h.m.Subscribe(func(ev Event) { h.events = append(h.events, ev) })
	return h
}

func (h *harness) add(id platform.WindowID, pc *fakeCache) *Window {
	h.t.Helper()
	return h.m.Add(id, pc)
}

// shown adds an application window that already finished its fade-in.
func (h *harness) shown(id platform.WindowID) (*Window, *fakeCache) {
	h.t.Helper()
	pc := newFakeCache()
	w := h.add(id, pc)
	w.SetUntransformed()
	require.True(h.t, w.IsVisible())
	require.False(h.t, w.IsNewlyMapped())
	h.events = nil
	return w, pc
}

func (h *harness) count(kind EventKind, asserted bool) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind && ev.Asserted == asserted {
			n++
		}
	}
	return n
}

// checkCounter verifies that the in-flight counter equals the number of
// transitioning windows.
func (h *harness) checkCounter() {
	h.t.Helper()
	n := 0
	for _, w := range h.m.Windows() {
		if w.IsTransitioning() {
			n++
		}
	}
	require.Equal(h.t, n, h.m.Transitioning())
}
