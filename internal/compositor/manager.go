package compositor

import (
	"log/slog"
	"sort"

	"github.com/1broseidon/compwm/internal/eventloop"
	"github.com/1broseidon/compwm/internal/platform"
)

// Options configures a Manager.
type Options struct {
	Clock       eventloop.Clock
	System      WindowSystem
	NewAnimator AnimatorFactory
	NewRenderer RendererFactory
	// Screen is the usable desktop area; it sizes the fade rectangle.
	Screen platform.Rect
	Logger *slog.Logger
	// Repaint is invoked whenever the scene needs to be redrawn.
	Repaint func()
}

// Manager owns every window state machine together with the global tables
// they consult: the window table, the stacking list, the in-flight
// transition count and the compositing mode.
type Manager struct {
	clock       eventloop.Clock
	system      WindowSystem
	newAnimator AnimatorFactory
	newRenderer RendererFactory
	logger      *slog.Logger
	repaint     func()

	windows map[platform.WindowID]*Window
	// stacking is bottom to top: index i-1 is directly behind index i.
	stacking        []platform.WindowID
	desktop         platform.WindowID
	decoratorClient platform.WindowID
	transitioning   int
	compositing     bool
	displayOff      bool
	fadeRect        platform.Rect

	listeners  []Listener
	extensions []Extension
}

// NewManager creates a manager. Missing collaborators are replaced by inert
// defaults so the manager is always usable.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = eventloop.NewManualClock()
	}
	system := opts.System
	if system == nil {
		system = nopSystem{}
	}
	newAnimator := opts.NewAnimator
	if newAnimator == nil {
		newAnimator = func(AnimationTarget) Animator { return nopAnimator{} }
	}
	newRenderer := opts.NewRenderer
	if newRenderer == nil {
		newRenderer = func(platform.WindowID) Renderer { return nopRenderer{} }
	}
	repaint := opts.Repaint
	if repaint == nil {
		repaint = func() {}
	}

	m := &Manager{
		clock:       clock,
		system:      system,
		newAnimator: newAnimator,
		newRenderer: newRenderer,
		logger:      logger,
		repaint:     repaint,
		windows:     make(map[platform.WindowID]*Window),
		compositing: true,
	}
	m.SetScreen(opts.Screen)
	return m
}

// SetScreen recomputes the fade rectangle: half the screen in each
// dimension, centered.
func (m *Manager) SetScreen(screen platform.Rect) {
	w := screen.Width / 2
	h := screen.Height / 2
	m.fadeRect = platform.Rect{
		X:      screen.X + w/2,
		Y:      screen.Y + h/2,
		Width:  w,
		Height: h,
	}
}

// FadeRect is the default visual origin for fade-in and close animations.
func (m *Manager) FadeRect() platform.Rect {
	return m.fadeRect
}

// Subscribe registers a lifecycle listener.
func (m *Manager) Subscribe(l Listener) {
	m.listeners = append(m.listeners, l)
}

// AddExtension registers an animation override handler.
func (m *Manager) AddExtension(e Extension) {
	m.extensions = append(m.extensions, e)
}

func (m *Manager) emit(kind EventKind, w *Window, asserted bool) {
	ev := Event{Kind: kind, Window: w, Asserted: asserted}
	for _, l := range m.listeners {
		l(ev)
	}
}

// Add creates the state machine for a newly redirected window. An existing
// state machine for id is returned unchanged.
func (m *Manager) Add(id platform.WindowID, pc PropertyCache) *Window {
	if w, ok := m.windows[id]; ok {
		return w
	}
	w := newWindow(m, id, pc)
	m.windows[id] = w
	return w
}

// Lookup returns the state machine of id, or nil.
func (m *Manager) Lookup(id platform.WindowID) *Window {
	return m.windows[id]
}

// Windows returns all live state machines, ordered by window id.
func (m *Manager) Windows() []*Window {
	out := make([]*Window, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Remove handles the permanent disappearance of a window. Destruction is
// deferred while a transition is in flight.
func (m *Manager) Remove(id platform.WindowID) {
	if w := m.windows[id]; w != nil {
		w.Destroy()
	}
}

// forget drops w from the tables once it has been released.
func (m *Manager) forget(w *Window) {
	if m.windows[w.id] == w {
		delete(m.windows, w.id)
	}
	for _, other := range m.windows {
		if other.behind == w {
			other.behind = nil
			other.FindBehindWindow()
		}
	}
	if m.decoratorClient == w.id {
		m.decoratorClient = platform.None
	}
}

// Transitioning returns the number of windows with an animation in flight.
func (m *Manager) Transitioning() int {
	return m.transitioning
}

// HasTransitioningWindow reports whether any window is animating.
func (m *Manager) HasTransitioningWindow() bool {
	return m.transitioning > 0
}

// IsCompositing reports whether windows are currently redirected.
func (m *Manager) IsCompositing() bool {
	return m.compositing
}

// EnableCompositing redirects every window again and starts transitions
// that were deferred until compositing came back. Unless forced it is
// refused while the display is off.
func (m *Manager) EnableCompositing(forced bool) {
	if m.compositing {
		return
	}
	if !forced && m.displayOff {
		return
	}
	m.compositing = true
	m.logger.Debug("compositing enabled", "forced", forced)
	for _, w := range m.Windows() {
		if w.renderer != nil && w.renderer.IsDirectRendered() {
			w.renderer.EnableRedirectedRendering()
		}
	}
	for _, w := range m.Windows() {
		if w.anim != nil && w.anim.PendingAnimation() {
			w.StartTransition()
		}
	}
	m.RequestRepaint()
}

// DisableCompositing lets every window render directly. It is refused while
// anything is animating.
func (m *Manager) DisableCompositing() bool {
	if !m.compositing || m.HasTransitioningWindow() {
		return false
	}
	for _, w := range m.Windows() {
		if w.renderer != nil && !w.renderer.IsDirectRendered() {
			w.renderer.EnableDirectRendering()
		}
	}
	m.compositing = false
	m.logger.Debug("compositing disabled")
	return true
}

// PossiblyUnredirectTopmost lets the topmost window render directly when it
// is an opaque, unshaped window covering the whole screen. It is refused
// while anything is animating since unredirecting would cut the
// transition short.
func (m *Manager) PossiblyUnredirectTopmost(screen platform.Rect) bool {
	if !m.compositing || m.HasTransitioningWindow() {
		return false
	}
	top := m.topmostVisible()
	if top == nil || !top.IsAppWindow(false) {
		return false
	}
	geom := top.pc.RealGeometry()
	if !(platform.Region{geom}).Covers(screen) {
		return false
	}
	if !top.Shape().Covers(top.bounds()) {
		return false
	}
	top.renderer.EnableDirectRendering()
	m.compositing = false
	m.logger.Debug("topmost window unredirected", "window_id", top.id)
	return true
}

// SetDisplayOff records the display power state.
func (m *Manager) SetDisplayOff(off bool) {
	m.displayOff = off
}

// DisplayOff reports whether the display is powered down.
func (m *Manager) DisplayOff() bool {
	return m.displayOff
}

// SetDesktopWindow records the desktop-layer window.
func (m *Manager) SetDesktopWindow(id platform.WindowID) {
	m.desktop = id
}

// DesktopWindow returns the desktop-layer window.
func (m *Manager) DesktopWindow() platform.WindowID {
	return m.desktop
}

// SetDecoratorClient records the client currently framed by the decorator.
func (m *Manager) SetDecoratorClient(id platform.WindowID) {
	m.decoratorClient = id
}

// DecoratorClient returns the client framed by the decorator, if any.
func (m *Manager) DecoratorClient() (platform.WindowID, bool) {
	return m.decoratorClient, m.decoratorClient != platform.None
}

// Damage forwards changed regions of a window to its state machine.
func (m *Manager) Damage(id platform.WindowID, rects []platform.Rect) {
	if w := m.windows[id]; w != nil {
		w.Damage(rects)
	}
}

// PingReply forwards a liveness reply.
func (m *Manager) PingReply(id platform.WindowID, serial uint32) {
	if w := m.windows[id]; w != nil {
		w.ReceivedPing(serial)
	}
}

// RequestRepaint asks the render loop for a new frame.
func (m *Manager) RequestRepaint() {
	m.repaint()
}

// visibilityChanged repaints unless the window is hidden behind a higher
// visible item, in which case a redraw would change nothing.
func (m *Manager) visibilityChanged(w *Window) {
	top := m.topmostVisible()
	if top == nil || w.zValue >= top.zValue {
		m.RequestRepaint()
	}
}

func (m *Manager) topmostVisible() *Window {
	var top *Window
	for _, w := range m.windows {
		if !w.itemVisible {
			continue
		}
		if top == nil || w.zValue > top.zValue || (w.zValue == top.zValue && w.id > top.id) {
			top = w
		}
	}
	return top
}

func (m *Manager) visibleItems() int {
	n := 0
	for _, w := range m.windows {
		if w.itemVisible {
			n++
		}
	}
	return n
}

// Snapshot is a point-in-time view of the manager for status reporting.
type Snapshot struct {
	Windows       int
	Visible       int
	Transitioning int
	Hung          int
	Iconified     int
	Compositing   bool
}

// Snapshot collects counters across all windows.
func (m *Manager) Snapshot() Snapshot {
	s := Snapshot{
		Windows:       len(m.windows),
		Transitioning: m.transitioning,
		Compositing:   m.compositing,
	}
	for _, w := range m.windows {
		if w.windowVisible {
			s.Visible++
		}
		if w.status == StatusHung {
			s.Hung++
		}
		if w.iconifiedFinal {
			s.Iconified++
		}
	}
	return s
}

type nopSystem struct{}

func (nopSystem) SendPing(platform.WindowID, uint32) error     { return nil }
func (nopSystem) SendVisibility(platform.WindowID, bool) error { return nil }

type nopAnimator struct{}

func (nopAnimator) StartAnimation()                                                          {}
func (nopAnimator) StopAnimation()                                                           {}
func (nopAnimator) DeferAnimation(bool)                                                      {}
func (nopAnimator) TranslateScale(float64, float64, float64, float64, platform.PointF, bool) {}
func (nopAnimator) PendingAnimation() bool                                                   { return false }
func (nopAnimator) IsActive() bool                                                           { return false }

type nopRenderer struct{}

func (nopRenderer) UpdateTexture([]platform.Rect) {}
func (nopRenderer) ClearTexture()                 {}
func (nopRenderer) EnableDirectRendering()        {}
func (nopRenderer) EnableRedirectedRendering()    {}
func (nopRenderer) IsDirectRendered() bool        { return false }
func (nopRenderer) HasPixmap() bool               { return false }
func (nopRenderer) Resize(platform.Rect)          {}
func (nopRenderer) Release()                      {}
