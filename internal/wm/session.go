package wm

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/compwm/internal/compositor"
	"github.com/1broseidon/compwm/internal/platform"
	"github.com/1broseidon/compwm/internal/propcache"
)

// Settings are the reloadable parts of the configuration a Session uses.
type Settings struct {
	// DecoratorClasses are the WM_CLASS values of decorator chrome windows.
	DecoratorClasses []string
	// AlwaysComposite keeps every window redirected.
	AlwaysComposite bool
	// UnredirectFullscreen lets an opaque fullscreen window render
	// directly.
	UnredirectFullscreen bool
}

// properties maps property atoms to the cached property they change.
var properties = map[string]propcache.Property{
	"_NET_WM_WINDOW_TYPE":   propcache.PropWindowType,
	"_NET_WM_STATE":         propcache.PropNetState,
	"WM_STATE":              propcache.PropWMState,
	"WM_TRANSIENT_FOR":      propcache.PropTransientFor,
	"WM_CLASS":              propcache.PropClass,
	"_NET_WM_ICON_GEOMETRY": propcache.PropIconGeometry,
}

// Session tracks the redirected windows of one display. Like the Manager it
// drives, it must only be used from the control thread.
type Session struct {
	display  Display
	m        *compositor.Manager
	logger   *slog.Logger
	settings Settings

	caches map[platform.WindowID]*propcache.Cache
	screen platform.Rect
}

// NewSession creates a session feeding m.
func NewSession(display Display, m *compositor.Manager, settings Settings, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		display:  display,
		m:        m,
		logger:   logger,
		settings: settings,
		caches:   make(map[platform.WindowID]*propcache.Cache),
	}
	m.Subscribe(s.handleEvent)
	return s
}

// Manager returns the compositor the session feeds.
func (s *Session) Manager() *compositor.Manager {
	return s.m
}

// Screen returns the last known work area.
func (s *Session) Screen() platform.Rect {
	return s.screen
}

// Tracked returns the windows with a property cache, in id order.
func (s *Session) Tracked() []platform.WindowID {
	ids := make([]platform.WindowID, 0, len(s.caches))
	for id := range s.caches {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Apply installs reloaded settings. Decorator classes are re-matched
// against every tracked window.
func (s *Session) Apply(settings Settings) {
	s.settings = settings
	for _, pc := range s.caches {
		pc.SetDecoratorClasses(settings.DecoratorClasses)
	}
	s.updateDecoratorClient()
	s.updateRedirection()
}

// Start adopts the windows that already exist.
func (s *Session) Start() error {
	s.refreshScreen()

	ids, err := s.display.ClientWindows()
	if err != nil {
		return fmt.Errorf("list client windows: %w", err)
	}
	for _, id := range ids {
		w := s.addWindow(id)
		if w == nil || !w.IsMapped() {
			continue
		}
		s.show(w)
	}
	s.m.Restack(ids)
	s.updateDecoratorClient()
	s.updateRedirection()
	s.logger.Info("adopted existing windows", "count", len(s.caches))
	return nil
}

func (s *Session) addWindow(id platform.WindowID) *compositor.Window {
	if w := s.m.Lookup(id); w != nil {
		return w
	}
	pc := propcache.New(s.display, id, s.settings.DecoratorClasses, s.logger)
	if !pc.IsValid() {
		return nil
	}
	if err := s.display.Watch(id); err != nil {
		s.logger.Debug("watch window failed", "window_id", id, "error", err)
		return nil
	}
	s.caches[id] = pc
	w := s.m.Add(id, pc)
	if pc.WindowType() == compositor.TypeDesktop {
		s.m.SetDesktopWindow(id)
	}
	s.logger.Debug("window added", "window_id", id, "type", pc.WindowType(), "mapped", pc.IsMapped())
	return w
}

// show brings a mapped window on screen.
func (s *Session) show(w *compositor.Window) {
	switch {
	case w.IsNewlyMapped():
		if !w.ShowWindow() {
			w.SetUntransformed()
		}
	case w.IsIconified() && w.IsAppWindow(false):
		w.Restore(w.IconGeometry(), false)
	default:
		w.SetVisible(true)
	}
	if w.IsAppWindow(false) {
		w.StartPing()
	}
}

// WindowCreated handles a new top-level window.
func (s *Session) WindowCreated(id platform.WindowID) {
	s.addWindow(id)
}

// WindowMapped handles a window becoming viewable.
func (s *Session) WindowMapped(id platform.WindowID) {
	w := s.addWindow(id)
	if w == nil {
		return
	}
	pc := s.caches[id]
	pc.Refresh(propcache.PropWMState)
	w.SetIsMapped(true)
	s.show(w)
	if pc.IsDecorator() {
		s.updateDecoratorClient()
	}
	s.restack()
}

// WindowUnmapped handles a window being withdrawn or iconified.
func (s *Session) WindowUnmapped(id platform.WindowID) {
	w := s.m.Lookup(id)
	if w == nil {
		return
	}
	w.SetIsMapped(false)
	w.StopPing()
	if w.Status() != compositor.StatusClosing && !w.IsTransitioning() {
		w.SetVisible(false)
	}
	if pc := s.caches[id]; pc != nil && pc.IsDecorator() {
		s.updateDecoratorClient()
	}
	s.restack()
}

// WindowDestroyed handles the permanent disappearance of a window.
func (s *Session) WindowDestroyed(id platform.WindowID) {
	pc, ok := s.caches[id]
	if !ok {
		return
	}
	pc.Invalidate()
	delete(s.caches, id)
	s.display.Unwatch(id)
	s.m.Remove(id)
	if s.m.DesktopWindow() == id {
		s.m.SetDesktopWindow(platform.None)
	}
	s.restack()
}

// WindowConfigured handles a geometry or stacking change.
func (s *Session) WindowConfigured(id platform.WindowID, geom platform.Rect, overrideRedirect bool) {
	pc, ok := s.caches[id]
	if !ok {
		return
	}
	old := pc.RealGeometry()
	pc.SetGeometry(geom)
	pc.SetOverrideRedirect(overrideRedirect)
	if w := s.m.Lookup(id); w != nil {
		if old.Width != geom.Width || old.Height != geom.Height {
			w.Resized()
		}
		if !w.IsTransitioning() {
			w.SetPos(geom.TopLeft())
		}
	}
	s.restack()
}

// PropertyChanged refreshes a cached property of a client window.
func (s *Session) PropertyChanged(id platform.WindowID, name string) {
	pc, ok := s.caches[id]
	if !ok {
		return
	}
	p, ok := properties[name]
	if !ok {
		return
	}
	pc.Refresh(p)

	switch p {
	case propcache.PropWindowType:
		if pc.WindowType() == compositor.TypeDesktop {
			s.m.SetDesktopWindow(id)
		}
	case propcache.PropWMState, propcache.PropClass, propcache.PropTransientFor:
		// All of these feed the stacking resolver.
		s.restack()
	}
}

// RootPropertyChanged reacts to root window properties.
func (s *Session) RootPropertyChanged(name string) {
	switch name {
	case "_NET_WORKAREA":
		s.refreshScreen()
		s.updateRedirection()
	case "_NET_ACTIVE_WINDOW":
		s.updateDecoratorClient()
	}
}

// PingReplied delivers a liveness reply.
func (s *Session) PingReplied(id platform.WindowID, serial uint32) {
	s.m.PingReply(id, serial)
}

// ChangeStateRequested handles WM_CHANGE_STATE. Only the iconic request
// animates; leaving the iconic state happens through a map.
func (s *Session) ChangeStateRequested(id platform.WindowID, iconic bool) {
	if !iconic {
		return
	}
	w := s.m.Lookup(id)
	if w == nil || !w.IsMapped() {
		return
	}
	target := w.PropertyCache().IconGeometry()
	if target.IsEmpty() {
		target = s.m.FadeRect()
	}
	w.Iconify(target, false)
	w.StartTransition()
}

// Damaged forwards changed areas.
func (s *Session) Damaged(id platform.WindowID, rects []platform.Rect) {
	s.m.Damage(id, rects)
}

// Reshaped refreshes the bounding shape of a window.
func (s *Session) Reshaped(id platform.WindowID) {
	if pc, ok := s.caches[id]; ok {
		pc.Refresh(propcache.PropShape)
		s.updateRedirection()
	}
}

// resolve maps the zero window to the active window.
func (s *Session) resolve(id platform.WindowID) (platform.WindowID, error) {
	if id != platform.None {
		return id, nil
	}
	active, err := s.display.ActiveWindow()
	if err != nil {
		return platform.None, fmt.Errorf("active window: %w", err)
	}
	if active == platform.None {
		return platform.None, fmt.Errorf("no active window")
	}
	return active, nil
}

// IconifyWindow asks the window manager to iconify id (zero means the
// active window). The animation starts when the request comes back as
// WM_CHANGE_STATE.
func (s *Session) IconifyWindow(id platform.WindowID) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	if s.m.Lookup(id) == nil {
		return fmt.Errorf("window 0x%x is not composited", uint32(id))
	}
	return s.display.RequestIconify(id)
}

// CloseWindow plays the close animation of id (zero means the active
// window) and asks the client to close.
func (s *Session) CloseWindow(id platform.WindowID) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	if w := s.m.Lookup(id); w != nil {
		w.CloseWindowRequest()
	}
	return s.display.Close(id)
}

func (s *Session) handleEvent(ev compositor.Event) {
	switch ev.Kind {
	case compositor.EventCloseRequest:
		ev.Window.CloseWindowAnimation()
	case compositor.EventHung:
		s.logger.Debug("window liveness changed", "window_id", ev.Window.ID(), "hung", ev.Asserted)
	}
}

func (s *Session) restack() {
	ids, err := s.display.ClientWindows()
	if err != nil {
		s.logger.Debug("query stacking failed", "error", err)
		return
	}
	s.m.Restack(ids)
	s.updateRedirection()
}

func (s *Session) refreshScreen() {
	screen, err := s.display.Screen()
	if err != nil {
		s.logger.Debug("screen geometry unavailable", "error", err)
		return
	}
	s.screen = screen
	s.m.SetScreen(screen)
}

// updateDecoratorClient records the active window as the decorator's client
// while a decorator window is mapped.
func (s *Session) updateDecoratorClient() {
	decorated := false
	for _, pc := range s.caches {
		if pc.IsDecorator() && pc.IsMapped() {
			decorated = true
			break
		}
	}
	if !decorated {
		s.m.SetDecoratorClient(platform.None)
		return
	}
	active, err := s.display.ActiveWindow()
	if err != nil {
		s.logger.Debug("active window unavailable", "error", err)
		return
	}
	s.m.SetDecoratorClient(active)
}

// updateRedirection decides between composited and direct rendering of a
// fullscreen topmost window.
func (s *Session) updateRedirection() {
	if s.settings.AlwaysComposite || !s.settings.UnredirectFullscreen {
		if !s.m.IsCompositing() {
			s.m.EnableCompositing(true)
		}
		return
	}
	if s.m.IsCompositing() {
		s.m.PossiblyUnredirectTopmost(s.screen)
		return
	}
	if !s.fullscreenOnTop() {
		s.m.EnableCompositing(false)
	}
}

// fullscreenOnTop reports whether the topmost visible window covers the
// screen.
func (s *Session) fullscreenOnTop() bool {
	stack := s.m.StackingList()
	for _, id := range slices.Backward(stack) {
		w := s.m.Lookup(id)
		if w == nil || !w.IsVisible() {
			continue
		}
		geom := w.PropertyCache().RealGeometry()
		return (platform.Region{geom}).Covers(s.screen)
	}
	return false
}
