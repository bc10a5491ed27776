package compositor

import (
	"github.com/1broseidon/compwm/internal/eventloop"
	"github.com/1broseidon/compwm/internal/platform"
)

// Window is the compositing state machine of one redirected top-level
// window. It is also the scene item that renders the window, so it carries
// the item's position, scale, opacity, z value and visibility.
type Window struct {
	id       platform.WindowID
	m        *Manager
	pc       PropertyCache
	anim     Animator
	renderer Renderer

	valid          bool
	life           lifecycle
	status         Status
	iconifyState   IconifyState
	iconified      bool
	iconifiedFinal bool
	windowVisible  bool
	transitioning  bool
	newlyMapped    bool
	obscured       Visibility
	blurred        bool
	scaled         bool

	sentPing         uint32
	receivedPing     uint32
	waitingForDamage int

	origPosition platform.PointF
	iconGeometry platform.Rect
	scaleFrom    float64
	scaleTo      float64

	pos         platform.PointF
	scaleX      float64
	scaleY      float64
	opacity     float64
	zValue      int
	itemVisible bool

	behind *Window

	pingTimer     eventloop.Timer
	reappearTimer eventloop.Timer
	damageTimer   eventloop.Timer
}

func newWindow(m *Manager, id platform.WindowID, pc PropertyCache) *Window {
	w := &Window{
		id:        id,
		m:         m,
		pc:        pc,
		scaleFrom: 1,
		scaleTo:   1,
		scaleX:    1,
		scaleY:    1,
		opacity:   1,
		zValue:    1,
	}
	if pc == nil || !pc.IsValid() {
		// Permanently inert: every mutating operation is a no-op.
		return w
	}
	w.valid = true
	w.anim = m.newAnimator(w)
	w.renderer = m.newRenderer(id)
	pc.OnIconGeometryUpdated(w.UpdateIconGeometry)

	w.pingTimer = m.clock.NewTimer(PingInterval, true, w.pingTimeout)
	w.reappearTimer = m.clock.NewTimer(ReappearDelay, false, w.reappearTimeout)
	w.damageTimer = m.clock.NewTimer(DamageWaitTime, false, w.damageTimeout)

	// Newly mapped application windows stay invisible until their fade-in
	// is driven, so that the first frame shown is real content.
	isApp := w.IsAppWindow(false)
	w.newlyMapped = isApp
	if !pc.IsInputOnly() {
		w.windowVisible = !isApp
		w.SetVisible(w.windowVisible)
	}
	geom := pc.RealGeometry()
	w.pos = geom.TopLeft()
	w.origPosition = w.pos
	return w
}

// ID returns the window identity.
func (w *Window) ID() platform.WindowID {
	return w.id
}

// PropertyCache returns the cached window properties.
func (w *Window) PropertyCache() PropertyCache {
	return w.pc
}

// Renderer returns the texture backend, or nil for inert windows.
func (w *Window) Renderer() Renderer {
	return w.renderer
}

// IsValid reports whether the window had a valid property cache when it was
// created.
func (w *Window) IsValid() bool {
	return w.valid
}

// inert reports whether operations on w must be ignored.
func (w *Window) inert() bool {
	return !w.valid || w.life == lifeDestroyed
}

// IsDestroyed reports whether the state machine has been released.
func (w *Window) IsDestroyed() bool {
	return w.life == lifeDestroyed
}

// DestroyPending reports whether destruction waits for a transition.
func (w *Window) DestroyPending() bool {
	return w.life == lifePendingDestroy
}

func (w *Window) Status() Status {
	return w.status
}

func (w *Window) IsTransitioning() bool {
	return w.transitioning
}

func (w *Window) IsNewlyMapped() bool {
	return w.newlyMapped
}

// IsVisible returns the externally observed visibility.
func (w *Window) IsVisible() bool {
	return w.windowVisible
}

// IsMapped mirrors the property cache's mapped flag.
func (w *Window) IsMapped() bool {
	return w.pc != nil && w.pc.IsMapped()
}

// SetIsMapped updates the mapped flag. A remapped window is no longer
// closing or minimizing; a hung one stays hung until it answers a probe.
func (w *Window) SetIsMapped(mapped bool) {
	if w.inert() {
		return
	}
	if mapped && (w.status == StatusClosing || w.status == StatusMinimizing) {
		w.status = StatusNormal
	}
	w.pc.SetMapped(mapped)
}

// Obscured returns the cached obscured state.
func (w *Window) Obscured() Visibility {
	return w.obscured
}

// WaitingForDamage returns the remaining damage events before fade-in.
func (w *Window) WaitingForDamage() int {
	return w.waitingForDamage
}

// bounds is the item's bounding rect in local coordinates.
func (w *Window) bounds() platform.Rect {
	if w.pc == nil {
		return platform.Rect{}
	}
	g := w.pc.RealGeometry()
	return platform.Rect{Width: g.Width, Height: g.Height}
}

// Shape returns the painted area in local coordinates: the bounding rect if
// the shape region covers it, the shape region otherwise.
func (w *Window) Shape() platform.Region {
	b := w.bounds()
	if w.pc == nil {
		return platform.Region{b}
	}
	shape := w.pc.ShapeRegion()
	if shape.Covers(b) {
		return platform.Region{b}
	}
	return shape
}

// Pos, SetPos, SetScale and SetOpacity implement AnimationTarget.

func (w *Window) Pos() platform.PointF {
	return w.pos
}

func (w *Window) SetPos(p platform.PointF) {
	w.pos = p
}

func (w *Window) SetScale(sx, sy float64) {
	w.scaleX, w.scaleY = sx, sy
}

// Scale returns the item's current scale factors.
func (w *Window) Scale() (sx, sy float64) {
	return w.scaleX, w.scaleY
}

func (w *Window) SetOpacity(opacity float64) {
	w.opacity = opacity
}

func (w *Window) Opacity() float64 {
	return w.opacity
}

// SetScalePoint records the scale range used by thumbnail views.
func (w *Window) SetScalePoint(from, to float64) {
	w.scaleFrom, w.scaleTo = from, to
}

func (w *Window) ScalePoint() (from, to float64) {
	return w.scaleFrom, w.scaleTo
}

func (w *Window) IsScaled() bool {
	return w.scaled
}

func (w *Window) SetScaled(s bool) {
	w.scaled = s
}

// SetBlurred toggles the dimming effect applied to unresponsive windows.
func (w *Window) SetBlurred(b bool) {
	w.blurred = b
	w.m.RequestRepaint()
}

func (w *Window) Blurred() bool {
	return w.blurred
}

// BeginAnimation marks the window as transitioning and counts it once in
// the manager. Unmapped windows cannot start animating unless they are
// closing, because a closing window may already be unmapped when its
// animation begins.
func (w *Window) BeginAnimation() {
	if !w.IsMapped() && w.status != StatusClosing {
		return
	}
	if !w.transitioning {
		w.m.transitioning++
		w.transitioning = true
	}
}

// EndAnimation undoes BeginAnimation. It is idempotent.
func (w *Window) EndAnimation() {
	if w.transitioning {
		w.m.transitioning--
		w.transitioning = false
	}
}

// SetVisible changes the externally observed visibility. It is refused for
// input-only windows, for showing newly mapped application windows before
// their fade-in, and for hiding a window mid-transition.
func (w *Window) SetVisible(visible bool) {
	if w.inert() {
		return
	}
	if w.pc.IsInputOnly() ||
		(visible && w.newlyMapped && w.IsAppWindow(false)) ||
		(!visible && w.transitioning) {
		return
	}
	w.applyVisible(visible)
}

func (w *Window) applyVisible(visible bool) {
	w.iconifiedFinal = !visible
	if visible != w.windowVisible {
		w.m.emit(EventVisualized, w, visible)
	}
	w.windowVisible = visible

	if w.itemVisible != visible {
		w.itemVisible = visible
		w.m.visibilityChanged(w)
	}
	if !visible && w.m.visibleItems() == 0 {
		w.renderer.ClearTexture()
	}
}

// ShowWindow starts showing a window that just became mapped. Newly mapped
// windows wait for their first damage (or DamageWaitTime) before fading in.
// It returns false for windows that are not shown through this path.
func (w *Window) ShowWindow() bool {
	if w.inert() || !w.IsAppWindow(false) || w.isModalDialog() {
		return false
	}

	w.FindBehindWindow()
	w.BeginAnimation()
	if w.newlyMapped {
		// Toolkits wait for an unobscured notification before drawing.
		w.SetWindowObscured(false, false)
		w.waitingForDamage = 1
		w.damageTimer.Start()
	} else {
		w.fadeIn()
	}
	return true
}

// Damage handles a damage notification: the texture is refreshed and a
// pending fade-in may be released.
func (w *Window) Damage(rects []platform.Rect) {
	if w.inert() {
		return
	}
	w.renderer.UpdateTexture(rects)
	w.damageReceived(false)
}

// Resized rebinds the texture after the window's size changed.
func (w *Window) Resized() {
	if w.inert() {
		return
	}
	w.renderer.Resize(w.bounds())
}

func (w *Window) damageTimeout() {
	w.damageReceived(true)
}

func (w *Window) damageReceived(timeout bool) {
	if w.inert() {
		return
	}
	if !timeout {
		if w.waitingForDamage <= 0 {
			return
		}
		w.waitingForDamage--
		if w.waitingForDamage > 0 {
			return
		}
	}
	w.damageTimer.Stop()
	w.waitingForDamage = 0
	w.fadeIn()
}

func (w *Window) fadeIn() {
	w.EndAnimation()

	w.newlyMapped = false
	w.SetVisible(true)
	w.opacity = 0
	w.renderer.UpdateTexture(nil)
	w.origPosition = w.pos

	for _, ext := range w.m.extensions {
		if ext.WindowShown(w) {
			w.settle()
			return
		}
	}

	fade := w.m.FadeRect()
	w.pos = fade.TopLeft()
	w.Restore(fade, false)
}

// FinalizeState is the animator's transition-done notification. It settles
// the final iconified or restored state and completes a destruction that
// was deferred while the transition ran.
func (w *Window) FinalizeState() {
	if w.inert() {
		return
	}
	w.EndAnimation()
	w.status = StatusNormal

	if w.pc.WindowType() == TypeDesktop {
		w.m.emit(EventDesktopActivated, w, true)
	}

	if w.iconified {
		w.iconified = false
		w.iconifyState = IconifyTransition
		w.applyVisible(false)
		w.m.logger.Debug("transition finalized", "window_id", w.id, "iconified", true)
		w.m.emit(EventIconified, w, true)
		if w.behind != nil && !w.behind.inert() {
			w.behind.SetWindowObscured(false, false)
		}
	} else {
		w.iconifyState = IconifyNone
		w.newlyMapped = false
		w.applyVisible(true)
		w.m.logger.Debug("transition finalized", "window_id", w.id, "iconified", false)
		w.m.emit(EventRestored, w, true)
	}

	if w.life == lifePendingDestroy {
		w.anim.StopAnimation()
		w.release()
		return
	}
	w.reapplyZValue()
}

// SetWindowObscured caches and reports whether the window is fully obscured.
// Unchanged values are not re-sent (except while newly mapped), and the
// window is never told it became visible while the display is off.
func (w *Window) SetWindowObscured(obscured, noNotify bool) {
	if w.inert() {
		return
	}
	next := VisibilityUnobscured
	if obscured {
		next = VisibilityObscured
	}
	if (next == w.obscured && !w.newlyMapped) || (!obscured && w.m.DisplayOff()) {
		return
	}
	w.obscured = next
	if noNotify {
		return
	}
	if err := w.m.system.SendVisibility(w.id, obscured); err != nil {
		w.m.logger.Debug("visibility notify failed", "window_id", w.id, "error", err)
	}
}

// Destroy requests removal once the window is permanently gone. A window
// with a transition in flight is only marked; it is released when the
// transition finalizes.
func (w *Window) Destroy() {
	if w.life == lifeDestroyed {
		return
	}
	if !w.valid {
		w.life = lifeDestroyed
		w.m.forget(w)
		return
	}
	if w.transitioning {
		if w.life != lifePendingDestroy {
			w.m.logger.Debug("destroy deferred", "window_id", w.id)
		}
		w.life = lifePendingDestroy
		return
	}
	w.release()
}

// PrettyDestroy animates the window out before destroying it.
func (w *Window) PrettyDestroy() {
	if w.inert() {
		return
	}
	w.SetVisible(true)
	w.life = lifePendingDestroy
	target := w.pc.IconGeometry()
	if target.IsEmpty() {
		target = w.m.FadeRect()
	}
	w.Iconify(target, false)
	w.settle()
}

// settle completes a pending destruction once nothing references the
// window any more.
func (w *Window) settle() {
	if w.life != lifePendingDestroy || w.transitioning {
		return
	}
	if w.anim.IsActive() || w.anim.PendingAnimation() {
		return
	}
	w.release()
}

func (w *Window) release() {
	w.life = lifeDestroyed
	w.StopPing()
	w.damageTimer.Stop()
	w.EndAnimation()
	w.anim.StopAnimation()
	w.renderer.Release()
	w.m.forget(w)
	w.m.logger.Debug("window released", "window_id", w.id)
	w.m.emit(EventDestroyed, w, true)
}
