package compositor

import "github.com/1broseidon/compwm/internal/platform"

// scaleFactors returns the horizontal and vertical scale that maps the
// window's bounding rect onto target.
func (w *Window) scaleFactors(target platform.Rect) (sx, sy float64) {
	b := w.bounds()
	sx, sy = 1, 1
	if b.Width > 0 {
		sx = float64(target.Width) / float64(b.Width)
	}
	if b.Height > 0 {
		sy = float64(target.Height) / float64(b.Height)
	}
	return sx, sy
}

// Iconify arms a transition shrinking the window onto target. The
// transition runs once started; with deferred set it waits for an explicit
// StartTransition. A manual iconify state short-circuits the animation.
func (w *Window) Iconify(target platform.Rect, deferred bool) {
	if w.inert() {
		return
	}
	if w.iconifyState == IconifyManual {
		// A manual iconify is authoritative and also ends a hang.
		if w.status == StatusHung {
			w.clearHung()
		}
		w.SetIconified(true)
		w.SetVisible(false)
		w.status = StatusNormal
		return
	}
	if w.status == StatusHung {
		// Unresponsive windows are hidden without being re-animated.
		w.SetIconified(true)
		w.SetVisible(false)
		return
	}

	if w.status != StatusClosing {
		w.status = StatusMinimizing
	}

	for _, ext := range w.m.extensions {
		if ext.WindowIconified(w, deferred) {
			w.iconified = true
			w.status = StatusNormal
			return
		}
	}

	w.iconGeometry = target
	if !w.iconified {
		w.origPosition = w.pos
	}

	sx, sy := w.scaleFactors(target)
	w.anim.DeferAnimation(deferred)
	w.anim.TranslateScale(1, 1, sx, sy, target.TopLeft(), false)
	w.iconified = true
	// Counted now so restacking leaves the z value alone until the end.
	w.BeginAnimation()
}

// Restore arms a transition growing the window from target back to its
// original position. An empty target falls back to the fade rectangle. The
// window is considered restored immediately.
func (w *Window) Restore(target platform.Rect, deferred bool) {
	if w.inert() {
		return
	}
	for _, ext := range w.m.extensions {
		if ext.WindowRestored(w, deferred) {
			w.iconified = false
			return
		}
	}

	if target.IsEmpty() {
		target = w.m.FadeRect()
	}
	w.iconGeometry = target
	w.pos = target.TopLeft()
	sx, sy := w.scaleFactors(target)

	w.SetVisible(true)

	w.anim.DeferAnimation(deferred)
	w.anim.TranslateScale(1, 1, sx, sy, w.origPosition, true)
	w.iconified = false
	if w.status == StatusMinimizing {
		// A restore supersedes a minimize that has not finished.
		w.status = StatusNormal
	}
	w.BeginAnimation()
}

// StartTransition starts the pending transition. An iconify whose target
// is still unknown keeps waiting for UpdateIconGeometry.
func (w *Window) StartTransition() {
	if w.inert() {
		return
	}
	if w.iconified {
		if w.iconGeometry.IsEmpty() {
			return
		}
		w.SetWindowObscured(true, false)
	}
	if w.anim.PendingAnimation() {
		w.SetVisible(true)
		w.anim.StartAnimation()
		w.anim.DeferAnimation(false)
	}
}

// UpdateIconGeometry reacts to a late icon geometry: an iconify already
// requested is retargeted and (re)started rather than restarted from
// scratch.
func (w *Window) UpdateIconGeometry() {
	if w.inert() {
		return
	}
	target := w.pc.IconGeometry()
	if target.IsEmpty() {
		return
	}
	w.iconGeometry = target
	if !w.iconified {
		return
	}
	sx, sy := w.scaleFactors(target)
	w.anim.TranslateScale(1, 1, sx, sy, target.TopLeft(), false)
	w.StartTransition()
}

// IconGeometry returns the current iconify/restore target.
func (w *Window) IconGeometry() platform.Rect {
	return w.iconGeometry
}

// OrigPosition returns the position restored to after an iconify.
func (w *Window) OrigPosition() platform.PointF {
	return w.origPosition
}

// SetIconified records an iconify state decided outside the animation path.
func (w *Window) SetIconified(iconified bool) {
	if w.inert() {
		return
	}
	w.iconifiedFinal = iconified
	w.iconifyState = IconifyManual
	pending := w.anim.PendingAnimation()
	if iconified && !pending {
		w.m.emit(EventIconified, w, true)
	} else if !iconified && !pending {
		w.iconifyState = IconifyNone
	}
}

func (w *Window) IconifyState() IconifyState {
	return w.iconifyState
}

func (w *Window) SetIconifyState(state IconifyState) {
	w.iconifyState = state
}

// IsIconified returns the final iconified state; it is false while an
// animation is running.
func (w *Window) IsIconified() bool {
	if w.anim != nil && w.anim.IsActive() {
		return false
	}
	return w.iconifiedFinal
}

// Iconifying reports whether the armed or running transition iconifies.
func (w *Window) Iconifying() bool {
	return w.iconified
}

// SetUntransformed abandons any transition and resets the item to an
// identity transform.
func (w *Window) SetUntransformed() {
	if w.inert() {
		return
	}
	w.EndAnimation()
	w.anim.StopAnimation()
	w.newlyMapped = false
	w.SetVisible(true)
	w.opacity = 1
	w.scaleX, w.scaleY = 1, 1
	w.scaled = false
	w.iconified = false
	w.settle()
}

// CloseWindowRequest makes sure a pixmap exists for the close animation,
// then asks listeners to close the window.
func (w *Window) CloseWindowRequest() {
	if w.inert() || (!w.IsMapped() && !w.pc.BeingMapped()) {
		return
	}
	if !w.renderer.HasPixmap() && !w.pc.IsInputOnly() {
		if !w.m.IsCompositing() {
			w.m.EnableCompositing(true)
		}
		w.renderer.UpdateTexture(nil)
	}
	w.m.emit(EventCloseRequest, w, true)
}

// CloseWindowAnimation plays the close animation. Closing takes precedence
// over a hung state, which is cleared.
func (w *Window) CloseWindowAnimation() {
	if w.inert() || w.status == StatusClosing ||
		w.pc.IsInputOnly() || w.pc.IsOverrideRedirect() ||
		!w.renderer.HasPixmap() || !w.IsAppWindow(false) ||
		w.pc.WindowState() == platform.WMStateIconic {
		return
	}
	if w.status == StatusHung {
		w.clearHung()
	}
	w.status = StatusClosing

	deferred := false
	w.SetVisible(true)
	if !w.m.IsCompositing() {
		w.m.EnableCompositing(true)
		deferred = true
	}
	w.origPosition = w.pos

	for _, ext := range w.m.extensions {
		if ext.WindowClosed(w) {
			w.status = StatusNormal
			return
		}
	}
	w.Iconify(w.m.FadeRect(), deferred)
}
