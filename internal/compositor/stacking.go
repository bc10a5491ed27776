package compositor

import (
	"slices"

	"github.com/1broseidon/compwm/internal/platform"
)

// Restack replaces the stacking list (bottom to top). Every window gets its
// z value re-requested and its occlusion neighbour recomputed, since any
// stacking mutation can change what lies behind it.
func (m *Manager) Restack(order []platform.WindowID) {
	m.stacking = slices.Clone(order)
	for i, id := range m.stacking {
		if w := m.windows[id]; w != nil {
			w.RequestZValue(i + 1)
		}
	}
	for _, id := range m.stacking {
		if w := m.windows[id]; w != nil {
			w.FindBehindWindow()
		}
	}
	m.RequestRepaint()
}

// StackingList returns a copy of the stacking list, bottom to top.
func (m *Manager) StackingList() []platform.WindowID {
	return slices.Clone(m.stacking)
}

func (m *Manager) indexInStack(id platform.WindowID) int {
	return slices.Index(m.stacking, id)
}

// ResolveBehind computes the occlusion neighbour of id: the window directly
// below it in the stacking list if that is a normal, mapped, non-decorator
// window; the decorator's managed client if the neighbour is the decorator;
// otherwise the desktop window. ok is false when id is at the bottom of the
// stack or not stacked at all.
func (m *Manager) ResolveBehind(id platform.WindowID) (behind *Window, ok bool) {
	i := m.indexInStack(id) - 1
	if i < 0 || i >= len(m.stacking) {
		return nil, false
	}

	n := m.windows[m.stacking[i]]
	if n != nil && n.pc != nil {
		pc := n.pc
		if pc.WindowState() == platform.WMStateNormal && pc.IsMapped() && !pc.IsDecorator() {
			return n, true
		}
		if pc.IsDecorator() {
			if client, has := m.DecoratorClient(); has {
				if cw := m.windows[client]; cw != nil {
					return cw, true
				}
			}
		}
	}
	return m.windows[m.desktop], true
}

// FindBehindWindow refreshes the cached occlusion neighbour. The cache is
// left untouched when the window has nothing below it.
func (w *Window) FindBehindWindow() {
	if behind, ok := w.m.ResolveBehind(w.id); ok {
		w.behind = behind
	}
}

// BehindWindow returns the cached occlusion neighbour, or nil.
func (w *Window) BehindWindow() *Window {
	return w.behind
}

// RequestZValue applies a new stacking z value unless an animation is
// running or pending; the z value is re-applied when the transition
// finishes, which avoids flicker from restacking mid-animation.
func (w *Window) RequestZValue(z int) {
	if w.anim == nil || w.anim.IsActive() || w.anim.PendingAnimation() {
		return
	}
	w.setZValue(z)
}

// ZValue returns the current stacking z value of the scene item.
func (w *Window) ZValue() int {
	return w.zValue
}

func (w *Window) setZValue(z int) {
	if z == w.zValue {
		return
	}
	w.zValue = z
	w.FindBehindWindow()
}

// reapplyZValue restores the z value held back during a transition.
func (w *Window) reapplyZValue() {
	if i := w.m.indexInStack(w.id); i >= 0 {
		w.setZValue(i + 1)
	}
}
