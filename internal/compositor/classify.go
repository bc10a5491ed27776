package compositor

import (
	"slices"

	"github.com/1broseidon/compwm/internal/platform"
)

// IsAppWindow reports whether the window is application class: it gets
// entrance and exit animations and is probed for liveness. Unless
// includeTransients is set, a window with a visible ancestor is not
// application class.
func (w *Window) IsAppWindow(includeTransients bool) bool {
	if w.pc == nil {
		return false
	}
	if !includeTransients && w.LastVisibleParent() != platform.None {
		return false
	}
	pc := w.pc
	if pc.IsOverrideRedirect() || pc.IsDecorator() {
		return false
	}
	switch pc.WindowType() {
	case TypeNormal, TypeKDEOverride:
		return true
	case TypeDialog:
		return !w.isModalDialog()
	}
	return false
}

func (w *Window) isModalDialog() bool {
	return w.pc != nil && w.pc.WindowType() == TypeDialog &&
		slices.Contains(w.pc.NetState(), StateModal)
}

// LastVisibleParent follows the transient-for chain and returns the
// outermost ancestor that is mapped and not iconic, or platform.None.
func (w *Window) LastVisibleParent() platform.WindowID {
	if w.pc == nil || !w.pc.IsValid() {
		return platform.None
	}
	last := platform.None
	seen := map[platform.WindowID]bool{w.id: true}
	for parent := w.pc.TransientFor(); parent != platform.None && !seen[parent]; {
		seen[parent] = true
		p := w.m.windows[parent]
		if p == nil || p.pc == nil || !p.pc.IsValid() {
			break
		}
		if p.pc.IsMapped() && p.pc.WindowState() != platform.WMStateIconic {
			last = parent
		}
		parent = p.pc.TransientFor()
	}
	return last
}
