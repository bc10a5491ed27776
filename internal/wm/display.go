// Package wm connects the window system to the compositor core: it keeps a
// property cache per redirected window, feeds window-system events into the
// compositor.Manager and translates compositor requests back into X
// requests.
package wm

import (
	"github.com/1broseidon/compwm/internal/compositor"
	"github.com/1broseidon/compwm/internal/platform"
	"github.com/1broseidon/compwm/internal/propcache"
)

// Display is everything a Session needs from the window system.
type Display interface {
	platform.Backend
	propcache.Source
	compositor.WindowSystem

	// Watch starts event delivery and damage tracking for a window.
	Watch(id platform.WindowID) error
	// Unwatch stops tracking a window. It is safe on destroyed windows.
	Unwatch(id platform.WindowID)
	// RequestIconify asks the window manager to iconify a window.
	RequestIconify(id platform.WindowID) error
}
