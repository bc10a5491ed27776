package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// None is the zero window.
const None WindowID = 0

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// PointF is a scene position. Scene items move by fractional amounts while animating.
type PointF struct {
	X float64
	Y float64
}

// Backend abstracts the window-system queries the compositor daemon needs
// outside of event delivery.
type Backend interface {
	// Screen returns the usable work area of the screen.
	Screen() (Rect, error)
	ActiveWindow() (WindowID, error)
	// ClientWindows returns the top-level children of the root, bottom to top.
	ClientWindows() ([]WindowID, error)
	Close(windowID WindowID) error
}

// WMState is the ICCCM WM_STATE of a client window.
type WMState int

const (
	WMStateWithdrawn WMState = 0
	WMStateNormal    WMState = 1
	WMStateIconic    WMState = 3
)
