// Package compositor holds the per-window compositing state machine, the
// liveness (ping/hang) protocol and the stacking resolver, together with the
// Manager that owns every window's state and the global tables.
//
// All methods must be called from the single control thread (see package
// eventloop). Nothing here returns errors: operations on windows that are
// gone or were never valid silently become no-ops.
package compositor

import (
	"time"

	"github.com/1broseidon/compwm/internal/platform"
)

// Fixed timings of the liveness protocol and the damage-gated fade-in.
const (
	PingInterval   = 5 * time.Second
	ReappearDelay  = 30 * time.Second
	DamageWaitTime = 500 * time.Millisecond
)

// EWMH window type atoms used for classification.
const (
	TypeNormal      = "_NET_WM_WINDOW_TYPE_NORMAL"
	TypeDialog      = "_NET_WM_WINDOW_TYPE_DIALOG"
	TypeDesktop     = "_NET_WM_WINDOW_TYPE_DESKTOP"
	TypeKDEOverride = "_KDE_NET_WM_WINDOW_TYPE_OVERRIDE"
	StateModal      = "_NET_WM_STATE_MODAL"
	StateFullscreen = "_NET_WM_STATE_FULLSCREEN"
)

// Status is the high-level lifecycle of a composited window.
type Status int

const (
	StatusNormal Status = iota
	StatusMinimizing
	StatusClosing
	StatusHung
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusMinimizing:
		return "minimizing"
	case StatusClosing:
		return "closing"
	case StatusHung:
		return "hung"
	default:
		return "unknown"
	}
}

// IconifyState distinguishes programmatic iconify requests from iconify
// completed by a transition.
type IconifyState int

const (
	IconifyNone IconifyState = iota
	IconifyManual
	IconifyTransition
)

// Visibility is the cached obscured state last reported to the client.
type Visibility int8

const (
	VisibilityUnknown Visibility = iota
	VisibilityObscured
	VisibilityUnobscured
)

// lifecycle tracks deferred destruction. A window asked to go away while a
// transition references it stays pendingDestroy until the transition ends.
type lifecycle int

const (
	lifeLive lifecycle = iota
	lifePendingDestroy
	lifeDestroyed
)

// PropertyCache is the cached window-system metadata of one window. The
// state machine reads it but does not own it.
type PropertyCache interface {
	IsValid() bool
	IsMapped() bool
	// BeingMapped reports a map request that has not been confirmed yet.
	BeingMapped() bool
	SetMapped(mapped bool)
	IsInputOnly() bool
	IsOverrideRedirect() bool
	IsDecorator() bool
	WindowType() string
	WindowState() platform.WMState
	NetState() []string
	TransientFor() platform.WindowID
	RealGeometry() platform.Rect
	ShapeRegion() platform.Region
	IconGeometry() platform.Rect
	// OnIconGeometryUpdated registers fn to run after the icon geometry changes.
	OnIconGeometryUpdated(fn func())
}

// Animator drives the single geometric transition of one window. A
// transition is first armed with TranslateScale and becomes pending; it runs
// when started, either explicitly or, if not deferred, on its own shortly
// after being armed. Arming again while pending replaces the parameters;
// arming while active retargets the running transition.
//
// TranslateScale scales from (fromX, fromY) to (toX, toY) while moving the
// target to pos. A reversed transition runs the scale backwards and fades
// in instead of out.
type Animator interface {
	StartAnimation()
	// StopAnimation drops pending and active transitions without callbacks.
	StopAnimation()
	DeferAnimation(deferred bool)
	TranslateScale(fromX, fromY, toX, toY float64, pos platform.PointF, reversed bool)
	PendingAnimation() bool
	IsActive() bool
}

// AnimationTarget is what an Animator moves. *Window implements it.
type AnimationTarget interface {
	Pos() platform.PointF
	SetPos(p platform.PointF)
	SetScale(sx, sy float64)
	SetOpacity(opacity float64)
	// BeginAnimation is the transition-started notification.
	BeginAnimation()
	// FinalizeState is the transition-done notification.
	FinalizeState()
}

// AnimatorFactory creates the animator exclusively owned by one window.
type AnimatorFactory func(target AnimationTarget) Animator

// Renderer owns the GPU-visible representation of a window's pixmap.
type Renderer interface {
	UpdateTexture(damage []platform.Rect)
	ClearTexture()
	EnableDirectRendering()
	EnableRedirectedRendering()
	IsDirectRendered() bool
	// HasPixmap reports whether an offscreen pixmap is currently bound.
	HasPixmap() bool
	// Resize rebinds the texture after the window changed size.
	Resize(size platform.Rect)
	// Release frees every resource; the renderer is not used afterwards.
	Release()
}

// RendererFactory creates the renderer of one window.
type RendererFactory func(id platform.WindowID) Renderer

// WindowSystem delivers the few client-visible messages the state machine
// sends itself.
type WindowSystem interface {
	// SendPing sends a liveness probe carrying serial.
	SendPing(id platform.WindowID, serial uint32) error
	// SendVisibility tells the client whether it is fully obscured.
	SendVisibility(id platform.WindowID, obscured bool) error
}

// Extension lets an in-process handler take over an animation. Returning
// true claims the operation and suppresses the default transition.
type Extension interface {
	WindowIconified(w *Window, deferred bool) bool
	WindowRestored(w *Window, deferred bool) bool
	WindowShown(w *Window) bool
	WindowClosed(w *Window) bool
}

// BaseExtension claims nothing. Embed it to override only some hooks.
type BaseExtension struct{}

func (BaseExtension) WindowIconified(*Window, bool) bool { return false }
func (BaseExtension) WindowRestored(*Window, bool) bool  { return false }
func (BaseExtension) WindowShown(*Window) bool           { return false }
func (BaseExtension) WindowClosed(*Window) bool          { return false }

// EventKind identifies a lifecycle notification.
type EventKind int

const (
	EventIconified EventKind = iota
	EventRestored
	// EventHung carries Asserted=true when the window stops responding and
	// false when it answers again.
	EventHung
	// EventVisualized carries the new visibility in Asserted.
	EventVisualized
	EventDesktopActivated
	EventCloseRequest
	EventDestroyed
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	switch k {
	case EventIconified:
		return "iconified"
	case EventRestored:
		return "restored"
	case EventHung:
		return "hung"
	case EventVisualized:
		return "visualized"
	case EventDesktopActivated:
		return "desktop-activated"
	case EventCloseRequest:
		return "close-request"
	case EventDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification emitted by a Window.
type Event struct {
	Kind     EventKind
	Window   *Window
	Asserted bool
}

// Listener receives lifecycle notifications on the control thread.
type Listener func(ev Event)
