package x11

import (
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handlers receives the window-system events the compositor reacts to. All
// callbacks run on the goroutine executing Run. Nil callbacks are skipped.
type Handlers struct {
	Created    func(windowID xproto.Window)
	Destroyed  func(windowID xproto.Window)
	Mapped     func(windowID xproto.Window)
	Unmapped   func(windowID xproto.Window)
	Configured func(windowID xproto.Window, geom Rect, overrideRedirect bool)
	// Property fires for watched windows and for the root window.
	Property func(windowID xproto.Window, name string)
	Message  func(msg ClientMessage)
	Damaged  func(d damage.Damage, windowID xproto.Window, area Rect)
	Reshaped func(windowID xproto.Window)
}

// Listen connects h to the root window's events and installs the hook that
// decodes Damage and Shape extension events. Events keyed by a client window
// are only delivered once that window is watched.
func (c *Connection) Listen(h Handlers) {
	c.handlers = h
	xu := c.XUtil

	xevent.CreateNotifyFun(func(xu *xgbutil.XUtil, ev xevent.CreateNotifyEvent) {
		if h.Created != nil && ev.Parent == c.Root {
			h.Created(ev.Window)
		}
	}).Connect(xu, c.Root)

	// MapNotify is keyed by the event window, which is root for
	// SubstructureNotify.
	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		if h.Mapped != nil && ev.Event == c.Root {
			h.Mapped(ev.Window)
		}
	}).Connect(xu, c.Root)

	xevent.PropertyNotifyFun(c.propertyChanged).Connect(xu, c.Root)

	xevent.ClientMessageFun(c.clientMessage).Connect(xu, c.Root)

	xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
		switch ev := event.(type) {
		case damage.NotifyEvent:
			if h.Damaged != nil {
				h.Damaged(ev.Damage, xproto.Window(ev.Drawable), Rect{
					X:      int(ev.Area.X),
					Y:      int(ev.Area.Y),
					Width:  int(ev.Area.Width),
					Height: int(ev.Area.Height),
				})
			}
		case shape.NotifyEvent:
			if h.Reshaped != nil && ev.ShapeKind == shape.SkBounding {
				h.Reshaped(ev.AffectedWindow)
			}
		}
		return true
	}).Connect(xu)
}

func (c *Connection) propertyChanged(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	if c.handlers.Property == nil {
		return
	}
	name, err := c.AtomName(ev.Atom)
	if err != nil {
		return
	}
	c.handlers.Property(ev.Window, name)
}

func (c *Connection) clientMessage(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
	if c.handlers.Message == nil || ev.Format != 32 {
		return
	}
	name, err := c.AtomName(ev.Type)
	if err != nil {
		return
	}
	c.handlers.Message(ClientMessage{Window: ev.Window, Type: name, Data: ev.Data.Data32})
}

// connectWindow routes the events xgbutil dispatches by client window.
func (c *Connection) connectWindow(windowID xproto.Window) {
	xu := c.XUtil
	h := c.handlers

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if h.Destroyed != nil {
			h.Destroyed(ev.Window)
		}
	}).Connect(xu, windowID)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		if h.Unmapped != nil {
			h.Unmapped(ev.Window)
		}
	}).Connect(xu, windowID)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if h.Configured == nil {
			return
		}
		h.Configured(ev.Window, Rect{
			X:      int(ev.X),
			Y:      int(ev.Y),
			Width:  int(ev.Width),
			Height: int(ev.Height),
		}, ev.OverrideRedirect)
	}).Connect(xu, windowID)

	xevent.PropertyNotifyFun(c.propertyChanged).Connect(xu, windowID)
	xevent.ClientMessageFun(c.clientMessage).Connect(xu, windowID)
}
