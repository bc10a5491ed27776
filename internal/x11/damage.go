package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Watch starts tracking a client window: its events are routed to the
// Handlers, property and shape changes are selected and a damage object
// reporting raw rectangles is created. The returned damage handle must be
// passed to Unwatch.
func (c *Connection) Watch(windowID xproto.Window) (damage.Damage, error) {
	conn := c.XUtil.Conn()
	c.connectWindow(windowID)
	win := xwindow.New(c.XUtil, windowID)
	if err := win.Listen(xproto.EventMaskPropertyChange); err != nil {
		return 0, fmt.Errorf("select window events: %w", err)
	}
	shape.SelectInput(conn, windowID, true)

	d, err := damage.NewDamageId(conn)
	if err != nil {
		return 0, fmt.Errorf("allocate damage id: %w", err)
	}
	if err := damage.CreateChecked(conn, d, xproto.Drawable(windowID), damage.ReportLevelRawRectangles).Check(); err != nil {
		return 0, fmt.Errorf("create damage: %w", err)
	}
	return d, nil
}

// Unwatch detaches the window's callbacks and releases its damage object.
// The window may already be destroyed, in which case the server has freed
// the damage and the error is ignored.
func (c *Connection) Unwatch(windowID xproto.Window, d damage.Damage) {
	xevent.Detach(c.XUtil, windowID)
	if d != 0 {
		damage.Destroy(c.XUtil.Conn(), d)
	}
}

// AckDamage clears the accumulated damage so the next change is reported.
func (c *Connection) AckDamage(d damage.Damage) {
	damage.Subtract(c.XUtil.Conn(), d, xfixes.Region(0), xfixes.Region(0))
}
