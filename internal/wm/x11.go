//go:build linux

package wm

import (
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/compwm/internal/platform"
	"github.com/1broseidon/compwm/internal/propcache"
	"github.com/1broseidon/compwm/internal/x11"
)

// X11Display implements Display on top of an X11 connection.
type X11Display struct {
	*platform.LinuxBackend

	conn     *x11.Connection
	pingAtom xproto.Atom
	damages  map[platform.WindowID]damage.Damage
}

var _ Display = (*X11Display)(nil)

// NewX11Display wraps conn. The compositing extensions must already be
// initialized.
func NewX11Display(conn *x11.Connection) (*X11Display, error) {
	ping, err := conn.PingAtom()
	if err != nil {
		return nil, err
	}
	return &X11Display{
		LinuxBackend: platform.NewLinuxBackend(conn),
		conn:         conn,
		pingAtom:     ping,
		damages:      make(map[platform.WindowID]damage.Damage),
	}, nil
}

func (d *X11Display) Attributes(id platform.WindowID) (propcache.Attributes, error) {
	a, err := d.conn.GetAttributes(xproto.Window(id))
	if err != nil {
		return propcache.Attributes{}, err
	}
	return propcache.Attributes{
		Mapped:           a.Mapped,
		InputOnly:        a.InputOnly,
		OverrideRedirect: a.OverrideRedirect,
		Geometry:         platform.Rect(a.Geometry),
	}, nil
}

func (d *X11Display) WindowType(id platform.WindowID) ([]string, error) {
	return d.conn.GetWindowType(xproto.Window(id))
}

func (d *X11Display) NetState(id platform.WindowID) ([]string, error) {
	return d.conn.GetNetState(xproto.Window(id))
}

func (d *X11Display) WMState(id platform.WindowID) (platform.WMState, error) {
	st, err := d.conn.GetWMState(xproto.Window(id))
	if err != nil {
		return platform.WMStateNormal, err
	}
	return platform.WMState(st), nil
}

func (d *X11Display) TransientFor(id platform.WindowID) (platform.WindowID, error) {
	parent, err := d.conn.GetTransientFor(xproto.Window(id))
	if err != nil {
		return platform.None, err
	}
	return platform.WindowID(parent), nil
}

func (d *X11Display) Class(id platform.WindowID) (string, string, error) {
	return d.conn.GetClass(xproto.Window(id))
}

func (d *X11Display) ShapeRegion(id platform.WindowID) (platform.Region, error) {
	rects, err := d.conn.GetShape(xproto.Window(id))
	if err != nil {
		return nil, err
	}
	region := make(platform.Region, len(rects))
	for i, r := range rects {
		region[i] = platform.Rect(r)
	}
	return region, nil
}

func (d *X11Display) IconGeometry(id platform.WindowID) (platform.Rect, error) {
	r, err := d.conn.GetIconGeometry(xproto.Window(id))
	if err != nil {
		return platform.Rect{}, err
	}
	return platform.Rect(r), nil
}

func (d *X11Display) SendPing(id platform.WindowID, serial uint32) error {
	return d.conn.SendPing(xproto.Window(id), serial)
}

func (d *X11Display) SendVisibility(id platform.WindowID, obscured bool) error {
	return d.conn.SendVisibility(xproto.Window(id), obscured)
}

func (d *X11Display) Watch(id platform.WindowID) error {
	dmg, err := d.conn.Watch(xproto.Window(id))
	if err != nil {
		// Callbacks may already be connected.
		d.conn.Unwatch(xproto.Window(id), dmg)
		return err
	}
	d.damages[id] = dmg
	return nil
}

func (d *X11Display) Unwatch(id platform.WindowID) {
	d.conn.Unwatch(xproto.Window(id), d.damages[id])
	delete(d.damages, id)
}

func (d *X11Display) RequestIconify(id platform.WindowID) error {
	return d.conn.RequestIconify(xproto.Window(id))
}

// Handlers routes the connection's events into s.
func (d *X11Display) Handlers(s *Session) x11.Handlers {
	return x11.Handlers{
		Created: func(win xproto.Window) {
			s.WindowCreated(platform.WindowID(win))
		},
		Destroyed: func(win xproto.Window) {
			s.WindowDestroyed(platform.WindowID(win))
		},
		Mapped: func(win xproto.Window) {
			s.WindowMapped(platform.WindowID(win))
		},
		Unmapped: func(win xproto.Window) {
			s.WindowUnmapped(platform.WindowID(win))
		},
		Configured: func(win xproto.Window, geom x11.Rect, overrideRedirect bool) {
			s.WindowConfigured(platform.WindowID(win), platform.Rect(geom), overrideRedirect)
		},
		Property: func(win xproto.Window, name string) {
			if win == d.conn.Root {
				s.RootPropertyChanged(name)
				return
			}
			s.PropertyChanged(platform.WindowID(win), name)
		},
		Message: func(msg x11.ClientMessage) {
			if win, serial, ok := msg.PingReply(d.pingAtom); ok {
				s.PingReplied(platform.WindowID(win), serial)
				return
			}
			if iconic, ok := msg.ChangeState(); ok {
				s.ChangeStateRequested(platform.WindowID(msg.Window), iconic)
			}
		},
		Damaged: func(dmg damage.Damage, win xproto.Window, area x11.Rect) {
			d.conn.AckDamage(dmg)
			s.Damaged(platform.WindowID(win), []platform.Rect{platform.Rect(area)})
		},
		Reshaped: func(win xproto.Window) {
			s.Reshaped(platform.WindowID(win))
		},
	}
}
