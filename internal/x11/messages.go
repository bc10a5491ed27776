package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// iconicState is the ICCCM WM_STATE value carried by WM_CHANGE_STATE.
const iconicState = 3

// atom interns name through xgbutil's atom cache.
func (c *Connection) atom(name string) (xproto.Atom, error) {
	a, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return a, nil
}

// AtomName resolves an atom, for decoding client messages.
func (c *Connection) AtomName(a xproto.Atom) (string, error) {
	return xprop.AtomName(c.XUtil, a)
}

// SendPing sends a _NET_WM_PING probe to a client. The client echoes the
// message back to the root window with the same serial.
func (c *Connection) SendPing(windowID xproto.Window, serial uint32) error {
	protocols, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	ping, err := c.atom("_NET_WM_PING")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(ping), serial, uint32(windowID), 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// SendVisibility delivers a synthetic VisibilityNotify telling the client
// whether it is fully obscured. Redirected windows never get real ones.
func (c *Connection) SendVisibility(windowID xproto.Window, obscured bool) error {
	state := byte(xproto.VisibilityUnobscured)
	if obscured {
		state = xproto.VisibilityFullyObscured
	}
	ev := xproto.VisibilityNotifyEvent{
		Window: windowID,
		State:  state,
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskVisibilityChange,
		string(ev.Bytes()),
	).Check()
}

// RequestIconify asks the window manager to iconify a window via
// WM_CHANGE_STATE.
func (c *Connection) RequestIconify(windowID xproto.Window) error {
	changeState, err := c.atom("WM_CHANGE_STATE")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   changeState,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// RequestClose asks a client to close gracefully via WM_DELETE_WINDOW.
func (c *Connection) RequestClose(windowID xproto.Window) error {
	protocols, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	deleteWindow, err := c.atom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteWindow), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// ClientMessage is a decoded format-32 client message.
type ClientMessage struct {
	Window xproto.Window
	Type   string
	Data   []uint32
}

// PingReply reports whether msg is a client's answer to SendPing and
// returns the pinged window and serial.
func (m ClientMessage) PingReply(pingAtom xproto.Atom) (windowID xproto.Window, serial uint32, ok bool) {
	if m.Type != "WM_PROTOCOLS" || len(m.Data) < 3 || xproto.Atom(m.Data[0]) != pingAtom {
		return 0, 0, false
	}
	return xproto.Window(m.Data[2]), m.Data[1], true
}

// ChangeState reports whether msg is a WM_CHANGE_STATE request and whether
// it asks for the iconic state.
func (m ClientMessage) ChangeState() (iconic, ok bool) {
	if m.Type != "WM_CHANGE_STATE" || len(m.Data) < 1 {
		return false, false
	}
	return m.Data[0] == iconicState, true
}

// PingAtom returns the _NET_WM_PING atom for matching replies.
func (c *Connection) PingAtom() (xproto.Atom, error) {
	return c.atom("_NET_WM_PING")
}
