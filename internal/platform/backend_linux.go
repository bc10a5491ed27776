//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/compwm/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Screen returns the work area of the monitor under the pointer.
func (b *LinuxBackend) Screen() (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	area, err := conn.WorkArea()
	if err != nil {
		return Rect{}, err
	}
	return Rect(area), nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ClientWindows lists the top-level windows, bottom to top.
func (b *LinuxBackend) ClientWindows() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	children, err := conn.GetStacking()
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, len(children))
	for i, c := range children {
		ids[i] = WindowID(c)
	}
	return ids, nil
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.RequestClose(xproto.Window(windowID))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
