package render

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/compwm/internal/platform"
)

// server is the slice of the X protocol the renderers need.
type server interface {
	namePixmap(id platform.WindowID) (uint32, error)
	freePixmap(pixmap uint32)
	size(id platform.WindowID) (platform.Rect, error)
	getImage(id platform.WindowID, r platform.Rect) ([]byte, error)
	redirect(id platform.WindowID) error
	unredirect(id platform.WindowID) error
}

type xServer struct {
	conn *xgb.Conn
}

func (s xServer) namePixmap(id platform.WindowID) (uint32, error) {
	pixmap, err := xproto.NewPixmapId(s.conn)
	if err != nil {
		return 0, fmt.Errorf("allocate pixmap id: %w", err)
	}
	if err := composite.NameWindowPixmapChecked(s.conn, xproto.Window(id), pixmap).Check(); err != nil {
		return 0, fmt.Errorf("name window pixmap: %w", err)
	}
	return uint32(pixmap), nil
}

func (s xServer) freePixmap(pixmap uint32) {
	xproto.FreePixmap(s.conn, xproto.Pixmap(pixmap))
}

func (s xServer) size(id platform.WindowID) (platform.Rect, error) {
	geom, err := xproto.GetGeometry(s.conn, xproto.Drawable(id)).Reply()
	if err != nil {
		return platform.Rect{}, fmt.Errorf("get geometry: %w", err)
	}
	return platform.Rect{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

func (s xServer) getImage(id platform.WindowID, r platform.Rect) ([]byte, error) {
	reply, err := xproto.GetImage(s.conn, xproto.ImageFormatZPixmap, xproto.Drawable(id),
		int16(r.X), int16(r.Y), uint16(r.Width), uint16(r.Height), 0xffffffff).Reply()
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return reply.Data, nil
}

func (s xServer) redirect(id platform.WindowID) error {
	return composite.RedirectWindowChecked(s.conn, xproto.Window(id), composite.RedirectManual).Check()
}

func (s xServer) unredirect(id platform.WindowID) error {
	return composite.UnredirectWindowChecked(s.conn, xproto.Window(id), composite.RedirectManual).Check()
}
