package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Rect is a rectangle in root coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Attributes is the subset of window attributes and geometry the compositor
// caches.
type Attributes struct {
	Mapped           bool
	InputOnly        bool
	OverrideRedirect bool
	Geometry         Rect
}

// GetAttributes reads a window's attributes and geometry.
func (c *Connection) GetAttributes(windowID xproto.Window) (Attributes, error) {
	conn := c.XUtil.Conn()
	attrs, err := xproto.GetWindowAttributes(conn, windowID).Reply()
	if err != nil {
		return Attributes{}, fmt.Errorf("get window attributes: %w", err)
	}
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Attributes{}, fmt.Errorf("get geometry: %w", err)
	}
	return Attributes{
		Mapped:           attrs.MapState == xproto.MapStateViewable,
		InputOnly:        attrs.Class == xproto.WindowClassInputOnly,
		OverrideRedirect: attrs.OverrideRedirect,
		Geometry: Rect{
			X:      int(geom.X),
			Y:      int(geom.Y),
			Width:  int(geom.Width),
			Height: int(geom.Height),
		},
	}, nil
}

// GetWindowType returns _NET_WM_WINDOW_TYPE in order of preference.
func (c *Connection) GetWindowType(windowID xproto.Window) ([]string, error) {
	return ewmh.WmWindowTypeGet(c.XUtil, windowID)
}

// GetNetState returns the atoms of _NET_WM_STATE.
func (c *Connection) GetNetState(windowID xproto.Window) ([]string, error) {
	return ewmh.WmStateGet(c.XUtil, windowID)
}

// GetWMState returns the ICCCM WM_STATE value (0 withdrawn, 1 normal,
// 3 iconic).
func (c *Connection) GetWMState(windowID xproto.Window) (uint, error) {
	st, err := icccm.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return 0, err
	}
	return st.State, nil
}

// GetTransientFor returns WM_TRANSIENT_FOR.
func (c *Connection) GetTransientFor(windowID xproto.Window) (xproto.Window, error) {
	return icccm.WmTransientForGet(c.XUtil, windowID)
}

// GetClass returns the two WM_CLASS strings.
func (c *Connection) GetClass(windowID xproto.Window) (instance, class string, err error) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", "", err
	}
	return wmClass.Instance, wmClass.Class, nil
}

// GetIconGeometry returns _NET_WM_ICON_GEOMETRY, the taskbar entry the
// window iconifies into.
func (c *Connection) GetIconGeometry(windowID xproto.Window) (Rect, error) {
	geom, err := ewmh.WmIconGeometryGet(c.XUtil, windowID)
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: geom.X, Y: geom.Y, Width: int(geom.Width), Height: int(geom.Height)}, nil
}

// GetShape returns the bounding shape rectangles relative to the window
// origin. Unshaped windows report a single rectangle covering the window.
func (c *Connection) GetShape(windowID xproto.Window) ([]Rect, error) {
	reply, err := shape.GetRectangles(c.XUtil.Conn(), windowID, shape.SkBounding).Reply()
	if err != nil {
		return nil, fmt.Errorf("get shape rectangles: %w", err)
	}
	rects := make([]Rect, 0, len(reply.Rectangles))
	for _, r := range reply.Rectangles {
		rects = append(rects, Rect{X: int(r.X), Y: int(r.Y), Width: int(r.Width), Height: int(r.Height)})
	}
	return rects, nil
}

// GetStacking returns the children of the root window, bottom to top.
func (c *Connection) GetStacking() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}
	return tree.Children, nil
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
