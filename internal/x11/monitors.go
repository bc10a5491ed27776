package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	Name string
	Rect
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			Name: name,
			Rect: Rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)},
		})
	}
	return monitors, nil
}

// WorkArea returns the usable area of the monitor under the pointer, clipped
// to _NET_WORKAREA so panels and docks are excluded. Without RandR the whole
// root window is used.
func (c *Connection) WorkArea() (Rect, error) {
	area, err := c.rootArea()
	if err != nil {
		return Rect{}, err
	}
	if monitors, err := c.GetMonitors(); err == nil && len(monitors) > 0 {
		area = monitors[0].Rect
		if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			if m := monitorAt(monitors, int(pointer.RootX), int(pointer.RootY)); m != nil {
				area = m.Rect
			}
		}
	}

	workAreas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workAreas) == 0 {
		return area, nil
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workAreas) {
		desktop = int(current)
	}
	wa := workAreas[desktop]
	return clipWorkArea(area, Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}), nil
}

func (c *Connection) rootArea() (Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Rect{}, fmt.Errorf("get root geometry: %w", err)
	}
	return Rect{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		m := &monitors[i]
		if x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height {
			return m
		}
	}
	return nil
}

// clipWorkArea intersects a monitor with the work area. A work area that
// does not overlap the monitor leaves it unchanged.
func clipWorkArea(monitor, workArea Rect) Rect {
	x1 := max(monitor.X, workArea.X)
	y1 := max(monitor.Y, workArea.Y)
	x2 := min(monitor.X+monitor.Width, workArea.X+workArea.Width)
	y2 := min(monitor.Y+monitor.Height, workArea.Y+workArea.Height)
	if x2 <= x1 || y2 <= y1 {
		return monitor
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
