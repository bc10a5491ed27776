// Package propcache caches the window-system properties the compositor
// consults, and re-reads them when the window system reports a change.
package propcache

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/1broseidon/compwm/internal/compositor"
	"github.com/1broseidon/compwm/internal/platform"
)

// Attributes are the window attributes read in one round trip.
type Attributes struct {
	Mapped           bool
	InputOnly        bool
	OverrideRedirect bool
	Geometry         platform.Rect
}

// Source reads properties from the window system. A missing property is
// reported as an error and replaced by its default.
type Source interface {
	Attributes(id platform.WindowID) (Attributes, error)
	WindowType(id platform.WindowID) ([]string, error)
	NetState(id platform.WindowID) ([]string, error)
	WMState(id platform.WindowID) (platform.WMState, error)
	TransientFor(id platform.WindowID) (platform.WindowID, error)
	Class(id platform.WindowID) (instance, class string, err error)
	ShapeRegion(id platform.WindowID) (platform.Region, error)
	IconGeometry(id platform.WindowID) (platform.Rect, error)
}

// Property names a property that can be refreshed individually.
type Property int

const (
	PropWindowType Property = iota
	PropNetState
	PropWMState
	PropTransientFor
	PropClass
	PropShape
	PropIconGeometry
)

// Cache is the PropertyCache of one window. Like the compositor it is used
// from the control thread only.
type Cache struct {
	src              Source
	id               platform.WindowID
	logger           *slog.Logger
	decoratorClasses []string

	valid            bool
	mapped           bool
	beingMapped      bool
	inputOnly        bool
	overrideRedirect bool
	decorator        bool
	windowType       string
	netState         []string
	wmState          platform.WMState
	transientFor     platform.WindowID
	geometry         platform.Rect
	shape            platform.Region
	iconGeometry     platform.Rect

	iconCallbacks []func()
}

var _ compositor.PropertyCache = (*Cache)(nil)

// New reads every cached property of id. The cache is invalid when the
// window's attributes cannot be read, typically because it is already gone.
func New(src Source, id platform.WindowID, decoratorClasses []string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		src:              src,
		id:               id,
		logger:           logger,
		decoratorClasses: decoratorClasses,
		wmState:          platform.WMStateNormal,
	}
	attrs, err := src.Attributes(id)
	if err != nil {
		logger.Debug("window attributes unavailable", "window_id", id, "error", err)
		return c
	}
	c.valid = true
	c.mapped = attrs.Mapped
	c.inputOnly = attrs.InputOnly
	c.overrideRedirect = attrs.OverrideRedirect
	c.geometry = attrs.Geometry
	for _, p := range []Property{PropTransientFor, PropWindowType, PropNetState, PropWMState, PropClass, PropShape, PropIconGeometry} {
		c.load(p)
	}
	return c
}

// Refresh re-reads p. Icon geometry listeners run when it changed.
func (c *Cache) Refresh(p Property) {
	if !c.valid {
		return
	}
	before := c.iconGeometry
	c.load(p)
	if p == PropTransientFor {
		// The default window type depends on transient-for.
		c.load(PropWindowType)
	}
	if p == PropIconGeometry && c.iconGeometry != before {
		for _, fn := range c.iconCallbacks {
			fn()
		}
	}
}

func (c *Cache) load(p Property) {
	switch p {
	case PropWindowType:
		types, err := c.src.WindowType(c.id)
		c.windowType = ""
		if err == nil && len(types) > 0 {
			c.windowType = types[0]
		}
		if c.windowType == "" {
			// EWMH: untyped transients are dialogs, everything else normal.
			c.windowType = compositor.TypeNormal
			if c.transientFor != platform.None {
				c.windowType = compositor.TypeDialog
			}
		}
	case PropNetState:
		state, err := c.src.NetState(c.id)
		if err != nil {
			state = nil
		}
		c.netState = state
	case PropWMState:
		st, err := c.src.WMState(c.id)
		if err != nil {
			st = platform.WMStateNormal
		}
		c.wmState = st
	case PropTransientFor:
		parent, err := c.src.TransientFor(c.id)
		if err != nil {
			parent = platform.None
		}
		c.transientFor = parent
	case PropClass:
		_, class, err := c.src.Class(c.id)
		c.decorator = err == nil && slices.ContainsFunc(c.decoratorClasses, func(d string) bool {
			return strings.EqualFold(d, class)
		})
	case PropShape:
		shape, err := c.src.ShapeRegion(c.id)
		if err != nil || len(shape) == 0 {
			shape = platform.Region{{Width: c.geometry.Width, Height: c.geometry.Height}}
		}
		c.shape = shape
	case PropIconGeometry:
		r, err := c.src.IconGeometry(c.id)
		if err != nil {
			r = platform.Rect{}
		}
		c.iconGeometry = r
	}
}

// Invalidate marks the window as gone.
func (c *Cache) Invalidate() {
	c.valid = false
	c.mapped = false
}

// SetGeometry records a configure notification.
func (c *Cache) SetGeometry(r platform.Rect) {
	resized := r.Width != c.geometry.Width || r.Height != c.geometry.Height
	c.geometry = r
	if resized && c.valid {
		c.load(PropShape)
	}
}

// SetDecoratorClasses replaces the decorator class list and re-reads
// WM_CLASS.
func (c *Cache) SetDecoratorClasses(classes []string) {
	c.decoratorClasses = classes
	if c.valid {
		c.load(PropClass)
	}
}

// SetBeingMapped records a map request that the server has not confirmed.
func (c *Cache) SetBeingMapped(b bool) {
	c.beingMapped = b
}

// SetOverrideRedirect records an override-redirect change.
func (c *Cache) SetOverrideRedirect(b bool) {
	c.overrideRedirect = b
}

func (c *Cache) IsValid() bool                   { return c.valid }
func (c *Cache) IsMapped() bool                  { return c.mapped }
func (c *Cache) BeingMapped() bool               { return c.beingMapped }
func (c *Cache) IsInputOnly() bool               { return c.inputOnly }
func (c *Cache) IsOverrideRedirect() bool        { return c.overrideRedirect }
func (c *Cache) IsDecorator() bool               { return c.decorator }
func (c *Cache) WindowType() string              { return c.windowType }
func (c *Cache) WindowState() platform.WMState   { return c.wmState }
func (c *Cache) NetState() []string              { return c.netState }
func (c *Cache) TransientFor() platform.WindowID { return c.transientFor }
func (c *Cache) RealGeometry() platform.Rect     { return c.geometry }
func (c *Cache) ShapeRegion() platform.Region    { return c.shape }
func (c *Cache) IconGeometry() platform.Rect     { return c.iconGeometry }

// SetMapped updates the mapped flag; a confirmed map clears BeingMapped.
func (c *Cache) SetMapped(mapped bool) {
	c.mapped = mapped
	if mapped {
		c.beingMapped = false
	}
}

func (c *Cache) OnIconGeometryUpdated(fn func()) {
	c.iconCallbacks = append(c.iconCallbacks, fn)
}
