package x11

import (
	"context"
	"fmt"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/compwm/internal/eventloop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	handlers Handlers
}

// NewConnection establishes a connection to the X11 server. An empty display
// uses $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// InitCompositing initializes the Composite, Damage, XFixes and Shape
// extensions, redirects every top-level window offscreen and selects the
// root events the compositor tracks.
func (c *Connection) InitCompositing() error {
	conn := c.XUtil.Conn()
	if err := composite.Init(conn); err != nil {
		return fmt.Errorf("composite extension: %w", err)
	}
	if err := xfixes.Init(conn); err != nil {
		return fmt.Errorf("xfixes extension: %w", err)
	}
	// XFixes must be version-negotiated before regions can be used.
	if _, err := xfixes.QueryVersion(conn, 2, 0).Reply(); err != nil {
		return fmt.Errorf("xfixes version: %w", err)
	}
	if err := damage.Init(conn); err != nil {
		return fmt.Errorf("damage extension: %w", err)
	}
	if _, err := damage.QueryVersion(conn, 1, 1).Reply(); err != nil {
		return fmt.Errorf("damage version: %w", err)
	}
	if err := shape.Init(conn); err != nil {
		return fmt.Errorf("shape extension: %w", err)
	}

	if err := composite.RedirectSubwindowsChecked(conn, c.Root, composite.RedirectManual).Check(); err != nil {
		return fmt.Errorf("redirect subwindows (another compositor running?): %w", err)
	}

	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskSubstructureNotify, xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("select root events: %w", err)
	}
	return nil
}

// Run drives the X event queue and the control loop's task queue from the
// calling goroutine, so X callbacks and loop tasks never run concurrently.
// It returns when ctx is cancelled, the loop is stopped or the X event
// loop quits.
func (c *Connection) Run(ctx context.Context, loop *eventloop.Loop) {
	before, after, quit := xevent.MainPing(c.XUtil)
	for {
		select {
		case <-before:
			// X callbacks run between the two pings.
			<-after
		case fn := <-loop.Tasks():
			loop.Execute(fn)
		case <-quit:
			return
		case <-loop.Done():
			xevent.Quit(c.XUtil)
			return
		case <-ctx.Done():
			xevent.Quit(c.XUtil)
			return
		}
	}
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
