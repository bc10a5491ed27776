// Package render provides the texture backends behind compositor.Renderer.
// Two implementations exist: one naming the redirected window's pixmap
// through the Composite extension, and a CPU fallback that copies damaged
// areas with GetImage for servers without NameWindowPixmap. The choice is
// made once at startup from a capability probe.
package render

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/composite"

	"github.com/1broseidon/compwm/internal/compositor"
	"github.com/1broseidon/compwm/internal/platform"
)

// Mode selects the renderer implementation.
type Mode int

const (
	ModeTexturePixmap Mode = iota
	ModeFallback
)

func (m Mode) String() string {
	switch m {
	case ModeTexturePixmap:
		return "texture-pixmap"
	case ModeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Capabilities is what the server advertised during the probe.
type Capabilities struct {
	CompositeMajor uint32
	CompositeMinor uint32
}

// NameWindowPixmap reports whether the server can hand out window pixmaps
// (Composite 0.2 and later).
func (c Capabilities) NameWindowPixmap() bool {
	return c.CompositeMajor > 0 || c.CompositeMinor >= 2
}

// Select picks the renderer implementation for c.
func Select(c Capabilities) Mode {
	if c.NameWindowPixmap() {
		return ModeTexturePixmap
	}
	return ModeFallback
}

// Probe initializes the Composite extension and queries its version.
func Probe(conn *xgb.Conn) (Capabilities, error) {
	if err := composite.Init(conn); err != nil {
		return Capabilities{}, fmt.Errorf("composite extension: %w", err)
	}
	reply, err := composite.QueryVersion(conn, 0, 4).Reply()
	if err != nil {
		return Capabilities{}, fmt.Errorf("composite version: %w", err)
	}
	return Capabilities{CompositeMajor: reply.MajorVersion, CompositeMinor: reply.MinorVersion}, nil
}

// Factory returns a compositor.RendererFactory creating renderers of the
// given mode on conn.
func Factory(conn *xgb.Conn, mode Mode, logger *slog.Logger) compositor.RendererFactory {
	return factory(xServer{conn: conn}, mode, logger)
}

func factory(srv server, mode Mode, logger *slog.Logger) compositor.RendererFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(id platform.WindowID) compositor.Renderer {
		b := base{srv: srv, id: id, logger: logger.With("window_id", id)}
		if mode == ModeFallback {
			return &fallbackRenderer{base: b}
		}
		return &pixmapRenderer{base: b}
	}
}

// base carries the redirection toggle shared by both implementations.
type base struct {
	srv    server
	id     platform.WindowID
	logger *slog.Logger
	direct bool
}

func (b *base) IsDirectRendered() bool {
	return b.direct
}

func (b *base) enableDirect(clear func()) {
	if b.direct {
		return
	}
	clear()
	if err := b.srv.unredirect(b.id); err != nil {
		b.logger.Debug("unredirect failed", "error", err)
		return
	}
	b.direct = true
}

func (b *base) EnableRedirectedRendering() {
	if !b.direct {
		return
	}
	if err := b.srv.redirect(b.id); err != nil {
		b.logger.Debug("redirect failed", "error", err)
		return
	}
	b.direct = false
}
