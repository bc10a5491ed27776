package render

import "github.com/1broseidon/compwm/internal/platform"

// pixmapRenderer binds the window's offscreen pixmap and tracks the bounds
// of the damage accumulated since the last frame.
type pixmapRenderer struct {
	base
	pixmap uint32
	size   platform.Rect
	dirty  platform.Rect
}

func (r *pixmapRenderer) UpdateTexture(damage []platform.Rect) {
	if r.direct {
		return
	}
	if r.pixmap == 0 && !r.bind() {
		return
	}
	for _, d := range damage {
		r.dirty = r.dirty.Union(d)
	}
}

func (r *pixmapRenderer) bind() bool {
	p, err := r.srv.namePixmap(r.id)
	if err != nil {
		r.logger.Debug("name window pixmap failed", "error", err)
		return false
	}
	r.pixmap = p
	return true
}

// Resize rebinds the pixmap after the window changed size; the server
// allocates a new backing pixmap on every resize.
func (r *pixmapRenderer) Resize(size platform.Rect) {
	size = platform.Rect{Width: size.Width, Height: size.Height}
	if size == r.size {
		return
	}
	r.size = size
	if r.direct || r.pixmap == 0 {
		return
	}
	r.srv.freePixmap(r.pixmap)
	r.pixmap = 0
	if r.bind() {
		r.dirty = size
	}
}

// TakeDamage returns and resets the damage bounds accumulated since the
// last call.
func (r *pixmapRenderer) TakeDamage() platform.Rect {
	d := r.dirty
	r.dirty = platform.Rect{}
	return d
}

func (r *pixmapRenderer) ClearTexture() {
	if r.pixmap != 0 {
		r.srv.freePixmap(r.pixmap)
		r.pixmap = 0
	}
	r.dirty = platform.Rect{}
}

func (r *pixmapRenderer) EnableDirectRendering() {
	r.enableDirect(r.ClearTexture)
}

func (r *pixmapRenderer) HasPixmap() bool {
	return r.pixmap != 0
}

func (r *pixmapRenderer) Release() {
	r.ClearTexture()
}
