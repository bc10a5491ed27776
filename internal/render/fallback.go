package render

import (
	"image"

	"github.com/1broseidon/compwm/internal/platform"
)

// fallbackRenderer keeps a CPU copy of the window contents, refreshed from
// the damaged areas.
type fallbackRenderer struct {
	base
	img *image.RGBA
}

func (r *fallbackRenderer) UpdateTexture(damage []platform.Rect) {
	if r.direct {
		return
	}
	size, err := r.srv.size(r.id)
	if err != nil {
		r.logger.Debug("window geometry failed", "error", err)
		return
	}
	full := platform.Rect{Width: size.Width, Height: size.Height}
	if r.img == nil || r.img.Rect.Dx() != size.Width || r.img.Rect.Dy() != size.Height {
		r.img = image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
		damage = nil
	}
	if len(damage) == 0 {
		damage = []platform.Rect{full}
	}
	for _, d := range damage {
		d = d.Intersect(full)
		if d.IsEmpty() {
			continue
		}
		data, err := r.srv.getImage(r.id, d)
		if err != nil {
			r.logger.Debug("get image failed", "error", err)
			return
		}
		blitBGRX(r.img, d, data)
	}
}

// blitBGRX copies 32-bit BGRX rows (the ZPixmap layout of depth 24/32
// visuals) into dst at r. A short reply stops at the last complete row.
func blitBGRX(dst *image.RGBA, r platform.Rect, data []byte) {
	stride := r.Width * 4
	for y := 0; y < r.Height; y++ {
		start := y * stride
		if start+stride > len(data) {
			return
		}
		row := data[start : start+stride]
		off := dst.PixOffset(r.X, r.Y+y)
		for x := 0; x < r.Width; x++ {
			dst.Pix[off+x*4+0] = row[x*4+2]
			dst.Pix[off+x*4+1] = row[x*4+1]
			dst.Pix[off+x*4+2] = row[x*4+0]
			dst.Pix[off+x*4+3] = 0xff
		}
	}
}

// Resize drops a copy of the wrong size; the next update copies the whole
// window again.
func (r *fallbackRenderer) Resize(size platform.Rect) {
	if r.img != nil && (r.img.Rect.Dx() != size.Width || r.img.Rect.Dy() != size.Height) {
		r.img = nil
	}
}

// Image returns the CPU copy, or nil when nothing is bound.
func (r *fallbackRenderer) Image() *image.RGBA {
	return r.img
}

func (r *fallbackRenderer) ClearTexture() {
	r.img = nil
}

func (r *fallbackRenderer) EnableDirectRendering() {
	r.enableDirect(r.ClearTexture)
}

func (r *fallbackRenderer) HasPixmap() bool {
	return r.img != nil
}

func (r *fallbackRenderer) Release() {
	r.ClearTexture()
}
