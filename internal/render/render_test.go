package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/compwm/internal/platform"
)

type fakeServer struct {
	nextPixmap  uint32
	freed       []uint32
	redirected  []platform.WindowID
	unredirects []platform.WindowID
	images      []platform.Rect
	geom        platform.Rect
	failName    bool
}

func (f *fakeServer) namePixmap(platform.WindowID) (uint32, error) {
	if f.failName {
		return 0, errors.New("bad match")
	}
	f.nextPixmap++
	return f.nextPixmap, nil
}

func (f *fakeServer) freePixmap(p uint32) { f.freed = append(f.freed, p) }

func (f *fakeServer) size(platform.WindowID) (platform.Rect, error) { return f.geom, nil }

func (f *fakeServer) getImage(_ platform.WindowID, r platform.Rect) ([]byte, error) {
	f.images = append(f.images, r)
	data := make([]byte, r.Width*r.Height*4)
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+1], data[i+2] = 0x10, 0x20, 0x30
	}
	return data, nil
}

func (f *fakeServer) redirect(id platform.WindowID) error {
	f.redirected = append(f.redirected, id)
	return nil
}

func (f *fakeServer) unredirect(id platform.WindowID) error {
	f.unredirects = append(f.unredirects, id)
	return nil
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want Mode
	}{
		{"composite 0.4", Capabilities{CompositeMajor: 0, CompositeMinor: 4}, ModeTexturePixmap},
		{"composite 0.2", Capabilities{CompositeMajor: 0, CompositeMinor: 2}, ModeTexturePixmap},
		{"composite 0.1", Capabilities{CompositeMajor: 0, CompositeMinor: 1}, ModeFallback},
		{"composite 1.0", Capabilities{CompositeMajor: 1}, ModeTexturePixmap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.caps))
		})
	}
}

func TestPixmapRendererBindsOnce(t *testing.T) {
	srv := &fakeServer{}
	r := factory(srv, ModeTexturePixmap, nil)(7).(*pixmapRenderer)

	assert.False(t, r.HasPixmap())
	r.UpdateTexture([]platform.Rect{{Width: 10, Height: 10}})
	r.UpdateTexture([]platform.Rect{{X: 5, Width: 1, Height: 1}})
	require.True(t, r.HasPixmap())
	assert.Equal(t, uint32(1), srv.nextPixmap)
	assert.Equal(t, platform.Rect{Width: 10, Height: 10}, r.TakeDamage())
	assert.True(t, r.TakeDamage().IsEmpty())

	r.ClearTexture()
	assert.False(t, r.HasPixmap())
	assert.Equal(t, []uint32{1}, srv.freed)
}

func TestPixmapRendererDamageStaysBounded(t *testing.T) {
	srv := &fakeServer{}
	r := factory(srv, ModeTexturePixmap, nil)(7).(*pixmapRenderer)

	for i := 0; i < 100000; i++ {
		r.UpdateTexture([]platform.Rect{{X: i % 640, Y: i % 480, Width: 1, Height: 1}})
	}
	assert.Equal(t, platform.Rect{Width: 640, Height: 480}, r.TakeDamage())
}

func TestPixmapRendererRebindsOnResize(t *testing.T) {
	srv := &fakeServer{}
	r := factory(srv, ModeTexturePixmap, nil)(7).(*pixmapRenderer)

	// Nothing is bound yet, so there is nothing to rebind.
	r.Resize(platform.Rect{Width: 400, Height: 300})
	assert.Zero(t, srv.nextPixmap)

	r.UpdateTexture(nil)
	require.Equal(t, uint32(1), r.pixmap)

	r.Resize(platform.Rect{X: 20, Y: 20, Width: 400, Height: 300})
	assert.Equal(t, uint32(1), r.pixmap, "a move keeps the pixmap")

	r.Resize(platform.Rect{Width: 640, Height: 480})
	assert.Equal(t, uint32(2), r.pixmap)
	assert.Equal(t, []uint32{1}, srv.freed)
	assert.Equal(t, platform.Rect{Width: 640, Height: 480}, r.TakeDamage())
}

func TestFallbackRendererResizeDropsCopy(t *testing.T) {
	srv := &fakeServer{geom: platform.Rect{Width: 20, Height: 10}}
	r := factory(srv, ModeFallback, nil)(3).(*fallbackRenderer)
	r.UpdateTexture(nil)
	require.NotNil(t, r.Image())

	r.Resize(platform.Rect{Width: 20, Height: 10})
	assert.NotNil(t, r.Image())
	r.Resize(platform.Rect{Width: 30, Height: 10})
	assert.Nil(t, r.Image())
}

func TestPixmapRendererNameFailure(t *testing.T) {
	srv := &fakeServer{failName: true}
	r := factory(srv, ModeTexturePixmap, nil)(7)

	r.UpdateTexture(nil)
	assert.False(t, r.HasPixmap())
}

func TestDirectRenderingToggle(t *testing.T) {
	srv := &fakeServer{}
	r := factory(srv, ModeTexturePixmap, nil)(9)
	r.UpdateTexture(nil)

	r.EnableDirectRendering()
	assert.True(t, r.IsDirectRendered())
	assert.False(t, r.HasPixmap())
	assert.Equal(t, []platform.WindowID{9}, srv.unredirects)

	// Texture updates are ignored while rendering directly.
	r.UpdateTexture(nil)
	assert.False(t, r.HasPixmap())

	r.EnableDirectRendering()
	assert.Len(t, srv.unredirects, 1)

	r.EnableRedirectedRendering()
	assert.False(t, r.IsDirectRendered())
	assert.Equal(t, []platform.WindowID{9}, srv.redirected)
}

func TestFallbackRendererCopiesDamage(t *testing.T) {
	srv := &fakeServer{geom: platform.Rect{Width: 20, Height: 10}}
	r := factory(srv, ModeFallback, nil)(3).(*fallbackRenderer)

	r.UpdateTexture([]platform.Rect{{X: 2, Y: 2, Width: 4, Height: 4}})
	require.True(t, r.HasPixmap())
	// The first update copies the whole window.
	require.Equal(t, []platform.Rect{{Width: 20, Height: 10}}, srv.images)

	r.UpdateTexture([]platform.Rect{{X: 18, Y: 8, Width: 10, Height: 10}})
	require.Len(t, srv.images, 2)
	assert.Equal(t, platform.Rect{X: 18, Y: 8, Width: 2, Height: 2}, srv.images[1])

	px := r.Image().RGBAAt(19, 9)
	assert.Equal(t, uint8(0x30), px.R)
	assert.Equal(t, uint8(0x20), px.G)
	assert.Equal(t, uint8(0x10), px.B)
	assert.Equal(t, uint8(0xff), px.A)

	r.Release()
	assert.False(t, r.HasPixmap())
}
