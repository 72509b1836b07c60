package images

import (
	"image"
	"sync"
)

// Canvas frames are rendered on every pointer move. The render worker hands
// each frame back through RecycleFrame once it is encoded, so steady-state
// rendering at a fixed canvas size reuses the same backing slices.

var framePool sync.Pool // stores *image.RGBA

// acquireFrame returns an RGBA image sized to rect. Pixel contents are
// undefined; callers paint the whole frame.
func acquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Stride = w * 4
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	return img
}

// RecycleFrame returns a rendered frame to the pool. The caller must not touch
// the frame afterwards.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
