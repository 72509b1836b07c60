package images

import (
	"image"
	"testing"
)

func TestAcquireFrame_Sizes(t *testing.T) {
	r := image.Rect(0, 0, 40, 30)
	f := acquireFrame(r)
	if f.Rect != r || f.Stride != 160 || len(f.Pix) != 40*30*4 {
		t.Fatalf("frame rect=%v stride=%d len=%d", f.Rect, f.Stride, len(f.Pix))
	}
	RecycleFrame(f)

	small := image.Rect(0, 0, 10, 5)
	g := acquireFrame(small)
	if g.Rect != small || g.Stride != 40 || len(g.Pix) != 10*5*4 {
		t.Fatalf("reused frame rect=%v stride=%d len=%d", g.Rect, g.Stride, len(g.Pix))
	}

	empty := acquireFrame(image.Rect(0, 0, 0, 7))
	if len(empty.Pix) != 0 {
		t.Fatalf("empty frame has pixels")
	}
	RecycleFrame(empty)
	RecycleFrame(nil)
}
