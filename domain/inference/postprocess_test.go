package inference

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/soocke/pixel-label-go/domain/annotation"
)

// head builds channel-major output data from per-anchor rows.
func head(rows [][]float32) []float32 {
	channels, anchors := len(rows[0]), len(rows)
	data := make([]float32, channels*anchors)
	for i, r := range rows {
		for c, v := range r {
			data[c*anchors+i] = v
		}
	}
	return data
}

func TestParseAndSuppress(t *testing.T) {
	lb := letterbox{origW: 320, origH: 160, scale: 2}
	data := head([][]float32{
		{320, 160, 64, 32, 0.9, 0.1},
		{100, 100, 20, 20, 0.2, 0.1},
		{322, 160, 64, 32, 0.8, 0.0},
		{320, 160, 64, 32, 0.0, 0.7},
	})
	cands := parseCandidates(data, 6, 4, 2, 0, 0.25, lb)
	if len(cands) != 3 {
		t.Fatalf("candidates=%d want 3", len(cands))
	}
	kept := nms(cands, 0.45)
	if len(kept) != 2 {
		t.Fatalf("kept=%d want 2", len(kept))
	}
	if kept[0].classID != 0 || kept[0].score != 0.9 || kept[1].classID != 1 {
		t.Fatalf("kept=%+v", kept)
	}
	if kept[0].origBox != image.Rect(144, 72, 176, 88) {
		t.Fatalf("orig box=%v", kept[0].origBox)
	}
	d := toDetection(kept[0], lb)
	if math.Abs(d.Box.CX-0.5) > 1e-6 || math.Abs(d.Box.W-0.1) > 1e-6 || math.Abs(d.Box.H-0.1) > 1e-6 {
		t.Fatalf("normalized box=%+v", d.Box)
	}
}

func TestParseRejectsShapeMismatch(t *testing.T) {
	if c := parseCandidates(make([]float32, 12), 6, 2, 3, 0, 0.1, letterbox{origW: 1, origH: 1, scale: 1}); c != nil {
		t.Fatalf("got=%v want nil", c)
	}
}

func TestIoU(t *testing.T) {
	a := [4]float32{0, 0, 10, 10}
	if got := iou(a, a); got != 1 {
		t.Fatalf("got=%v want=1", got)
	}
	if got := iou(a, [4]float32{20, 20, 30, 30}); got != 0 {
		t.Fatalf("got=%v want=0", got)
	}
	if got := iou(a, [4]float32{5, 0, 15, 10}); math.Abs(float64(got)-1.0/3.0) > 1e-6 {
		t.Fatalf("got=%v want=0.333", got)
	}
}

func TestDecodeMaskInsideBox(t *testing.T) {
	lb := letterbox{origW: 8, origH: 8, scale: 1}
	protos := make([]float32, 8*8)
	for i := range protos {
		protos[i] = 10
	}
	c := candidate{origBox: image.Rect(2, 2, 5, 6), coeffs: []float32{1}}
	mask := decodeMask(c, protos, 1, 8, 8, 8, lb, 0.5)
	on := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if mask.GrayAt(x, y).Y > 0 {
				on++
				if !image.Pt(x, y).In(c.origBox) {
					t.Fatalf("pixel %d,%d outside box", x, y)
				}
			}
		}
	}
	if on != 12 {
		t.Fatalf("on=%d want 12", on)
	}
}

func fillRect(m *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

func TestMaskPolygonRectangle(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 12, 10))
	fillRect(m, image.Rect(3, 2, 7, 5))
	fillRect(m, image.Rect(10, 8, 11, 9)) // stray pixel, smaller region
	pts := MaskPolygon(m, 1)
	want := []annotation.Point{{X: 3, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 4}, {X: 3, Y: 4}}
	if len(pts) != len(want) {
		t.Fatalf("got=%v want=%v", pts, want)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("got=%v want=%v", pts, want)
		}
	}
}

func TestMaskPolygonEmpty(t *testing.T) {
	if pts := MaskPolygon(image.NewGray(image.Rect(0, 0, 4, 4)), 1); pts != nil {
		t.Fatalf("got=%v want nil", pts)
	}
}

func TestNormalizeRingOrientsClockwiseFromTopLeft(t *testing.T) {
	// Counter-clockwise on screen, starting mid-ring, as OpenCV reports outer contours.
	ccw := []annotation.Point{{X: 6, Y: 4}, {X: 6, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 4}}
	want := []annotation.Point{{X: 3, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 4}, {X: 3, Y: 4}}
	got := normalizeRing(ccw)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v want=%v", got, want)
		}
	}
	again := normalizeRing(got)
	for i := range want {
		if again[i] != want[i] {
			t.Fatalf("not idempotent: %v", again)
		}
	}
}

func TestMaskPolygonHonoursBoundsOffset(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 20, 20))
	fillRect(m, image.Rect(12, 11, 16, 14))
	sub := m.SubImage(image.Rect(10, 10, 20, 20)).(*image.Gray)
	pts := MaskPolygon(sub, 1)
	want := []annotation.Point{{X: 12, Y: 11}, {X: 15, Y: 11}, {X: 15, Y: 13}, {X: 12, Y: 13}}
	if len(pts) != len(want) {
		t.Fatalf("got=%v want=%v", pts, want)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("got=%v want=%v", pts, want)
		}
	}
}
