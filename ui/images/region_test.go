package images

import (
	"image"
	"testing"

	"github.com/soocke/pixel-label-go/domain/geometry"
)

func TestVisibleRegion_ZoomedIn(t *testing.T) {
	r := VisibleRegion(200, 100, geometry.ViewState{Zoom: 2}, 100, 50)
	if r != image.Rect(0, 0, 50, 25) {
		t.Fatalf("got=%v want=(0,0)-(50,25)", r)
	}
	r = VisibleRegion(200, 100, geometry.ViewState{Zoom: 2, PanX: 40, PanY: 20}, 100, 50)
	if r != image.Rect(20, 10, 70, 35) {
		t.Fatalf("panned got=%v want=(20,10)-(70,35)", r)
	}
}

func TestVisibleRegion_ClampsSmallImage(t *testing.T) {
	v := geometry.ViewState{Zoom: 0.5, FitOffsetX: 50, FitOffsetY: 25}
	r := VisibleRegion(200, 100, v, 200, 100)
	if r != image.Rect(0, 0, 200, 100) {
		t.Fatalf("got=%v want full image", r)
	}
	if c := RegionOnCanvas(r, v); c != image.Rect(50, 25, 150, 75) {
		t.Fatalf("canvas rect=%v want=(50,25)-(150,75)", c)
	}
}

func TestVisibleRegion_Degenerate(t *testing.T) {
	if r := VisibleRegion(0, 0, geometry.ViewState{Zoom: 1}, 10, 10); !r.Empty() {
		t.Fatalf("expected empty, got %v", r)
	}
	if r := VisibleRegion(10, 10, geometry.ViewState{}, 10, 10); !r.Empty() {
		t.Fatalf("expected empty for zero zoom, got %v", r)
	}
}
