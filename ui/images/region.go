package images

import (
	"image"
	"math"

	"github.com/soocke/pixel-label-go/domain/geometry"
)

// VisibleRegion returns the image pixels shown on a canvasW x canvasH canvas
// under view v, clamped to the image. Partially visible edge pixels are
// included. The result is empty when nothing of the image is on screen.
func VisibleRegion(imgW, imgH int, v geometry.ViewState, canvasW, canvasH int) image.Rectangle {
	if v.Zoom <= 0 || imgW <= 0 || imgH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return image.Rectangle{}
	}
	x0, y0 := viewToImageUnclamped(0, 0, v)
	x1, y1 := viewToImageUnclamped(float64(canvasW), float64(canvasH), v)
	r := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	)
	return r.Intersect(image.Rect(0, 0, imgW, imgH))
}

// RegionOnCanvas maps an image-space rectangle to canvas pixels.
func RegionOnCanvas(r image.Rectangle, v geometry.ViewState) image.Rectangle {
	x0, y0 := geometry.ImageToView(float64(r.Min.X), float64(r.Min.Y), v)
	x1, y1 := geometry.ImageToView(float64(r.Max.X), float64(r.Max.Y), v)
	return image.Rect(round(x0), round(y0), round(x1), round(y1))
}

func viewToImageUnclamped(vx, vy float64, v geometry.ViewState) (float64, float64) {
	ix := (vx - float64(v.FitOffsetX) + float64(v.PanX)) / v.Zoom
	iy := (vy - float64(v.FitOffsetY) + float64(v.PanY)) / v.Zoom
	return ix, iy
}

func round(v float64) int { return int(math.Round(v)) }
