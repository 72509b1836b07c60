package geometry

// Zoom limits shared by the viewport and the mapper.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// ViewState parameterizes the transform between image space and view space.
// Pan and fit offsets are view-space pixels.
type ViewState struct {
	Zoom       float64
	PanX       int
	PanY       int
	FitOffsetX int
	FitOffsetY int
}

// ImageToView maps an image pixel coordinate to the canvas.
func ImageToView(ix, iy float64, v ViewState) (float64, float64) {
	vx := ix*v.Zoom - float64(v.PanX) + float64(v.FitOffsetX)
	vy := iy*v.Zoom - float64(v.PanY) + float64(v.FitOffsetY)
	return vx, vy
}

// ViewToImage maps a canvas coordinate back to image pixels. ok is false when
// the point lies outside [0,w)x[0,h); that means no image under the cursor,
// not an error.
func ViewToImage(vx, vy float64, v ViewState, w, h int) (ix, iy float64, ok bool) {
	if v.Zoom <= 0 {
		return 0, 0, false
	}
	ix = (vx - float64(v.FitOffsetX) + float64(v.PanX)) / v.Zoom
	iy = (vy - float64(v.FitOffsetY) + float64(v.PanY)) / v.Zoom
	if ix < 0 || iy < 0 || ix >= float64(w) || iy >= float64(h) {
		return 0, 0, false
	}
	return ix, iy, true
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// ZoomedSize returns the image dimensions at zoom z, truncated to whole pixels.
func ZoomedSize(imageW, imageH int, z float64) (int, int) {
	return int(float64(imageW) * z), int(float64(imageH) * z)
}

// FitOffsets centers a zoomed image that is smaller than the canvas on an axis.
func FitOffsets(imageW, imageH int, z float64, canvasW, canvasH int) (int, int) {
	zw, zh := ZoomedSize(imageW, imageH, z)
	ox, oy := 0, 0
	if zw < canvasW {
		ox = (canvasW - zw) / 2
	}
	if zh < canvasH {
		oy = (canvasH - zh) / 2
	}
	return ox, oy
}
