package viewport

import (
	"math"

	"github.com/soocke/pixel-label-go/domain/geometry"
)

// DefaultZoomStep is the factor applied by ZoomIn and divided by ZoomOut.
const DefaultZoomStep = 1.1

// Controller owns the zoom and pan of the canvas and feeds geometry.ViewState to
// the mapper. It remembers the last image and canvas sizes it was given so the
// fit offsets stay consistent between calls. Not safe for concurrent use.
type Controller struct {
	zoom       float64
	panX, panY int
	fitX, fitY int
	imageW     int
	imageH     int
	canvasW    int
	canvasH    int
	step       float64
}

// NewController returns a controller at zoom 1 using step for ZoomIn/ZoomOut.
func NewController(step float64) *Controller {
	if step <= 1 {
		step = DefaultZoomStep
	}
	return &Controller{zoom: 1, step: step}
}

// State returns the current view parameters.
func (c *Controller) State() geometry.ViewState {
	return geometry.ViewState{Zoom: c.zoom, PanX: c.panX, PanY: c.panY, FitOffsetX: c.fitX, FitOffsetY: c.fitY}
}

// Zoom returns the current zoom level.
func (c *Controller) Zoom() float64 { return c.zoom }

// ImageSize returns the dimensions of the image last fitted.
func (c *Controller) ImageSize() (int, int) { return c.imageW, c.imageH }

// CanvasSize returns the last known canvas dimensions.
func (c *Controller) CanvasSize() (int, int) { return c.canvasW, c.canvasH }

// FitToCanvas sets the zoom so the whole image fits the canvas without upscaling
// and zeroes the pan.
func (c *Controller) FitToCanvas(imageW, imageH, canvasW, canvasH int) {
	c.imageW, c.imageH = imageW, imageH
	c.canvasW, c.canvasH = canvasW, canvasH
	z := 1.0
	if imageW > 0 && imageH > 0 && canvasW > 0 && canvasH > 0 {
		z = math.Min(float64(canvasW)/float64(imageW), float64(canvasH)/float64(imageH))
		z = math.Min(z, 1.0)
	}
	c.zoom = geometry.ClampZoom(z)
	c.panX, c.panY = 0, 0
	c.refreshOffsets()
}

// ZoomAt multiplies the zoom by factor. Zooming back out to 1 or below from above 1
// resets the pan.
func (c *Controller) ZoomAt(factor float64, canvasW, canvasH int) {
	if factor <= 0 {
		return
	}
	c.canvasW, c.canvasH = canvasW, canvasH
	prev := c.zoom
	c.zoom = geometry.ClampZoom(c.zoom * factor)
	if c.zoom <= 1.0 && prev > 1.0 {
		c.panX, c.panY = 0, 0
	}
	c.panX, c.panY = c.clampPan(c.panX, c.panY)
	c.refreshOffsets()
}

// ZoomIn zooms in by one step on the last known canvas.
func (c *Controller) ZoomIn() { c.ZoomAt(c.step, c.canvasW, c.canvasH) }

// ZoomOut zooms out by one step on the last known canvas.
func (c *Controller) ZoomOut() { c.ZoomAt(1/c.step, c.canvasW, c.canvasH) }

// Pan shifts the view by (dx, dy) view pixels, clamped so the visible crop stays
// inside the zoomed image. It is disallowed at zoom 1 or below and reports
// whether the pan changed.
func (c *Controller) Pan(dx, dy, imageW, imageH, canvasW, canvasH int) bool {
	if c.zoom <= 1.0 {
		return false
	}
	c.imageW, c.imageH = imageW, imageH
	c.canvasW, c.canvasH = canvasW, canvasH
	nx, ny := c.clampPan(c.panX+dx, c.panY+dy)
	changed := nx != c.panX || ny != c.panY
	c.panX, c.panY = nx, ny
	return changed
}

// PanBy pans using the stored image and canvas sizes.
func (c *Controller) PanBy(dx, dy int) bool {
	return c.Pan(dx, dy, c.imageW, c.imageH, c.canvasW, c.canvasH)
}

// Resize records a new canvas size and re-clamps the pan.
func (c *Controller) Resize(canvasW, canvasH int) {
	c.canvasW, c.canvasH = canvasW, canvasH
	c.panX, c.panY = c.clampPan(c.panX, c.panY)
	c.refreshOffsets()
}

// Visible returns the image-space rectangle [x0,x1)x[y0,y1) shown on the canvas.
func (c *Controller) Visible() (x0, y0, x1, y1 float64) {
	if c.zoom <= 0 {
		return 0, 0, 0, 0
	}
	x0 = math.Max(0, float64(c.panX-c.fitX)/c.zoom)
	y0 = math.Max(0, float64(c.panY-c.fitY)/c.zoom)
	x1 = math.Min(float64(c.imageW), float64(c.canvasW-c.fitX+c.panX)/c.zoom)
	y1 = math.Min(float64(c.imageH), float64(c.canvasH-c.fitY+c.panY)/c.zoom)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return x0, y0, x1, y1
}

func (c *Controller) clampPan(px, py int) (int, int) {
	zw, zh := geometry.ZoomedSize(c.imageW, c.imageH, c.zoom)
	return clampAxis(px, zw-c.canvasW), clampAxis(py, zh-c.canvasH)
}

func clampAxis(v, limit int) int {
	if limit < 0 {
		limit = 0
	}
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

func (c *Controller) refreshOffsets() {
	c.fitX, c.fitY = geometry.FitOffsets(c.imageW, c.imageH, c.zoom, c.canvasW, c.canvasH)
}
