package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/up-zero/gotool/imageutil"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/geometry"
)

// Scene is everything the canvas shows for one frame.
type Scene struct {
	Image   image.Image
	View    geometry.ViewState
	CanvasW int
	CanvasH int

	Boxes    []annotation.BoundingBox
	Polygons []annotation.Polygon

	// Drawing holds the in-progress polygon in image space; Pointer is the last
	// pointer position in view space and closes the rubber band.
	Drawing    []annotation.Point
	Pointer    annotation.Point
	HasPointer bool

	Hover    geometry.VertexRef
	HasHover bool

	ClassNames []string
}

// Renderer rasterizes a Scene onto an RGBA canvas.
type Renderer struct {
	LineWidth    int
	VertexRadius int
	HoverRadius  int
	Captions     bool
	face         font.Face
}

// NewRenderer returns a renderer with the default stroke sizes.
func NewRenderer() *Renderer {
	return &Renderer{LineWidth: 2, VertexRadius: 3, HoverRadius: 6, Captions: true, face: basicfont.Face7x13}
}

// Render draws the visible part of the image then the annotation overlay.
// The frame may come from a pool; pass it to RecycleFrame when done with it.
func (r *Renderer) Render(s Scene) *image.RGBA {
	w, h := max(1, s.CanvasW), max(1, s.CanvasH)
	dst := acquireFrame(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(ColorCanvas), image.Point{}, draw.Src)
	if s.Image != nil {
		r.drawImage(dst, s)
	}
	for _, b := range s.Boxes {
		r.drawBox(dst, s, b)
	}
	for _, p := range s.Polygons {
		r.drawPolygon(dst, s, p)
	}
	r.drawInProgress(dst, s)
	if s.HasHover && s.Hover.Polygon >= 0 && s.Hover.Polygon < len(s.Polygons) {
		pts := s.Polygons[s.Hover.Polygon].Points
		if s.Hover.Vertex >= 0 && s.Hover.Vertex < len(pts) {
			imageutil.DrawFilledCircle(dst, toView(pts[s.Hover.Vertex], s.View), r.HoverRadius, ColorHover)
		}
	}
	return dst
}

func (r *Renderer) drawImage(dst *image.RGBA, s Scene) {
	ib := s.Image.Bounds()
	region := VisibleRegion(ib.Dx(), ib.Dy(), s.View, s.CanvasW, s.CanvasH)
	if region.Empty() {
		return
	}
	target := RegionOnCanvas(region, s.View)
	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if s.View.Zoom < 1 {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(dst, target, s.Image, region.Add(ib.Min), xdraw.Src, nil)
}

func (r *Renderer) drawBox(dst *image.RGBA, s Scene, b annotation.BoundingBox) {
	b = b.Normalized()
	rect := image.Rectangle{
		Min: toView(annotation.Point{X: b.X, Y: b.Y}, s.View),
		Max: toView(annotation.Point{X: b.X + b.W, Y: b.Y + b.H}, s.View),
	}
	if !rect.Overlaps(dst.Bounds()) {
		return
	}
	c := ClassColor(b.ClassID)
	imageutil.DrawThickRectOutline(dst, rect, c, r.LineWidth)
	r.caption(dst, className(s.ClassNames, b.ClassID), rect.Min, c)
}

func (r *Renderer) drawPolygon(dst *image.RGBA, s Scene, p annotation.Polygon) {
	if len(p.Points) == 0 {
		return
	}
	c := ClassColor(p.ClassID)
	pts := make([]image.Point, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = toView(pt, s.View)
	}
	if p.Closed && len(pts) >= annotation.MinPolygonVertices {
		imageutil.DrawThickPolygonOutline(dst, pts, r.LineWidth, c)
	} else {
		for i := 0; i+1 < len(pts); i++ {
			imageutil.DrawThickLine(dst, pts[i], pts[i+1], r.LineWidth, c)
		}
	}
	for _, pt := range pts {
		imageutil.DrawFilledCircle(dst, pt, r.VertexRadius, c)
	}
	top := pts[0]
	for _, pt := range pts[1:] {
		if pt.Y < top.Y {
			top = pt
		}
	}
	r.caption(dst, className(s.ClassNames, p.ClassID), top, c)
}

func (r *Renderer) drawInProgress(dst *image.RGBA, s Scene) {
	if len(s.Drawing) == 0 {
		return
	}
	pts := make([]image.Point, len(s.Drawing))
	for i, pt := range s.Drawing {
		pts[i] = toView(pt, s.View)
	}
	for i := 0; i+1 < len(pts); i++ {
		imageutil.DrawThickLine(dst, pts[i], pts[i+1], r.LineWidth, ColorDrawing)
	}
	if s.HasPointer {
		cursor := image.Pt(round(s.Pointer.X), round(s.Pointer.Y))
		imageutil.DrawThickLine(dst, pts[len(pts)-1], cursor, 1, ColorDrawing)
	}
	for _, pt := range pts {
		imageutil.DrawFilledCircle(dst, pt, r.VertexRadius, ColorDrawing)
	}
}

// caption draws a filled name tag whose bottom-left corner sits at anchor.
func (r *Renderer) caption(dst *image.RGBA, text string, anchor image.Point, bg color.RGBA) {
	if !r.Captions || text == "" || r.face == nil {
		return
	}
	m := r.face.Metrics()
	width := font.MeasureString(r.face, text).Ceil() + 4
	height := (m.Ascent + m.Descent).Ceil() + 2
	top := anchor.Y - height
	if top < 0 {
		top = anchor.Y
	}
	tag := image.Rect(anchor.X, top, anchor.X+width, top+height)
	draw.Draw(dst, tag, image.NewUniform(bg), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(ColorCaption), Face: r.face,
		Dot: fixed.P(tag.Min.X+2, tag.Min.Y+1+m.Ascent.Ceil())}
	d.DrawString(text)
}

func className(names []string, id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return ""
}

func toView(p annotation.Point, v geometry.ViewState) image.Point {
	x, y := geometry.ImageToView(p.X, p.Y, v)
	return image.Pt(round(x), round(y))
}
