package annotation

// Point is a location in image pixel space, origin top-left.
type Point struct {
	X float64
	Y float64
}

// BoundingBox is an axis-aligned box in image pixels; X/Y is the top-left corner.
type BoundingBox struct {
	X       float64
	Y       float64
	W       float64
	H       float64
	ClassID int
}

// Normalized returns the box with a non-negative width and height.
func (b BoundingBox) Normalized() BoundingBox {
	if b.W < 0 {
		b.X += b.W
		b.W = -b.W
	}
	if b.H < 0 {
		b.Y += b.H
		b.H = -b.H
	}
	return b
}

// Polygon is an open ring of vertices. Closed marks a ring that is persisted with
// its first vertex repeated at the end; the repeat never lives in Points.
type Polygon struct {
	ClassID int
	Points  []Point
	Closed  bool
}

// Ring returns the vertices as persisted: a closed polygon gets its first vertex
// appended once more.
func (p Polygon) Ring() []Point {
	out := make([]Point, 0, len(p.Points)+1)
	out = append(out, p.Points...)
	if p.Closed && len(p.Points) > 0 {
		out = append(out, p.Points[0])
	}
	return out
}

// Clone returns a deep copy.
func (p Polygon) Clone() Polygon {
	cp := p
	cp.Points = append([]Point(nil), p.Points...)
	return cp
}

// Bounds returns the axis-aligned box enclosing the polygon.
func (p Polygon) Bounds() BoundingBox {
	if len(p.Points) == 0 {
		return BoundingBox{ClassID: p.ClassID}
	}
	minX, minY := p.Points[0].X, p.Points[0].Y
	maxX, maxY := minX, minY
	for _, pt := range p.Points[1:] {
		minX = min(minX, pt.X)
		minY = min(minY, pt.Y)
		maxX = max(maxX, pt.X)
		maxY = max(maxY, pt.Y)
	}
	return BoundingBox{X: minX, Y: minY, W: maxX - minX, H: maxY - minY, ClassID: p.ClassID}
}

// VertexDeletion reports what DeleteVertex did.
type VertexDeletion int

const (
	VertexNoop             VertexDeletion = iota // index out of range
	VertexRemoved                                // vertex removed, polygon still valid
	PolygonRemovalRequired                       // polygon at minimum size; caller must confirm and delete it
)

func (v VertexDeletion) String() string {
	switch v {
	case VertexNoop:
		return "noop"
	case VertexRemoved:
		return "vertex_removed"
	case PolygonRemovalRequired:
		return "polygon_removal_required"
	default:
		return "unknown"
	}
}

// MinPolygonVertices is the smallest vertex count of a finalized polygon.
const MinPolygonVertices = 3
