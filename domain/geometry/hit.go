package geometry

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/pixel-label-go/domain/annotation"
)

// VertexRef addresses one vertex of one polygon.
type VertexRef struct {
	Polygon int
	Vertex  int
}

// NearestVertex returns the first vertex, in polygon then vertex order, whose
// view-space position lies within radius of (vx, vy). Distances are compared squared.
func NearestVertex(polys []annotation.Polygon, v ViewState, vx, vy, radius float64) (VertexRef, bool) {
	r2lim := radius * radius
	for pi, p := range polys {
		for vi, pt := range p.Points {
			px, py := ImageToView(pt.X, pt.Y, v)
			dx, dy := px-vx, py-vy
			if dx*dx+dy*dy <= r2lim {
				return VertexRef{Polygon: pi, Vertex: vi}, true
			}
		}
	}
	return VertexRef{}, false
}

// NearEdge reports whether (vx, vy) is within threshold view pixels of any polygon
// edge. Closed polygons include their closing edge.
func NearEdge(polys []annotation.Polygon, v ViewState, vx, vy, threshold float64) bool {
	q := r2.Vec{X: vx, Y: vy}
	for _, p := range polys {
		ring := p.Ring()
		for i := 0; i+1 < len(ring); i++ {
			ax, ay := ImageToView(ring[i].X, ring[i].Y, v)
			bx, by := ImageToView(ring[i+1].X, ring[i+1].Y, v)
			if PointSegmentDistance(q, r2.Vec{X: ax, Y: ay}, r2.Vec{X: bx, Y: by}) <= threshold {
				return true
			}
		}
	}
	return false
}

// PointSegmentDistance returns the distance from p to the segment ab.
func PointSegmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, proj))
}
