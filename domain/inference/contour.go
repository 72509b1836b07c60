package inference

import (
	"image"

	"github.com/soocke/pixel-label-go/domain/annotation"
)

// MaskPolygon traces the outer boundary of the largest foreground region of
// mask and simplifies it with tolerance epsilon (pixels). The ring runs
// clockwise on screen from its top-left-most vertex. It returns nil when the
// region is too small to form a polygon.
func MaskPolygon(mask *image.Gray, epsilon float64) []annotation.Point {
	if mask == nil || mask.Bounds().Empty() {
		return nil
	}
	ring := traceLargest(mask, epsilon)
	if len(ring) < annotation.MinPolygonVertices {
		return nil
	}
	return normalizeRing(ring)
}

// normalizeRing orients ring clockwise in image coordinates (y down) and
// rotates it to start at the raster-first vertex.
func normalizeRing(ring []annotation.Point) []annotation.Point {
	n := len(ring)
	var area float64
	first := 0
	for i, p := range ring {
		q := ring[(i+1)%n]
		area += p.X*q.Y - q.X*p.Y
		if f := ring[first]; p.Y < f.Y || (p.Y == f.Y && p.X < f.X) {
			first = i
		}
	}
	out := make([]annotation.Point, 0, n)
	if area >= 0 {
		for i := 0; i < n; i++ {
			out = append(out, ring[(first+i)%n])
		}
		return out
	}
	for i := 0; i < n; i++ {
		out = append(out, ring[(first-i+n)%n])
	}
	return out
}
