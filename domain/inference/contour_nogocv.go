//go:build nogocv

package inference

import (
	"image"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/geometry"
)

// traceLargest is the OpenCV-free tracer used in nogocv builds.
func traceLargest(mask *image.Gray, epsilon float64) []annotation.Point {
	labels, best, start := largestComponent(mask)
	if best == 0 {
		return nil
	}
	ring := traceBoundary(mask.Bounds(), labels, best, start)
	if len(ring) < annotation.MinPolygonVertices {
		return nil
	}
	return simplifyRing(ring, epsilon)
}

// Moore neighbourhood in clockwise order (y grows downwards), starting west.
var moore = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

func mooreIndex(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return 0
}

// largestComponent labels 8-connected foreground regions. It returns the label
// grid, the label of the largest region (0 when the mask is empty) and the
// raster-first pixel of that region.
func largestComponent(mask *image.Gray) ([]int, int, image.Point) {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	labels := make([]int, w*h)
	var (
		next, best, bestSize int
		bestStart            image.Point
		queue                []image.Point
	)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if labels[y*w+x] != 0 || mask.GrayAt(b.Min.X+x, b.Min.Y+y).Y == 0 {
				continue
			}
			next++
			size := 0
			labels[y*w+x] = next
			queue = append(queue[:0], image.Pt(x, y))
			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				size++
				for _, d := range moore {
					n := p.Add(d)
					if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h || labels[n.Y*w+n.X] != 0 {
						continue
					}
					if mask.GrayAt(b.Min.X+n.X, b.Min.Y+n.Y).Y == 0 {
						continue
					}
					labels[n.Y*w+n.X] = next
					queue = append(queue, n)
				}
			}
			if size > bestSize {
				best, bestSize, bestStart = next, size, image.Pt(x, y)
			}
		}
	}
	return labels, best, bestStart
}

// traceBoundary follows the region boundary clockwise with Moore-neighbour
// tracing from its raster-first pixel, whose west neighbour is background.
func traceBoundary(bounds image.Rectangle, labels []int, label int, start image.Point) []annotation.Point {
	w, h := bounds.Dx(), bounds.Dy()
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == label
	}
	ring := []annotation.Point{{X: float64(start.X + bounds.Min.X), Y: float64(start.Y + bounds.Min.Y)}}
	cur, dir := start, 0
	limit := 4*len(labels) + 8
	for step := 0; step < limit; step++ {
		moved := false
		for k := 1; k <= 8; k++ {
			d := (dir + k) % 8
			n := cur.Add(moore[d])
			if !inside(n) {
				continue
			}
			back := cur.Add(moore[(d+7)%8])
			cur, dir = n, mooreIndex(back.Sub(n))
			moved = true
			break
		}
		if !moved || cur == start {
			break
		}
		ring = append(ring, annotation.Point{X: float64(cur.X + bounds.Min.X), Y: float64(cur.Y + bounds.Min.Y)})
	}
	return ring
}

// simplifyRing applies Douglas-Peucker to a closed ring given without its
// closing duplicate.
func simplifyRing(ring []annotation.Point, epsilon float64) []annotation.Point {
	if len(ring) < 4 || epsilon <= 0 {
		return ring
	}
	closed := append(append([]annotation.Point(nil), ring...), ring[0])
	out := douglasPeucker(closed, epsilon)
	return out[:len(out)-1]
}

func douglasPeucker(pts []annotation.Point, epsilon float64) []annotation.Point {
	if len(pts) < 3 {
		return append([]annotation.Point(nil), pts...)
	}
	a, b := vec(pts[0]), vec(pts[len(pts)-1])
	idx, dmax := 0, 0.0
	for i := 1; i < len(pts)-1; i++ {
		if d := geometry.PointSegmentDistance(vec(pts[i]), a, b); d > dmax {
			idx, dmax = i, d
		}
	}
	if dmax <= epsilon {
		return []annotation.Point{pts[0], pts[len(pts)-1]}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	out := append([]annotation.Point(nil), left[:len(left)-1]...)
	return append(out, right...)
}

func vec(p annotation.Point) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
