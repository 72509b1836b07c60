//go:build !nogocv

package inference

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/soocke/pixel-label-go/domain/annotation"
)

// traceLargest finds external contours with OpenCV, keeps the one with the
// largest area and approximates it with ApproxPolyDP.
func traceLargest(mask *image.Gray, epsilon float64) []annotation.Point {
	b := mask.Bounds()
	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, packedGray(mask))
	if err != nil {
		return nil
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return nil
	}

	best, bestArea := -1, -1.0
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if c.Size() < annotation.MinPolygonVertices {
			continue
		}
		if area := gocv.ContourArea(c); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return nil
	}

	contour := contours.At(best)
	pts := contour.ToPoints()
	if epsilon > 0 {
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		pts = approx.ToPoints()
		approx.Close()
	}
	ring := make([]annotation.Point, len(pts))
	for i, p := range pts {
		ring[i] = annotation.Point{X: float64(p.X + b.Min.X), Y: float64(p.Y + b.Min.Y)}
	}
	return ring
}

// packedGray returns the mask pixels as a tightly packed row-major slice.
func packedGray(m *image.Gray) []byte {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	if m.Stride == w && len(m.Pix) == w*h {
		return m.Pix
	}
	out := make([]byte, 0, w*h)
	for y := 0; y < h; y++ {
		off := m.PixOffset(b.Min.X, b.Min.Y+y)
		out = append(out, m.Pix[off:off+w]...)
	}
	return out
}
