package autoannotate

import "github.com/soocke/pixel-label-go/domain/annotation"

// Converted holds the records built from one image's detections.
type Converted struct {
	Boxes    []annotation.BoundingBox
	Polygons []annotation.Polygon
	Kept     []Detection
}

// Empty reports whether nothing survived conversion.
func (c Converted) Empty() bool { return len(c.Boxes) == 0 && len(c.Polygons) == 0 }

// Convert denormalizes detections for an image of w x h pixels. Polygon output
// falls back to a box when a detection has no usable mask.
func Convert(dets []Detection, typ Type, classCount, w, h int) Converted {
	var out Converted
	fw, fh := float64(w), float64(h)
	for _, d := range dets {
		if d.ClassID < 0 || (classCount > 0 && d.ClassID >= classCount) {
			continue
		}
		out.Kept = append(out.Kept, d)
		hasMask := len(d.Polygon) >= annotation.MinPolygonVertices
		if typ == TypeBoxes || typ == TypeBoth || !hasMask {
			out.Boxes = append(out.Boxes, toBox(d, fw, fh))
		}
		if typ != TypeBoxes && hasMask {
			out.Polygons = append(out.Polygons, toPolygon(d, fw, fh))
		}
	}
	return out
}

func toBox(d Detection, w, h float64) annotation.BoundingBox {
	bw, bh := d.Box.W*w, d.Box.H*h
	return annotation.BoundingBox{
		X:       d.Box.CX*w - bw/2,
		Y:       d.Box.CY*h - bh/2,
		W:       bw,
		H:       bh,
		ClassID: d.ClassID,
	}
}

func toPolygon(d Detection, w, h float64) annotation.Polygon {
	pts := make([]annotation.Point, len(d.Polygon))
	for i, p := range d.Polygon {
		pts[i] = annotation.Point{X: p.X * w, Y: p.Y * h}
	}
	return annotation.Polygon{ClassID: d.ClassID, Points: pts, Closed: true}
}

// NeedsReview reports whether any detection falls inside the triage band.
func NeedsReview(dets []Detection, threshold float64) bool {
	limit := threshold * TriageFactor
	for _, d := range dets {
		if d.Confidence < limit {
			return true
		}
	}
	return false
}
