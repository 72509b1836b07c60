package inference

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/autoannotate"
)

// letterbox records how an image was scaled into the square model input. The
// image is anchored at the top-left corner of the input.
type letterbox struct {
	origW, origH int
	scale        float32
}

// candidate is one anchor that cleared the confidence threshold.
type candidate struct {
	box     [4]float32 // x1, y1, x2, y2 in model input pixels
	origBox image.Rectangle
	score   float32
	classID int
	coeffs  []float32
}

// parseCandidates reads a channel-major YOLO head of shape [channels, anchors]
// laid out as cx, cy, w, h, numClasses scores and numCoeffs mask coefficients.
func parseCandidates(data []float32, channels, anchors, numClasses, numCoeffs int, threshold float32, lb letterbox) []candidate {
	if channels != 4+numClasses+numCoeffs || len(data) < channels*anchors || lb.scale <= 0 {
		return nil
	}
	var cands []candidate
	for i := 0; i < anchors; i++ {
		best := float32(0)
		classID := -1
		for c := 0; c < numClasses; c++ {
			if s := data[(4+c)*anchors+i]; s > best {
				best, classID = s, c
			}
		}
		if classID < 0 || best < threshold {
			continue
		}
		cx, cy := data[i], data[anchors+i]
		w, h := data[2*anchors+i], data[3*anchors+i]
		x1, y1, x2, y2 := cx-w/2, cy-h/2, cx+w/2, cy+h/2
		var coeffs []float32
		if numCoeffs > 0 {
			coeffs = make([]float32, numCoeffs)
			for j := range coeffs {
				coeffs[j] = data[(4+numClasses+j)*anchors+i]
			}
		}
		cands = append(cands, candidate{
			box: [4]float32{x1, y1, x2, y2},
			origBox: image.Rect(
				max(0, int(x1/lb.scale)),
				max(0, int(y1/lb.scale)),
				min(lb.origW, int(x2/lb.scale)),
				min(lb.origH, int(y2/lb.scale)),
			),
			score:   best,
			classID: classID,
			coeffs:  coeffs,
		})
	}
	return cands
}

// nms keeps the highest scoring candidates, suppressing overlaps of the same
// class above iouThresh. The input is sorted in place by descending score.
func nms(cands []candidate, iouThresh float32) []candidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	suppressed := make([]bool, len(cands))
	var keep []candidate
	for i := range cands {
		if suppressed[i] {
			continue
		}
		keep = append(keep, cands[i])
		for j := i + 1; j < len(cands); j++ {
			if suppressed[j] || cands[j].classID != cands[i].classID {
				continue
			}
			if iou(cands[i].box, cands[j].box) > iouThresh {
				suppressed[j] = true
			}
		}
	}
	return keep
}

func iou(a, b [4]float32) float32 {
	ix1, iy1 := max(a[0], b[0]), max(a[1], b[1])
	ix2, iy2 := min(a[2], b[2]), min(a[3], b[3])
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := (ix2 - ix1) * (iy2 - iy1)
	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func sigmoid(x float32) float32 {
	return 1 / (1 + float32(math.Exp(float64(-x))))
}

// decodeMask evaluates the prototype masks inside the candidate box and returns
// a binary mask at original image resolution.
func decodeMask(c candidate, protos []float32, nc, ph, pw, inputSize int, lb letterbox, threshold float32) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, lb.origW, lb.origH))
	if len(c.coeffs) != nc || pw == 0 || len(protos) < nc*ph*pw {
		return mask
	}
	stride := float32(inputSize) / float32(pw)
	b := c.origBox
	for y := b.Min.Y; y < b.Max.Y; y++ {
		my := int(float32(y) * lb.scale / stride)
		if my < 0 || my >= ph {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			mx := int(float32(x) * lb.scale / stride)
			if mx < 0 || mx >= pw {
				continue
			}
			var sum float32
			for k := 0; k < nc; k++ {
				sum += c.coeffs[k] * protos[k*ph*pw+my*pw+mx]
			}
			if sigmoid(sum) > threshold {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

// toDetection normalizes a candidate to the original image size.
func toDetection(c candidate, lb letterbox) autoannotate.Detection {
	w, h := float64(lb.origW), float64(lb.origH)
	s := float64(lb.scale)
	x1 := clamp01(float64(c.box[0]) / s / w)
	y1 := clamp01(float64(c.box[1]) / s / h)
	x2 := clamp01(float64(c.box[2]) / s / w)
	y2 := clamp01(float64(c.box[3]) / s / h)
	return autoannotate.Detection{
		ClassID:    c.classID,
		Confidence: float64(c.score),
		Box:        autoannotate.NormBox{CX: (x1 + x2) / 2, CY: (y1 + y2) / 2, W: x2 - x1, H: y2 - y1},
	}
}

// normalizePolygon maps pixel points into [0,1].
func normalizePolygon(pts []annotation.Point, w, h int) []annotation.Point {
	out := make([]annotation.Point, len(pts))
	for i, p := range pts {
		out[i] = annotation.Point{X: clamp01(p.X / float64(w)), Y: clamp01(p.Y / float64(h))}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
