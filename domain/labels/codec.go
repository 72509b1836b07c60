// Package labels reads and writes the per-image label text format: one record per
// line, coordinates normalized to the image size.
//
//	box:     class cx cy w h
//	polygon: class x1 y1 x2 y2 ... xn yn   (n >= 3)
//
// A polygon whose last point repeats its first is a closed ring; the repeat exists
// only in the file and is dropped on read.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/soocke/pixel-label-go/domain/annotation"
)

// Document is the decoded content of one label file.
type Document struct {
	Boxes    []annotation.BoundingBox
	Polygons []annotation.Polygon
	// Skipped counts malformed lines that were ignored.
	Skipped int
}

// Read decodes records for an image of imgW x imgH pixels. Malformed lines are
// skipped individually; only a failing reader returns an error.
func Read(r io.Reader, imgW, imgH int) (Document, error) {
	var doc Document
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		box, poly, kind := parseRecord(fields, float64(imgW), float64(imgH))
		switch kind {
		case recordBox:
			doc.Boxes = append(doc.Boxes, box)
		case recordPolygon:
			doc.Polygons = append(doc.Polygons, poly)
		default:
			doc.Skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return doc, fmt.Errorf("read labels: %w", err)
	}
	return doc, nil
}

type recordKind int

const (
	recordMalformed recordKind = iota
	recordBox
	recordPolygon
)

func parseRecord(fields []string, w, h float64) (annotation.BoundingBox, annotation.Polygon, recordKind) {
	cls, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || cls < 0 || math.IsNaN(cls) {
		return annotation.BoundingBox{}, annotation.Polygon{}, recordMalformed
	}
	classID := int(cls)
	vals := make([]float64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return annotation.BoundingBox{}, annotation.Polygon{}, recordMalformed
		}
		vals = append(vals, v)
	}
	n := len(vals)
	switch {
	case n == 4:
		cx, cy, bw, bh := vals[0], vals[1], vals[2], vals[3]
		return annotation.BoundingBox{
			X:       (cx - bw/2) * w,
			Y:       (cy - bh/2) * h,
			W:       bw * w,
			H:       bh * h,
			ClassID: classID,
		}, annotation.Polygon{}, recordBox
	case n >= 6 && n%2 == 0:
		closed := n >= 8 && vals[0] == vals[n-2] && vals[1] == vals[n-1]
		if closed {
			vals = vals[:n-2]
		}
		pts := make([]annotation.Point, 0, len(vals)/2)
		for i := 0; i < len(vals); i += 2 {
			pts = append(pts, annotation.Point{X: vals[i] * w, Y: vals[i+1] * h})
		}
		return annotation.BoundingBox{}, annotation.Polygon{ClassID: classID, Points: pts, Closed: closed}, recordPolygon
	default:
		return annotation.BoundingBox{}, annotation.Polygon{}, recordMalformed
	}
}

// Write encodes boxes then polygons for an image of imgW x imgH pixels. Polygons
// with fewer than three vertices are not written.
func Write(w io.Writer, boxes []annotation.BoundingBox, polygons []annotation.Polygon, imgW, imgH int) error {
	if imgW <= 0 || imgH <= 0 {
		return fmt.Errorf("write labels: invalid image size %dx%d", imgW, imgH)
	}
	fw, fh := float64(imgW), float64(imgH)
	bw := bufio.NewWriter(w)
	for _, b := range boxes {
		b = b.Normalized()
		cx := (b.X + b.W/2) / fw
		cy := (b.Y + b.H/2) / fh
		fmt.Fprintf(bw, "%d %s %s %s %s\n", b.ClassID, num(cx), num(cy), num(b.W/fw), num(b.H/fh))
	}
	for _, p := range polygons {
		if len(p.Points) < annotation.MinPolygonVertices {
			continue
		}
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(p.ClassID))
		for _, pt := range p.Ring() {
			sb.WriteByte(' ')
			sb.WriteString(num(pt.X / fw))
			sb.WriteByte(' ')
			sb.WriteString(num(pt.Y / fh))
		}
		sb.WriteByte('\n')
		bw.WriteString(sb.String())
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
