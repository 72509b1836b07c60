package labels

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/soocke/pixel-label-go/domain/annotation"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestReadClassifiesRecords(t *testing.T) {
	in := strings.Join([]string{
		"2 0.5 0.5 0.25 0.5",            // box
		"0 0 0 0.1 0 0.1 0.2",           // open polygon, 3 points
		"1 0 0 0.5 0 0.5 0.5 0 0.5 0 0", // closed polygon, 4 points + repeat
		"3 0.1 0.2 0.3",                 // malformed: 3 coords
		"4 0.1 0.2 0.3 0.4 0.5",         // malformed: odd count
		"x 0.1 0.2 0.3 0.4",             // malformed: class
		"1 0.1 0.2 nope 0.4",            // malformed: value
		"",                              // blank
	}, "\n")
	doc, err := Read(strings.NewReader(in), 200, 100)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if len(doc.Boxes) != 1 || len(doc.Polygons) != 2 || doc.Skipped != 4 {
		t.Fatalf("boxes=%d polygons=%d skipped=%d", len(doc.Boxes), len(doc.Polygons), doc.Skipped)
	}
	b := doc.Boxes[0]
	if b.ClassID != 2 || !near(b.X, 75) || !near(b.Y, 25) || !near(b.W, 50) || !near(b.H, 50) {
		t.Fatalf("box=%+v", b)
	}
	if doc.Polygons[0].Closed || len(doc.Polygons[0].Points) != 3 {
		t.Fatalf("open polygon=%+v", doc.Polygons[0])
	}
	closed := doc.Polygons[1]
	if !closed.Closed || len(closed.Points) != 4 || closed.ClassID != 1 {
		t.Fatalf("closed polygon=%+v", closed)
	}
	if closed.Points[2] != (annotation.Point{X: 100, Y: 50}) {
		t.Fatalf("closed polygon point=%v", closed.Points[2])
	}
}

func TestWriteMaterializesClosingVertex(t *testing.T) {
	poly := annotation.Polygon{Closed: true, Points: []annotation.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}}
	var buf bytes.Buffer
	if err := Write(&buf, nil, []annotation.Polygon{poly}, 10, 10); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	want := "0 0 0 1 0 1 1 0 1 0 0"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	boxes := []annotation.BoundingBox{{X: 10, Y: 10, W: 40, H: 70, ClassID: 2}, {X: 0, Y: 0, W: 640, H: 480}}
	polys := []annotation.Polygon{
		{ClassID: 1, Closed: true, Points: []annotation.Point{{X: 1, Y: 2}, {X: 300, Y: 4}, {X: 150, Y: 400}}},
		{ClassID: 0, Points: []annotation.Point{{X: 5, Y: 5}, {X: 50, Y: 5}, {X: 50, Y: 50}, {X: 5, Y: 50}}},
		{ClassID: 3, Points: []annotation.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}}, // dropped: below minimum
	}
	var buf bytes.Buffer
	if err := Write(&buf, boxes, polys, 640, 480); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := Read(&buf, 640, 480)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Boxes) != 2 || len(doc.Polygons) != 2 || doc.Skipped != 0 {
		t.Fatalf("boxes=%d polygons=%d skipped=%d", len(doc.Boxes), len(doc.Polygons), doc.Skipped)
	}
	for i, b := range boxes {
		g := doc.Boxes[i]
		if g.ClassID != b.ClassID || !near(g.X, b.X) || !near(g.Y, b.Y) || !near(g.W, b.W) || !near(g.H, b.H) {
			t.Fatalf("box %d: got=%+v want=%+v", i, g, b)
		}
	}
	for i, p := range polys[:2] {
		g := doc.Polygons[i]
		if g.Closed != p.Closed || g.ClassID != p.ClassID || len(g.Points) != len(p.Points) {
			t.Fatalf("polygon %d: got=%+v want=%+v", i, g, p)
		}
		for j := range p.Points {
			if !near(g.Points[j].X, p.Points[j].X) || !near(g.Points[j].Y, p.Points[j].Y) {
				t.Fatalf("polygon %d point %d: got=%v want=%v", i, j, g.Points[j], p.Points[j])
			}
		}
	}
}

func TestWriteRejectsInvalidSize(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, nil, 0, 10); err == nil {
		t.Fatalf("expected error for zero width")
	}
}
