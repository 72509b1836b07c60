package annotation

import "testing"

func square() Polygon {
	return Polygon{ClassID: 1, Closed: true, Points: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}
}

func TestOutOfRangeMutationsAreNoops(t *testing.T) {
	s := NewStore([]BoundingBox{{X: 1, Y: 1, W: 2, H: 2}}, []Polygon{square()})
	if s.DeleteBox(5) || s.DeleteBox(-1) {
		t.Fatalf("delete box out of range reported success")
	}
	if s.DeletePolygon(3) {
		t.Fatalf("delete polygon out of range reported success")
	}
	if got := s.DeleteVertex(0, 9); got != VertexNoop {
		t.Fatalf("delete vertex out of range: got=%v", got)
	}
	if got := s.DeleteVertex(7, 0); got != VertexNoop {
		t.Fatalf("delete vertex on missing polygon: got=%v", got)
	}
	if s.MoveVertex(0, 12, Point{}) {
		t.Fatalf("move vertex out of range reported success")
	}
	if s.BoxCount() != 1 || s.PolygonCount() != 1 {
		t.Fatalf("store changed: boxes=%d polygons=%d", s.BoxCount(), s.PolygonCount())
	}
}

func TestDeleteVertexAboveMinimum(t *testing.T) {
	s := NewStore(nil, []Polygon{square()})
	if got := s.DeleteVertex(0, 1); got != VertexRemoved {
		t.Fatalf("expected vertex removed, got=%v", got)
	}
	p, _ := s.Polygon(0)
	if len(p.Points) != 3 || p.Points[1] != (Point{10, 10}) {
		t.Fatalf("unexpected points after delete: %v", p.Points)
	}
}

func TestDeleteVertexAtMinimumRequiresPolygonRemoval(t *testing.T) {
	tri := Polygon{Closed: true, Points: []Point{{0, 0}, {5, 0}, {0, 5}}}
	s := NewStore(nil, []Polygon{tri})
	if got := s.DeleteVertex(0, 0); got != PolygonRemovalRequired {
		t.Fatalf("expected removal required, got=%v", got)
	}
	p, _ := s.Polygon(0)
	if len(p.Points) != 3 {
		t.Fatalf("store mutated before confirmation: %v", p.Points)
	}
}

func TestRingMaterializesClosingVertex(t *testing.T) {
	p := square()
	ring := p.Ring()
	if len(ring) != 5 || ring[0] != ring[4] {
		t.Fatalf("closed ring mismatch: %v", ring)
	}
	p.Closed = false
	if got := len(p.Ring()); got != 4 {
		t.Fatalf("open ring len=%d want 4", got)
	}
}

func TestMovingFirstVertexKeepsRingClosed(t *testing.T) {
	s := NewStore(nil, []Polygon{square()})
	s.MoveVertex(0, 0, Point{-3, -4})
	p, _ := s.Polygon(0)
	ring := p.Ring()
	if ring[0] != ring[len(ring)-1] || ring[0] != (Point{-3, -4}) {
		t.Fatalf("ring endpoints diverged: first=%v last=%v", ring[0], ring[len(ring)-1])
	}
}

func TestReassignClassesOnRemoval(t *testing.T) {
	s := NewStore(
		[]BoundingBox{{ClassID: 0}, {ClassID: 2}, {ClassID: 3}},
		[]Polygon{{ClassID: 3, Points: []Point{{0, 0}, {1, 0}, {0, 1}}}},
	)
	changed := s.ReassignClassesOnRemoval(2)
	if changed != 2 {
		t.Fatalf("changed=%d want 2", changed)
	}
	boxes := s.Boxes()
	if boxes[1].ClassID != 2 || boxes[2].ClassID != 0 {
		t.Fatalf("unexpected classes: %+v", boxes)
	}
	p, _ := s.Polygon(0)
	if p.ClassID != 0 {
		t.Fatalf("polygon class not reset: %d", p.ClassID)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := NewStore(nil, []Polygon{square()})
	polys := s.Polygons()
	polys[0].Points[0] = Point{99, 99}
	p, _ := s.Polygon(0)
	if p.Points[0] != (Point{0, 0}) {
		t.Fatalf("store aliased caller slice: %v", p.Points[0])
	}
}

func TestNormalizedBox(t *testing.T) {
	b := BoundingBox{X: 50, Y: 80, W: -40, H: -70}.Normalized()
	if b.X != 10 || b.Y != 10 || b.W != 40 || b.H != 70 {
		t.Fatalf("normalized=%+v", b)
	}
}
