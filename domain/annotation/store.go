package annotation

// Store holds the boxes and polygons of the image currently open in the editor.
// It is owned by the UI thread and performs no I/O. Index based mutations are
// bounds checked and silently ignore out-of-range indices.
type Store struct {
	boxes    []BoundingBox
	polygons []Polygon
}

// NewStore returns a store seeded with copies of the given annotations.
func NewStore(boxes []BoundingBox, polygons []Polygon) *Store {
	s := &Store{}
	s.Replace(boxes, polygons)
	return s
}

// Boxes returns a copy of the boxes.
func (s *Store) Boxes() []BoundingBox {
	if s == nil {
		return nil
	}
	return append([]BoundingBox(nil), s.boxes...)
}

// Polygons returns a deep copy of the polygons.
func (s *Store) Polygons() []Polygon {
	if s == nil {
		return nil
	}
	return clonePolygons(s.polygons)
}

// Box returns the box at i.
func (s *Store) Box(i int) (BoundingBox, bool) {
	if s == nil || i < 0 || i >= len(s.boxes) {
		return BoundingBox{}, false
	}
	return s.boxes[i], true
}

// Polygon returns a copy of the polygon at i.
func (s *Store) Polygon(i int) (Polygon, bool) {
	if s == nil || i < 0 || i >= len(s.polygons) {
		return Polygon{}, false
	}
	return s.polygons[i].Clone(), true
}

// BoxCount returns the number of boxes.
func (s *Store) BoxCount() int {
	if s == nil {
		return 0
	}
	return len(s.boxes)
}

// PolygonCount returns the number of polygons.
func (s *Store) PolygonCount() int {
	if s == nil {
		return 0
	}
	return len(s.polygons)
}

// Empty reports whether the store holds no annotations.
func (s *Store) Empty() bool { return s.BoxCount() == 0 && s.PolygonCount() == 0 }

// AddBox appends b and returns its index.
func (s *Store) AddBox(b BoundingBox) int {
	s.boxes = append(s.boxes, b)
	return len(s.boxes) - 1
}

// AddPolygon appends a copy of p and returns its index.
func (s *Store) AddPolygon(p Polygon) int {
	s.polygons = append(s.polygons, p.Clone())
	return len(s.polygons) - 1
}

// SetBox overwrites the box at i.
func (s *Store) SetBox(i int, b BoundingBox) bool {
	if i < 0 || i >= len(s.boxes) {
		return false
	}
	s.boxes[i] = b
	return true
}

// DeleteBox removes the box at i.
func (s *Store) DeleteBox(i int) bool {
	if i < 0 || i >= len(s.boxes) {
		return false
	}
	s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
	return true
}

// DeletePolygon removes the polygon at i.
func (s *Store) DeletePolygon(i int) bool {
	if i < 0 || i >= len(s.polygons) {
		return false
	}
	s.polygons = append(s.polygons[:i], s.polygons[i+1:]...)
	return true
}

// MoveVertex sets the position of vertex vi of polygon pi.
func (s *Store) MoveVertex(pi, vi int, p Point) bool {
	if pi < 0 || pi >= len(s.polygons) {
		return false
	}
	pts := s.polygons[pi].Points
	if vi < 0 || vi >= len(pts) {
		return false
	}
	pts[vi] = p
	return true
}

// DeleteVertex removes vertex vi of polygon pi when the polygon keeps at least
// MinPolygonVertices afterwards. At the minimum it leaves the store untouched and
// returns PolygonRemovalRequired so the caller can confirm removing the whole polygon.
func (s *Store) DeleteVertex(pi, vi int) VertexDeletion {
	if pi < 0 || pi >= len(s.polygons) {
		return VertexNoop
	}
	poly := &s.polygons[pi]
	if vi < 0 || vi >= len(poly.Points) {
		return VertexNoop
	}
	if len(poly.Points) <= MinPolygonVertices {
		return PolygonRemovalRequired
	}
	poly.Points = append(poly.Points[:vi], poly.Points[vi+1:]...)
	return VertexRemoved
}

// ReassignClassesOnRemoval resets every class id above maxValidIndex to 0 and
// returns how many annotations changed. Ids at or below maxValidIndex are kept
// as they are, even when they pointed at the removed class.
func (s *Store) ReassignClassesOnRemoval(maxValidIndex int) int {
	changed := 0
	for i := range s.boxes {
		if s.boxes[i].ClassID > maxValidIndex {
			s.boxes[i].ClassID = 0
			changed++
		}
	}
	for i := range s.polygons {
		if s.polygons[i].ClassID > maxValidIndex {
			s.polygons[i].ClassID = 0
			changed++
		}
	}
	return changed
}

// PasteBoxes appends copies of boxes and returns how many were added.
func (s *Store) PasteBoxes(boxes []BoundingBox) int {
	s.boxes = append(s.boxes, boxes...)
	return len(boxes)
}

// Replace swaps the store contents wholesale.
func (s *Store) Replace(boxes []BoundingBox, polygons []Polygon) {
	s.boxes = append([]BoundingBox(nil), boxes...)
	s.polygons = clonePolygons(polygons)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.boxes = nil
	s.polygons = nil
}

func clonePolygons(in []Polygon) []Polygon {
	if in == nil {
		return nil
	}
	out := make([]Polygon, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
