package history

import "github.com/soocke/pixel-label-go/domain/annotation"

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 20

// Entry is an immutable snapshot of one image's annotations.
type Entry struct {
	boxes      []annotation.BoundingBox
	polygons   []annotation.Polygon
	imageIndex int
}

// NewEntry deep copies the given annotations into an entry for imageIndex.
func NewEntry(imageIndex int, boxes []annotation.BoundingBox, polygons []annotation.Polygon) Entry {
	s := annotation.NewStore(boxes, polygons)
	return Entry{boxes: s.Boxes(), polygons: s.Polygons(), imageIndex: imageIndex}
}

// Snapshot captures the current contents of store.
func Snapshot(imageIndex int, store *annotation.Store) Entry {
	return Entry{boxes: store.Boxes(), polygons: store.Polygons(), imageIndex: imageIndex}
}

// ImageIndex is the image the snapshot belongs to.
func (e Entry) ImageIndex() int { return e.imageIndex }

// Boxes returns a copy of the snapshot boxes.
func (e Entry) Boxes() []annotation.BoundingBox {
	return append([]annotation.BoundingBox(nil), e.boxes...)
}

// Polygons returns a deep copy of the snapshot polygons.
func (e Entry) Polygons() []annotation.Polygon {
	return annotation.NewStore(nil, e.polygons).Polygons()
}

// ApplyTo replaces the contents of store with the snapshot.
func (e Entry) ApplyTo(store *annotation.Store) {
	store.Replace(e.boxes, e.polygons)
}

// Stack is a bounded linear undo/redo log with a cursor pointing at the entry
// that reflects the current state. Pushing after an undo discards the entries
// beyond the cursor.
type Stack struct {
	entries []Entry
	cursor  int
	limit   int
}

// NewStack returns an empty stack holding at most limit entries.
func NewStack(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{cursor: -1, limit: limit}
}

// Push records e as the newest state.
func (s *Stack) Push(e Entry) {
	if s.cursor < len(s.entries)-1 {
		s.entries = s.entries[:s.cursor+1]
	}
	s.entries = append(s.entries, e)
	s.cursor++
	if len(s.entries) > s.limit {
		s.entries = append(s.entries[:0:0], s.entries[1:]...)
		s.cursor--
	}
}

// Undo moves the cursor back and returns the entry now current.
func (s *Stack) Undo() (Entry, bool) {
	if s.cursor <= 0 {
		return Entry{}, false
	}
	s.cursor--
	return s.entries[s.cursor], true
}

// Redo moves the cursor forward and returns the entry now current.
func (s *Stack) Redo() (Entry, bool) {
	if s.cursor >= len(s.entries)-1 {
		return Entry{}, false
	}
	s.cursor++
	return s.entries[s.cursor], true
}

// Current returns the entry at the cursor.
func (s *Stack) Current() (Entry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[s.cursor], true
}

func (s *Stack) CanUndo() bool { return s.cursor > 0 }
func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries)-1 }
func (s *Stack) Len() int      { return len(s.entries) }
func (s *Stack) Cursor() int   { return s.cursor }
func (s *Stack) Limit() int    { return s.limit }

// Reset drops every entry.
func (s *Stack) Reset() {
	s.entries = nil
	s.cursor = -1
}
