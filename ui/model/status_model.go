package model

import (
	"fmt"

	"github.com/soocke/pixel-label-go/domain/dataset"
)

// StatusSnapshot is what the status bar shows.
type StatusSnapshot struct {
	Image  string
	Index  int // -1 when no image is open
	Total  int
	Counts dataset.Counts
	Status dataset.Status
	Dirty  bool
	Zoom   float64
	Mode   string
	Class  string
}

// ImageText formats the "name (i/n)" part of the status bar.
func (s StatusSnapshot) ImageText() string {
	if s.Index < 0 || s.Total == 0 {
		return "No image"
	}
	mark := ""
	if s.Dirty {
		mark = " *"
	}
	return fmt.Sprintf("%s (%d/%d)%s", s.Image, s.Index+1, s.Total, mark)
}

// CountsText formats the dataset progress counters.
func (s StatusSnapshot) CountsText() string {
	c := s.Counts
	return fmt.Sprintf("Viewed: %d  Labeled: %d  Review Needed: %d  Not Viewed: %d",
		c.Viewed, c.Labeled, c.ReviewNeeded, c.NotViewed)
}

// ToolText formats mode, zoom and class selection.
func (s StatusSnapshot) ToolText() string {
	class := s.Class
	if class == "" {
		class = "<none>"
	}
	return fmt.Sprintf("Mode: %s  Zoom: %.0f%%  Class: %s", s.Mode, s.Zoom*100, class)
}

// StatusModel keeps the last snapshot pushed to the view so presenters only
// redraw the status bar when something changed. Not safe for concurrent use;
// it lives on the UI thread.
type StatusModel struct {
	last  StatusSnapshot
	valid bool
}

// NewStatusModel returns an empty model.
func NewStatusModel() *StatusModel { return &StatusModel{} }

// Update stores s and reports whether it differs from the previous snapshot.
func (m *StatusModel) Update(s StatusSnapshot) bool {
	if m == nil {
		return false
	}
	if m.valid && m.last == s {
		return false
	}
	m.last, m.valid = s, true
	return true
}

// Last returns the most recent snapshot.
func (m *StatusModel) Last() StatusSnapshot {
	if m == nil {
		return StatusSnapshot{Index: -1}
	}
	return m.last
}

// Invalidate forces the next Update to report a change.
func (m *StatusModel) Invalidate() {
	if m != nil {
		m.valid = false
	}
}
