package model

import (
	"testing"

	"github.com/soocke/pixel-label-go/domain/dataset"
)

func TestStatusModel_UpdateOnlyOnChange(t *testing.T) {
	m := NewStatusModel()
	s := StatusSnapshot{Image: "a.png", Index: 0, Total: 3, Zoom: 1, Mode: "box"}
	if !m.Update(s) {
		t.Fatalf("first update should report a change")
	}
	if m.Update(s) {
		t.Fatalf("identical snapshot reported as change")
	}
	s.Dirty = true
	if !m.Update(s) {
		t.Fatalf("dirty flag change not reported")
	}
	m.Invalidate()
	if !m.Update(s) {
		t.Fatalf("invalidate should force a change")
	}
}

func TestStatusSnapshot_Text(t *testing.T) {
	s := StatusSnapshot{
		Image:  "cars/a.png",
		Index:  1,
		Total:  4,
		Dirty:  true,
		Counts: dataset.Counts{Viewed: 3, Labeled: 2, ReviewNeeded: 1, NotViewed: 1},
		Zoom:   1.5,
		Mode:   "polygon",
	}
	if got := s.ImageText(); got != "cars/a.png (2/4) *" {
		t.Fatalf("image text=%q", got)
	}
	if got := s.CountsText(); got != "Viewed: 3  Labeled: 2  Review Needed: 1  Not Viewed: 1" {
		t.Fatalf("counts text=%q", got)
	}
	if got := s.ToolText(); got != "Mode: polygon  Zoom: 150%  Class: <none>" {
		t.Fatalf("tool text=%q", got)
	}
	if got := (StatusSnapshot{Index: -1}).ImageText(); got != "No image" {
		t.Fatalf("empty text=%q", got)
	}
}
