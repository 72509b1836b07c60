package view

import (
	"time"

	"github.com/soocke/pixel-label-go/ui/model"
	"github.com/soocke/pixel-label-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatusBar shows the open image, dataset progress, tool state and the job timer.
type StatusBar struct {
	imageLbl  *TLabelWidget
	countsLbl *LabelWidget
	toolLbl   *LabelWidget
	jobLbl    *LabelWidget
	dirty     bool
}

// NewStatusBar lays the labels out in a frame at row of the root grid.
func NewStatusBar(row int) *StatusBar {
	frame := Frame()
	Grid(frame, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	s := &StatusBar{
		imageLbl:  TLabel(Txt("No image"), Width(36)),
		countsLbl: Label(Txt(model.StatusSnapshot{}.CountsText()), Anchor("w")),
		toolLbl:   Label(Txt(""), Anchor("w")),
		jobLbl:    Label(Txt("Job: 00:00"), Width(12)),
	}
	Grid(s.imageLbl, In(frame), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	Grid(s.countsLbl, In(frame), Row(0), Column(1), Sticky("w"), Padx("0.6m"))
	Grid(s.toolLbl, In(frame), Row(0), Column(2), Sticky("w"), Padx("0.6m"))
	Grid(s.jobLbl, In(frame), Row(0), Column(3), Sticky("e"), Padx("0.2m"))
	GridColumnConfigure(frame.Window, 2, Weight(1))
	return s
}

// SetStatus redraws the labels from a snapshot.
func (s *StatusBar) SetStatus(snap model.StatusSnapshot) {
	if s == nil || s.imageLbl == nil {
		return
	}
	s.imageLbl.Configure(Txt(snap.ImageText()))
	if snap.Dirty != s.dirty {
		s.dirty = snap.Dirty
		style := "TLabel"
		if snap.Dirty {
			style = theme.StyleDirtyLabel
		}
		s.imageLbl.Configure(Style(style))
	}
	s.countsLbl.Configure(Txt(snap.CountsText()))
	s.toolLbl.Configure(Txt(snap.ToolText()))
}

// SetJobElapsed updates the job timer.
func (s *StatusBar) SetJobElapsed(d time.Duration) {
	if s == nil || s.jobLbl == nil {
		return
	}
	s.jobLbl.Configure(Txt("Job: " + model.FormatElapsed(d)))
}
