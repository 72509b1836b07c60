package presenter

import (
	"time"

	"github.com/soocke/pixel-label-go/ui/model"
)

// StatusSource produces the current status bar contents.
type StatusSource interface {
	Snapshot() model.StatusSnapshot
}

// ElapsedModel reports job timing.
type ElapsedModel interface {
	Running() bool
	Elapsed(now time.Time) time.Duration
}

// StatusView displays the status bar and the job timer.
type StatusView interface {
	SetStatus(s model.StatusSnapshot)
	SetJobElapsed(d time.Duration)
}

// StatusPresenter pushes status snapshots to the view when they change.
type StatusPresenter struct {
	model *model.StatusModel
	src   StatusSource
	jobs  ElapsedModel
	view  StatusView
}

// NewStatusPresenter returns a new StatusPresenter. jobs may be nil.
func NewStatusPresenter(m *model.StatusModel, src StatusSource, jobs ElapsedModel, view StatusView) *StatusPresenter {
	return &StatusPresenter{model: m, src: src, jobs: jobs, view: view}
}

// Tick refreshes the status bar and, while a job runs, the job timer.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.model == nil || p.src == nil || p.view == nil {
		return
	}
	if s := p.src.Snapshot(); p.model.Update(s) {
		p.view.SetStatus(s)
	}
	if p.jobs != nil && p.jobs.Running() {
		p.view.SetJobElapsed(p.jobs.Elapsed(now))
	}
}

// Refresh forces the next Tick to redraw the status bar.
func (p *StatusPresenter) Refresh() {
	if p != nil {
		p.model.Invalidate()
	}
}
