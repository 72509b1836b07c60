package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	State    *StatePresenter
	Job      *JobPresenter
	AutoSave *AutoSaver
	Canvas   *CanvasPresenter
	Status   *StatusPresenter
	Schedule func()
	now      func() time.Time
}

func NewLoop(state *StatePresenter, job *JobPresenter, autoSave *AutoSaver, canvas *CanvasPresenter, status *StatusPresenter, schedule func()) *Loop {
	return &Loop{State: state, Job: job, AutoSave: autoSave, Canvas: canvas, Status: status, Schedule: schedule, now: time.Now}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.now != nil {
		now = l.now()
	}
	l.State.Tick()
	// Job completion reloads labels, so it runs before the canvas render.
	l.Job.Tick(now)
	l.AutoSave.Tick(now)
	l.Canvas.Tick()
	l.Status.Tick(now)
	if l.Schedule != nil {
		l.Schedule()
	}
}
