package model

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/pixel-label-go/domain/autoannotate"
)

// JobModel tracks the auto-annotation job as the UI sees it: whether one is
// running, the last progress report and the final result. Elapsed time covers
// the current job while it runs and the last job after it finished.
// The zero value is ready to use.
type JobModel struct {
	running atomic.Bool

	mu       sync.Mutex
	progress autoannotate.Progress
	result   autoannotate.Result
	done     bool
	started  time.Time
	finished time.Time
}

// NewJobModel returns a pointer to a ready-to-use JobModel.
func NewJobModel() *JobModel { return &JobModel{} }

// Running reports whether a job is in flight.
func (m *JobModel) Running() bool {
	if m == nil {
		return false
	}
	return m.running.Load()
}

// Begin marks a job as started and clears the previous progress and result.
// It returns false when a job is already running.
func (m *JobModel) Begin(now time.Time) bool {
	if m == nil || !m.running.CompareAndSwap(false, true) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = autoannotate.Progress{}
	m.result = autoannotate.Result{}
	m.done = false
	m.started, m.finished = now, time.Time{}
	return true
}

// SetProgress records the latest progress report.
func (m *JobModel) SetProgress(p autoannotate.Progress) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.progress = p
	m.mu.Unlock()
}

// Progress returns the latest progress report.
func (m *JobModel) Progress() autoannotate.Progress {
	if m == nil {
		return autoannotate.Progress{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Finish stores the final result and clears the running flag.
func (m *JobModel) Finish(r autoannotate.Result, now time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.result = r
	m.done = true
	m.finished = now
	if r.Total > 0 {
		m.progress.Processed, m.progress.Total = r.Processed, r.Total
		m.progress.Percent = float64(r.Processed) * 100 / float64(r.Total)
	}
	m.mu.Unlock()
	m.running.Store(false)
}

// Result returns the last final result, if any job finished.
func (m *JobModel) Result() (autoannotate.Result, bool) {
	if m == nil {
		return autoannotate.Result{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.done
}

// Elapsed returns the duration of the running job, or of the last one.
func (m *JobModel) Elapsed(now time.Time) time.Duration {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.started.IsZero():
		return 0
	case m.finished.IsZero():
		return now.Sub(m.started)
	default:
		return m.finished.Sub(m.started)
	}
}
