package model

import (
	"testing"
	"time"

	"github.com/soocke/pixel-label-go/domain/autoannotate"
)

func TestJobModel_Lifecycle(t *testing.T) {
	m := NewJobModel()
	base := time.Unix(0, 0)

	if m.Running() || m.Elapsed(base) != 0 {
		t.Fatalf("fresh model should be idle")
	}
	if !m.Begin(base) {
		t.Fatalf("begin rejected on idle model")
	}
	if m.Begin(base) {
		t.Fatalf("second begin should be rejected while running")
	}
	m.SetProgress(autoannotate.Progress{Processed: 2, Total: 4, Percent: 50})
	if p := m.Progress(); p.Processed != 2 || p.Percent != 50 {
		t.Fatalf("progress=%+v", p)
	}
	if got := m.Elapsed(base.Add(3 * time.Second)); got != 3*time.Second {
		t.Fatalf("running elapsed=%v want 3s", got)
	}
	if _, ok := m.Result(); ok {
		t.Fatalf("result before finish")
	}

	m.Finish(autoannotate.Result{State: autoannotate.JobCancelled, Processed: 3, Total: 4}, base.Add(5*time.Second))
	if m.Running() {
		t.Fatalf("still running after finish")
	}
	r, ok := m.Result()
	if !ok || r.State != autoannotate.JobCancelled {
		t.Fatalf("result=%+v ok=%v", r, ok)
	}
	if p := m.Progress(); p.Processed != 3 || p.Percent != 75 {
		t.Fatalf("final progress=%+v want 3/4 75%%", p)
	}
	if got := m.Elapsed(base.Add(time.Hour)); got != 5*time.Second {
		t.Fatalf("finished elapsed=%v want 5s", got)
	}

	// a new job clears the previous outcome
	if !m.Begin(base.Add(10 * time.Second)) {
		t.Fatalf("begin after finish rejected")
	}
	if _, ok := m.Result(); ok {
		t.Fatalf("old result survived begin")
	}
	if p := m.Progress(); p.Processed != 0 {
		t.Fatalf("old progress survived begin: %+v", p)
	}
}

func TestJobModel_NilSafe(t *testing.T) {
	var m *JobModel
	if m.Running() || m.Begin(time.Now()) {
		t.Fatalf("nil model should report idle")
	}
	m.SetProgress(autoannotate.Progress{})
	m.Finish(autoannotate.Result{}, time.Now())
	if _, ok := m.Result(); ok {
		t.Fatalf("nil model has no result")
	}
}
