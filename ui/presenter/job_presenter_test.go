package presenter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soocke/pixel-label-go/domain/autoannotate"
	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/ui/model"
)

type mockRunner struct {
	started, cancelled int
	startErr           error
	lastReq            autoannotate.Request
	progress           chan autoannotate.Progress
	done               chan autoannotate.Result
}

func newMockRunner() *mockRunner {
	return &mockRunner{progress: make(chan autoannotate.Progress, 16), done: make(chan autoannotate.Result, 1)}
}

func (r *mockRunner) Start(_ context.Context, req autoannotate.Request) (string, error) {
	r.started++
	r.lastReq = req
	return "job-1", r.startErr
}
func (r *mockRunner) Cancel()                                { r.cancelled++ }
func (r *mockRunner) Progress() <-chan autoannotate.Progress { return r.progress }
func (r *mockRunner) Done() <-chan autoannotate.Result       { return r.done }

type mockHost struct {
	prepared  int
	prepErr   error
	completed []autoannotate.Result
}

func (h *mockHost) PrepareJob() (autoannotate.Request, error) {
	h.prepared++
	return autoannotate.Request{Images: []string{"a.png", "b.png", "c.png", "d.png"}, Threshold: 0.5, Type: autoannotate.TypeBoxes}, h.prepErr
}
func (h *mockHost) CompleteJob(r autoannotate.Result) { h.completed = append(h.completed, r) }

type mockJobView struct {
	running      bool
	editable     bool
	editCalls    int
	lastPercent  float64
	lastText     string
	progressHits int
}

func (v *mockJobView) SetJobRunning(b bool) { v.running = b }
func (v *mockJobView) SetJobProgress(p float64, text string) {
	v.progressHits++
	v.lastPercent, v.lastText = p, text
}
func (v *mockJobView) ConfigEditable(b bool) { v.editCalls++; v.editable = b }

type mockNotifier struct{ msgs []string }

func (n *mockNotifier) Notify(msg string) { n.msgs = append(n.msgs, msg) }

func newJobFixture(runnerErr error) (*JobPresenter, *mockRunner, *mockHost, *mockJobView, *mockNotifier, *model.JobModel) {
	runner := newMockRunner()
	host := &mockHost{}
	view := &mockJobView{editable: true}
	notes := &mockNotifier{}
	jm := model.NewJobModel()
	factory := func() (JobRunner, error) {
		if runnerErr != nil {
			return nil, runnerErr
		}
		return runner, nil
	}
	p := NewJobPresenter(context.Background(), jm, factory, host, view, notes, discardLogger())
	p.now = func() time.Time { return time.Unix(100, 0) }
	return p, runner, host, view, notes, jm
}

func TestJobPresenter_StartProgressComplete(t *testing.T) {
	p, runner, host, view, notes, jm := newJobFixture(nil)

	p.Start()
	if runner.started != 1 || host.prepared != 1 || !jm.Running() {
		t.Fatalf("start: started=%d prepared=%d running=%v", runner.started, host.prepared, jm.Running())
	}
	if !view.running || view.editable {
		t.Fatalf("view not switched to running: running=%v editable=%v", view.running, view.editable)
	}
	p.Start()
	if runner.started != 1 {
		t.Fatalf("second start should be ignored while running")
	}

	runner.progress <- autoannotate.Progress{Processed: 1, Total: 4, Percent: 25, Image: "a.png"}
	runner.progress <- autoannotate.Progress{Processed: 2, Total: 4, Percent: 50, Image: "b.png"}
	p.Tick(time.Unix(101, 0))
	if jm.Progress().Processed != 2 || view.lastPercent != 50 || view.lastText != "2/4 b.png" {
		t.Fatalf("progress not drained to latest: model=%+v view=%v %q", jm.Progress(), view.lastPercent, view.lastText)
	}
	if len(host.completed) != 0 {
		t.Fatalf("completed before done")
	}

	runner.done <- autoannotate.Result{
		State:        autoannotate.JobCompleted,
		Processed:    4,
		Total:        4,
		Written:      3,
		ReviewNeeded: []string{"c.png"},
		Statuses:     map[string]dataset.Status{"c.png": dataset.StatusReviewNeeded},
	}
	p.Tick(time.Unix(104, 0))
	if jm.Running() || view.running || !view.editable {
		t.Fatalf("view not restored: model running=%v view running=%v editable=%v", jm.Running(), view.running, view.editable)
	}
	if len(host.completed) != 1 || host.completed[0].Statuses["c.png"] != dataset.StatusReviewNeeded {
		t.Fatalf("host completion=%+v", host.completed)
	}
	want := "Completed: 4/4 images, 1 need review"
	if view.lastText != want || len(notes.msgs) != 1 || notes.msgs[0] != want {
		t.Fatalf("summary view=%q notes=%v want %q", view.lastText, notes.msgs, want)
	}
	if got := jm.Elapsed(time.Unix(500, 0)); got != 4*time.Second {
		t.Fatalf("elapsed=%v want 4s", got)
	}
}

func TestJobPresenter_ToggleCancels(t *testing.T) {
	p, runner, _, view, _, _ := newJobFixture(nil)
	p.Toggle()
	p.Toggle()
	if runner.cancelled != 1 || view.lastText != "Cancelling..." {
		t.Fatalf("cancel: cancelled=%d text=%q", runner.cancelled, view.lastText)
	}
	runner.done <- autoannotate.Result{State: autoannotate.JobCancelled, Processed: 3, Total: 4}
	p.Tick(time.Unix(102, 0))
	if view.lastText != "Cancelled after 3/4 images" {
		t.Fatalf("text=%q", view.lastText)
	}
	p.Cancel()
	if runner.cancelled != 1 {
		t.Fatalf("cancel after finish should be a no-op")
	}
}

func TestJobPresenter_StartFailures(t *testing.T) {
	p, _, host, view, notes, jm := newJobFixture(errors.New("no model"))
	p.Start()
	if host.prepared != 0 || jm.Running() || view.running || len(notes.msgs) != 1 {
		t.Fatalf("runner error: prepared=%d running=%v notes=%v", host.prepared, jm.Running(), notes.msgs)
	}

	p, runner, host, _, notes, jm := newJobFixture(nil)
	host.prepErr = dataset.ErrNoImages
	p.Start()
	if runner.started != 0 || jm.Running() || len(notes.msgs) != 1 {
		t.Fatalf("prepare error: started=%d running=%v notes=%v", runner.started, jm.Running(), notes.msgs)
	}

	p, runner, _, view, _, jm = newJobFixture(nil)
	runner.startErr = autoannotate.ErrInvalidThreshold
	p.Start()
	if jm.Running() || view.running {
		t.Fatalf("start error left job running")
	}
	if r, ok := jm.Result(); !ok || r.State != autoannotate.JobFailed {
		t.Fatalf("result=%+v ok=%v want failed", r, ok)
	}
}

func TestSummary(t *testing.T) {
	cases := []struct {
		r    autoannotate.Result
		want string
	}{
		{autoannotate.Result{State: autoannotate.JobCompleted, Processed: 2, Total: 2, Failed: 1}, "Completed: 2/2 images, 0 need review, 1 failed"},
		{autoannotate.Result{State: autoannotate.JobFailed, Err: errors.New("boom")}, "Failed: boom"},
		{autoannotate.Result{State: autoannotate.JobIdle}, "idle"},
	}
	for _, c := range cases {
		if got := Summary(c.r); got != c.want {
			t.Fatalf("got=%q want=%q", got, c.want)
		}
	}
}

func TestJobPresenter_ResetRunner(t *testing.T) {
	built := 0
	runner := newMockRunner()
	factory := func() (JobRunner, error) {
		built++
		return runner, nil
	}
	jm := model.NewJobModel()
	p := NewJobPresenter(context.Background(), jm, factory, &mockHost{}, &mockJobView{}, nil, discardLogger())

	p.Start()
	p.ResetRunner()
	if built != 1 || p.runner == nil {
		t.Fatalf("reset while running: built=%d runner=%v", built, p.runner)
	}
	runner.done <- autoannotate.Result{State: autoannotate.JobCompleted, Processed: 4, Total: 4}
	p.Tick(time.Now())

	p.ResetRunner()
	p.Start()
	if built != 2 || runner.started != 2 {
		t.Fatalf("runner not rebuilt: built=%d started=%d", built, runner.started)
	}
}
