package presenter

import (
	"testing"
	"time"

	"github.com/soocke/pixel-label-go/ui/model"
)

type mockStatusSource struct{ snap model.StatusSnapshot }

func (s *mockStatusSource) Snapshot() model.StatusSnapshot { return s.snap }

type mockElapsed struct {
	running bool
	d       time.Duration
}

func (m *mockElapsed) Running() bool                   { return m.running }
func (m *mockElapsed) Elapsed(time.Time) time.Duration { return m.d }

type mockStatusView struct {
	statuses []model.StatusSnapshot
	elapsed  []time.Duration
}

func (v *mockStatusView) SetStatus(s model.StatusSnapshot) { v.statuses = append(v.statuses, s) }
func (v *mockStatusView) SetJobElapsed(d time.Duration)    { v.elapsed = append(v.elapsed, d) }

func TestStatusPresenter_UpdatesOnChange(t *testing.T) {
	src := &mockStatusSource{snap: model.StatusSnapshot{Image: "a.png", Total: 2, Mode: "box", Zoom: 1}}
	jobs := &mockElapsed{}
	view := &mockStatusView{}
	p := NewStatusPresenter(model.NewStatusModel(), src, jobs, view)
	now := time.Unix(0, 0)

	p.Tick(now)
	p.Tick(now)
	if len(view.statuses) != 1 {
		t.Fatalf("statuses=%d want 1", len(view.statuses))
	}
	src.snap.Dirty = true
	p.Tick(now)
	if len(view.statuses) != 2 || !view.statuses[1].Dirty {
		t.Fatalf("change not pushed: %+v", view.statuses)
	}
	p.Refresh()
	p.Tick(now)
	if len(view.statuses) != 3 {
		t.Fatalf("refresh did not redraw: %d", len(view.statuses))
	}
	if len(view.elapsed) != 0 {
		t.Fatalf("elapsed shown without a job")
	}

	jobs.running, jobs.d = true, 4*time.Second
	p.Tick(now)
	if len(view.elapsed) != 1 || view.elapsed[0] != 4*time.Second {
		t.Fatalf("elapsed=%v", view.elapsed)
	}
}

func TestStatusPresenter_NilSafe(t *testing.T) {
	var p *StatusPresenter
	p.Tick(time.Now())
	p.Refresh()
	NewStatusPresenter(nil, nil, nil, nil).Tick(time.Now())
}
