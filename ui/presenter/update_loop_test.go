package presenter

import (
	"testing"
	"time"

	"github.com/soocke/pixel-label-go/ui/model"
)

func TestLoop_TicksAndSchedules(t *testing.T) {
	stateView := &mockStateView{}
	statusView := &mockStatusView{}
	saver := &mockSaver{dirty: true}
	scheduled := 0

	l := NewLoop(
		NewStatePresenter(stateView),
		nil,
		NewAutoSaver(saver, time.Second, discardLogger()),
		nil,
		NewStatusPresenter(model.NewStatusModel(), &mockStatusSource{}, nil, statusView),
		func() { scheduled++ },
	)
	clock := time.Unix(0, 0)
	l.now = func() time.Time { return clock }

	l.Tick()
	clock = clock.Add(2 * time.Second)
	l.Tick()

	if scheduled != 2 {
		t.Fatalf("scheduled=%d want 2", scheduled)
	}
	if len(stateView.labels) != 1 || len(statusView.statuses) != 1 {
		t.Fatalf("state=%v statuses=%d", stateView.labels, len(statusView.statuses))
	}
	if saver.saves != 1 {
		t.Fatalf("auto-save did not run: %d", saver.saves)
	}
}

func TestLoop_NilSafe(t *testing.T) {
	var l *Loop
	l.Tick()
	(&Loop{}).Tick()
}
