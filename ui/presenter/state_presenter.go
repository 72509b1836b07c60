package presenter

import (
	"github.com/soocke/pixel-label-go/domain/interaction"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter mirrors interaction state transitions into the state label.
type StatePresenter struct {
	view    StateView
	latest  interaction.State
	shown   bool
	pending []interaction.State
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState queues a transition; it matches interaction.StateListener.
//
// The latest queued state will be reflected on the next Tick.
func (p *StatePresenter) OnState(_, next interaction.State) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, next)
}

// Tick reflects the most recent queued state and clears the queue.
func (p *StatePresenter) Tick() {
	if p == nil || p.view == nil {
		return
	}
	if !p.shown {
		p.shown = true
		p.view.SetStateLabel("State: " + p.latest.String())
	}
	if len(p.pending) == 0 {
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	if last != p.latest {
		p.latest = last
		p.view.SetStateLabel("State: " + last.String())
	}
}
