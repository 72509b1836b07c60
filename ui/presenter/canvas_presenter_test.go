package presenter

import (
	"testing"
	"time"

	"github.com/soocke/pixel-label-go/domain/interaction"
)

// waitFrames ticks until the view holds n frames or the deadline passes.
func waitFrames(t *testing.T, p *CanvasPresenter, v *mockCanvasView, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.Tick()
		if len(v.frames) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("frames=%d want %d", len(v.frames), n)
}

func TestCanvasPresenter_DrawBoxAndRender(t *testing.T) {
	s, _ := newSession(t, "a.png")
	if err := s.Open(0); err != nil {
		t.Fatalf("open: %v", err)
	}
	view := &mockCanvasView{}
	notes := &mockNotifier{}
	p := NewCanvasPresenter(s, nil, view, notes, discardLogger())
	defer p.Close()

	p.Press(10, 10, interaction.ButtonPrimary)
	if len(notes.msgs) != 1 || s.Store().BoxCount() != 0 {
		t.Fatalf("press without class: notes=%v boxes=%d", notes.msgs, s.Store().BoxCount())
	}

	s.Machine().SelectClass(0)
	p.Press(10, 10, interaction.ButtonPrimary)
	p.Move(40, 30)
	p.Release(40, 30, interaction.ButtonPrimary)
	b, ok := s.Store().Box(0)
	if !ok || b.X != 10 || b.Y != 10 || b.W != 30 || b.H != 20 {
		t.Fatalf("box=%+v ok=%v", b, ok)
	}
	if !s.Dirty() {
		t.Fatalf("session not dirty after drawing")
	}
	if i, ok := p.BoxAtPointer(); !ok || i != 0 {
		t.Fatalf("box at pointer=%d ok=%v", i, ok)
	}

	waitFrames(t, p, view, 1)
	if png := view.frames[0]; len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatalf("frame is not a png")
	}
	for i := 0; i < 5; i++ {
		p.Tick()
		time.Sleep(2 * time.Millisecond)
	}
	if len(view.frames) != 1 {
		t.Fatalf("idle ticks rendered again: frames=%d", len(view.frames))
	}
	p.Invalidate()
	waitFrames(t, p, view, 2)
}

func TestCanvasPresenter_SceneAndResize(t *testing.T) {
	s, _ := newSession(t, "a.png")
	if err := s.Open(0); err != nil {
		t.Fatalf("open: %v", err)
	}
	p := NewCanvasPresenter(s, nil, &mockCanvasView{}, nil, discardLogger())
	defer p.Close()

	s.Machine().SetMode(interaction.ModePolygon)
	s.Machine().SelectClass(1)
	p.Press(10, 10, interaction.ButtonPrimary)
	p.Move(20, 20)
	sc := p.Scene()
	if len(sc.Drawing) != 1 || !sc.HasPointer || sc.Pointer.X != 20 {
		t.Fatalf("scene drawing=%v pointer=%+v has=%v", sc.Drawing, sc.Pointer, sc.HasPointer)
	}
	if len(sc.ClassNames) != 2 || sc.CanvasW != 100 || sc.Image == nil {
		t.Fatalf("scene=%+v", sc)
	}

	p.Resize(200, 100)
	if w, h := s.Viewport().CanvasSize(); w != 200 || h != 100 {
		t.Fatalf("canvas=%dx%d want 200x100", w, h)
	}
	p.Resize(0, 0)
	if w, _ := s.Viewport().CanvasSize(); w != 200 {
		t.Fatalf("zero resize applied")
	}
	if p.Key(interaction.KeyEscape); len(p.Scene().Drawing) != 0 {
		t.Fatalf("escape did not cancel the polygon")
	}
}

func TestCanvasPresenter_NilSafe(t *testing.T) {
	var p *CanvasPresenter
	p.Press(0, 0, interaction.ButtonPrimary)
	p.Move(0, 0)
	p.Tick()
	p.Close()
	if p.Key("Escape") {
		t.Fatalf("nil presenter consumed a key")
	}
}
