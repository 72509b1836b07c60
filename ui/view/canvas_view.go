package view

import (
	"github.com/soocke/pixel-label-go/domain/interaction"
	"github.com/soocke/pixel-label-go/ui/images"
	"github.com/soocke/pixel-label-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasHandlers receives pointer input in canvas (view) coordinates.
type CanvasHandlers struct {
	Press       func(x, y float64, b interaction.Button)
	Move        func(x, y float64)
	Release     func(x, y float64, b interaction.Button)
	DoublePress func(x, y float64)
	Leave       func()
	Wheel       func(in bool)
	Resize      func(w, h int)
}

// CanvasView shows rendered canvas frames in a label and forwards mouse events.
type CanvasView struct {
	frame *FrameWidget
	label *LabelWidget
	photo *Img // current photo; deleted when replaced
}

// NewCanvasView creates the canvas area at row of the root grid, filled with
// a placeholder of w x h pixels.
func NewCanvasView(row, w, h int) *CanvasView {
	frame := Frame(Borderwidth(1), Relief("sunken"))
	Grid(frame, Row(row), Column(0), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	GridRowConfigure(frame.Window, 0, Weight(1))
	GridColumnConfigure(frame.Window, 0, Weight(1))

	photo := NewPhoto(Data(images.EncodePNG(images.Placeholder(w, h, images.ColorCanvas))))
	label := Label(Image(photo), Borderwidth(0), Anchor("nw"))
	Grid(label, In(frame), Row(0), Column(0), Sticky("nsew"))
	return &CanvasView{frame: frame, label: label, photo: photo}
}

// ShowCanvas replaces the displayed frame with PNG bytes.
func (v *CanvasView) ShowCanvas(png []byte) {
	if v == nil || v.label == nil || len(png) == 0 {
		return
	}
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(png))
	v.label.Configure(Image(v.photo))
}

// Bind wires mouse events to h. Nil handlers are skipped.
func (v *CanvasView) Bind(h CanvasHandlers) {
	if v == nil || v.label == nil {
		return
	}
	pt := func(e *Event) (float64, float64) { return float64(e.X), float64(e.Y) }
	buttons := []struct {
		n string
		b interaction.Button
	}{
		{"1", interaction.ButtonPrimary},
		{"2", interaction.ButtonMiddle},
		{"3", interaction.ButtonSecondary},
	}
	for _, btn := range buttons {
		b := btn.b
		if h.Press != nil {
			Bind(v.label, "<ButtonPress-"+btn.n+">", Command(func(e *Event) {
				x, y := pt(e)
				h.Press(x, y, b)
			}))
		}
		if h.Release != nil {
			Bind(v.label, "<ButtonRelease-"+btn.n+">", Command(func(e *Event) {
				x, y := pt(e)
				h.Release(x, y, b)
			}))
		}
	}
	if h.Move != nil {
		Bind(v.label, "<Motion>", Command(func(e *Event) { h.Move(pt(e)) }))
	}
	if h.DoublePress != nil {
		Bind(v.label, "<Double-Button-1>", Command(func(e *Event) { h.DoublePress(pt(e)) }))
	}
	if h.Leave != nil {
		Bind(v.label, "<Leave>", Command(func() { h.Leave() }))
	}
	if h.Wheel != nil {
		// X11 reports the wheel as buttons 4 and 5.
		Bind(v.label, "<Button-4>", Command(func() { h.Wheel(true) }))
		Bind(v.label, "<Button-5>", Command(func() { h.Wheel(false) }))
	}
	if h.Resize != nil {
		Bind(v.frame, "<Configure>", Command(func(e *Event) {
			if w, ht, ok := model.ParseSize(e.Width, e.Height); ok {
				h.Resize(w, ht)
			}
		}))
	}
}
