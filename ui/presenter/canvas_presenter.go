package presenter

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/pixel-label-go/domain/editor"
	"github.com/soocke/pixel-label-go/domain/geometry"
	"github.com/soocke/pixel-label-go/domain/interaction"
	"github.com/soocke/pixel-label-go/ui/images"
)

// CanvasView shows one encoded canvas frame.
type CanvasView interface {
	ShowCanvas(png []byte)
}

// Notifier surfaces short user-facing messages.
type Notifier interface {
	Notify(msg string)
}

const slowRender = 50 * time.Millisecond

type renderTask struct {
	sequence uint64
	scene    images.Scene
}

type renderResult struct {
	sequence uint64
	png      []byte
	duration time.Duration
}

// CanvasPresenter feeds pointer events into the interaction machine and keeps
// the canvas in sync. Scenes are captured on the UI thread and rasterized on a
// worker; Tick dispatches at most one render and shows the newest finished one.
type CanvasPresenter struct {
	session  *editor.Session
	renderer *images.Renderer
	view     CanvasView
	notify   Notifier
	logger   *slog.Logger

	workerOnce sync.Once
	closeOnce  sync.Once
	workCh     chan renderTask
	resultCh   chan renderResult

	sequence   uint64
	shown      uint64
	pending    bool
	closed     bool
	lastRender time.Duration
}

// NewCanvasPresenter constructs a canvas presenter. notify may be nil.
func NewCanvasPresenter(session *editor.Session, renderer *images.Renderer, view CanvasView, notify Notifier, logger *slog.Logger) *CanvasPresenter {
	if renderer == nil {
		renderer = images.NewRenderer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CanvasPresenter{
		session:  session,
		renderer: renderer,
		view:     view,
		notify:   notify,
		logger:   logger,
		workCh:   make(chan renderTask, 1),
		resultCh: make(chan renderResult, 1),
		pending:  true,
	}
}

// Invalidate schedules a redraw on the next Tick.
func (p *CanvasPresenter) Invalidate() {
	if p != nil {
		p.pending = true
	}
}

// LastRender returns how long the last finished render took.
func (p *CanvasPresenter) LastRender() time.Duration {
	if p == nil {
		return 0
	}
	return p.lastRender
}

// Press handles a button press at view coordinates.
func (p *CanvasPresenter) Press(x, y float64, b interaction.Button) {
	if p == nil || p.session == nil {
		return
	}
	err := p.session.Machine().Press(interaction.PointerEvent{X: x, Y: y, Button: b})
	if errors.Is(err, interaction.ErrNoClassSelected) {
		p.say(err.Error())
	}
	p.pending = true
}

// Move handles pointer motion.
func (p *CanvasPresenter) Move(x, y float64) {
	if p == nil || p.session == nil {
		return
	}
	if p.session.Machine().Move(interaction.PointerEvent{X: x, Y: y}) {
		p.pending = true
	}
}

// Release handles a button release.
func (p *CanvasPresenter) Release(x, y float64, b interaction.Button) {
	if p == nil || p.session == nil {
		return
	}
	p.session.Machine().Release(interaction.PointerEvent{X: x, Y: y, Button: b})
	p.pending = true
}

// DoublePress finalizes a polygon.
func (p *CanvasPresenter) DoublePress(x, y float64) {
	if p == nil || p.session == nil {
		return
	}
	p.session.Machine().DoublePress(interaction.PointerEvent{X: x, Y: y, Button: interaction.ButtonPrimary})
	p.pending = true
}

// Leave handles the pointer leaving the canvas.
func (p *CanvasPresenter) Leave() {
	if p == nil || p.session == nil {
		return
	}
	p.session.Machine().Leave()
	p.pending = true
}

// Key forwards a keysym to the machine and reports whether it was consumed.
func (p *CanvasPresenter) Key(keysym string) bool {
	if p == nil || p.session == nil {
		return false
	}
	if p.session.Machine().Key(keysym) {
		p.pending = true
		return true
	}
	return false
}

// Wheel zooms around the canvas center.
func (p *CanvasPresenter) Wheel(in bool) {
	if p == nil || p.session == nil {
		return
	}
	p.session.Zoom(in)
	p.pending = true
}

// Resize records a new canvas size. Zero or negative sizes are ignored.
func (p *CanvasPresenter) Resize(w, h int) {
	if p == nil || p.session == nil || w <= 0 || h <= 0 {
		return
	}
	cw, ch := p.session.Viewport().CanvasSize()
	if cw == w && ch == h {
		return
	}
	p.session.ResizeCanvas(w, h)
	p.pending = true
}

// BoxAtPointer returns the topmost box under the last pointer position.
func (p *CanvasPresenter) BoxAtPointer() (int, bool) {
	if p == nil || p.session == nil {
		return 0, false
	}
	ctx := p.session.Machine().Context()
	if !ctx.HasPointer {
		return 0, false
	}
	w, h := p.session.ImageSize()
	ix, iy, ok := geometry.ViewToImage(ctx.Pointer.X, ctx.Pointer.Y, p.session.Viewport().State(), w, h)
	if !ok {
		return 0, false
	}
	boxes := p.session.Store().Boxes()
	for i := len(boxes) - 1; i >= 0; i-- {
		b := boxes[i].Normalized()
		if ix >= b.X && ix <= b.X+b.W && iy >= b.Y && iy <= b.Y+b.H {
			return i, true
		}
	}
	return 0, false
}

// Scene captures everything needed to draw the current frame.
func (p *CanvasPresenter) Scene() images.Scene {
	s := p.session
	ctx := s.Machine().Context()
	w, h := s.Viewport().CanvasSize()
	return images.Scene{
		Image:      s.Image(),
		View:       s.Viewport().State(),
		CanvasW:    w,
		CanvasH:    h,
		Boxes:      s.Store().Boxes(),
		Polygons:   s.Store().Polygons(),
		Drawing:    ctx.Drawing,
		Pointer:    ctx.Pointer,
		HasPointer: ctx.HasPointer,
		Hover:      ctx.Hover,
		HasHover:   ctx.HasHover,
		ClassNames: s.Classes().Names(),
	}
}

// Tick shows finished renders and dispatches a new one when needed.
func (p *CanvasPresenter) Tick() {
	if p == nil || p.session == nil || p.view == nil || p.closed {
		return
	}
	p.workerOnce.Do(func() { go p.runWorker() })
drain:
	for {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			break drain
		}
	}
	if !p.pending {
		return
	}
	p.pending = false
	p.sequence++
	p.dispatch(renderTask{sequence: p.sequence, scene: p.Scene()})
}

// Close stops the render worker.
func (p *CanvasPresenter) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.closed = true
		close(p.workCh)
	})
}

func (p *CanvasPresenter) handleResult(res renderResult) {
	if res.sequence <= p.shown || res.png == nil {
		return
	}
	p.shown = res.sequence
	p.lastRender = res.duration
	if res.duration > slowRender {
		p.logger.Debug("slow canvas render", "duration_ms", res.duration.Milliseconds(), "sequence", res.sequence)
	}
	p.view.ShowCanvas(res.png)
}

func (p *CanvasPresenter) dispatch(task renderTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

func (p *CanvasPresenter) runWorker() {
	for task := range p.workCh {
		start := time.Now()
		frame := p.renderer.Render(task.scene)
		png := images.EncodePNG(frame)
		images.RecycleFrame(frame)
		res := renderResult{sequence: task.sequence, png: png, duration: time.Since(start)}
		select {
		case p.resultCh <- res:
		default:
			select {
			case <-p.resultCh:
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

func (p *CanvasPresenter) say(msg string) {
	if p.notify != nil {
		p.notify.Notify(msg)
	}
}
