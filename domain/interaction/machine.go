package interaction

import (
	"log/slog"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/geometry"
)

// Machine dispatches pointer and keyboard input to the annotation store and the
// viewport. All methods run on the UI thread; none of them block.
type Machine struct {
	state     State
	ctx       *Context
	store     *annotation.Store
	view      Viewport
	recorder  Recorder
	classes   ClassCounter
	confirm   Confirmer
	opts      Options
	logger    *slog.Logger
	listeners []StateListener
}

// NewMachine creates a machine in box mode with no class selected.
func NewMachine(store *annotation.Store, view Viewport, recorder Recorder, classes ClassCounter, opts Options, logger *slog.Logger) *Machine {
	def := DefaultOptions()
	if opts.HoverRadius <= 0 {
		opts.HoverRadius = def.HoverRadius
	}
	if opts.EdgeThreshold <= 0 {
		opts.EdgeThreshold = def.EdgeThreshold
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		state:    StateIdle,
		ctx:      &Context{Mode: ModeBox, SelectedClass: -1},
		store:    store,
		view:     view,
		recorder: recorder,
		classes:  classes,
		opts:     opts,
		logger:   logger,
	}
}

// AddListener registers a listener for state transitions.
func (m *Machine) AddListener(l StateListener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// SetConfirmer installs the prompt used before removing a whole polygon.
func (m *Machine) SetConfirmer(c Confirmer) { m.confirm = c }

// State returns the current substate.
func (m *Machine) State() State { return m.state }

// Context returns a copy of the interaction context for rendering.
func (m *Machine) Context() Context { return m.ctx.clone() }

// Mode returns the active drawing mode.
func (m *Machine) Mode() Mode { return m.ctx.Mode }

// SetMode switches between box and polygon drawing, abandoning any gesture in progress.
func (m *Machine) SetMode(mode Mode) {
	if m.ctx.Mode == mode {
		return
	}
	m.Reset()
	m.ctx.Mode = mode
	m.logger.Debug("interaction mode changed", "mode", mode.String())
}

// SelectClass selects class i if it exists in the class list.
func (m *Machine) SelectClass(i int) bool {
	if i < 0 || m.classes == nil || i >= m.classes.Len() {
		return false
	}
	m.ctx.SelectedClass = i
	return true
}

// ClearClass drops the class selection.
func (m *Machine) ClearClass() { m.ctx.SelectedClass = -1 }

// SelectedClass returns the selected class or -1.
func (m *Machine) SelectedClass() int { return m.ctx.SelectedClass }

// Reset abandons drawing, dragging and hover state and returns to idle. The
// editor calls it whenever the store is swapped for another image.
func (m *Machine) Reset() {
	m.ctx.Drawing = nil
	m.ctx.clearHover()
	m.ctx.HasPointer = false
	m.transition(StateIdle)
}

// Press handles a button press. It returns ErrNoClassSelected when the press
// would create an annotation while no class is selected.
func (m *Machine) Press(ev PointerEvent) error {
	m.trackPointer(ev)
	switch ev.Button {
	case ButtonSecondary:
		if m.state == StateDrawingPolygon {
			m.cancelPolygon("right_press")
		}
		return nil
	case ButtonMiddle:
		if m.state == StateIdle && m.view.State().Zoom > 1.0 {
			m.ctx.panLastX, m.ctx.panLastY = ev.X, ev.Y
			m.transition(StateDraggingPan)
		}
		return nil
	}
	if m.ctx.Mode == ModeBox {
		return m.pressBox(ev)
	}
	return m.pressPolygon(ev)
}

func (m *Machine) pressBox(ev PointerEvent) error {
	if m.state != StateIdle {
		return nil
	}
	if !m.ctx.HasClass() {
		return ErrNoClassSelected
	}
	p, ok := m.toImage(ev)
	if !ok {
		return nil
	}
	m.ctx.DrawClass = m.ctx.SelectedClass
	m.ctx.BoxIndex = m.store.AddBox(annotation.BoundingBox{X: p.X, Y: p.Y, ClassID: m.ctx.DrawClass})
	m.ctx.BoxStart = p
	m.transition(StateDrawingBox)
	return nil
}

func (m *Machine) pressPolygon(ev PointerEvent) error {
	if m.state == StateDrawingPolygon {
		if p, ok := m.toImage(ev); ok {
			m.ctx.Drawing = append(m.ctx.Drawing, p)
		}
		return nil
	}
	if m.state != StateIdle {
		return nil
	}
	if m.opts.Now().Before(m.ctx.pressGuardUntil) {
		return nil
	}
	view := m.view.State()
	polys := m.store.Polygons()
	if ref, ok := geometry.NearestVertex(polys, view, ev.X, ev.Y, m.opts.HoverRadius); ok {
		m.ctx.Drag = ref
		m.ctx.Hover, m.ctx.HasHover = ref, true
		m.transition(StateDraggingVertex)
		return nil
	}
	if geometry.NearEdge(polys, view, ev.X, ev.Y, m.opts.EdgeThreshold) {
		return nil
	}
	if !m.ctx.HasClass() {
		return ErrNoClassSelected
	}
	p, ok := m.toImage(ev)
	if !ok {
		return nil
	}
	m.ctx.clearHover()
	m.ctx.DrawClass = m.ctx.SelectedClass
	m.ctx.Drawing = []annotation.Point{p}
	m.transition(StateDrawingPolygon)
	return nil
}

// Move handles pointer motion and reports whether the canvas needs a redraw.
func (m *Machine) Move(ev PointerEvent) bool {
	m.trackPointer(ev)
	switch m.state {
	case StateDrawingBox:
		p, ok := m.toImage(ev)
		if !ok {
			return false
		}
		s := m.ctx.BoxStart
		m.store.SetBox(m.ctx.BoxIndex, annotation.BoundingBox{
			X:       min(s.X, p.X),
			Y:       min(s.Y, p.Y),
			W:       abs(p.X - s.X),
			H:       abs(p.Y - s.Y),
			ClassID: m.ctx.DrawClass,
		})
		return true
	case StateDraggingVertex:
		p, ok := m.toImage(ev)
		if !ok {
			return false
		}
		return m.store.MoveVertex(m.ctx.Drag.Polygon, m.ctx.Drag.Vertex, p)
	case StateDraggingPan:
		dx := int(m.ctx.panLastX - ev.X)
		dy := int(m.ctx.panLastY - ev.Y)
		if dx == 0 && dy == 0 {
			return false
		}
		m.ctx.panLastX -= float64(dx)
		m.ctx.panLastY -= float64(dy)
		return m.view.PanBy(dx, dy)
	case StateDrawingPolygon:
		return true
	default:
		if m.ctx.Mode == ModePolygon {
			return m.updateHover(ev)
		}
		return false
	}
}

func (m *Machine) updateHover(ev PointerEvent) bool {
	if m.opts.Now().Before(m.ctx.hoverResumeAt) {
		return false
	}
	ref, ok := geometry.NearestVertex(m.store.Polygons(), m.view.State(), ev.X, ev.Y, m.opts.HoverRadius)
	changed := ok != m.ctx.HasHover || (ok && ref != m.ctx.Hover)
	if ok {
		m.ctx.Hover, m.ctx.HasHover = ref, true
	} else {
		m.ctx.clearHover()
	}
	return changed
}

// Release ends a drag gesture started by the matching button.
func (m *Machine) Release(ev PointerEvent) {
	m.trackPointer(ev)
	switch m.state {
	case StateDrawingBox:
		if ev.Button != ButtonPrimary {
			return
		}
		m.commit("box_drawn")
		m.transition(StateIdle)
	case StateDraggingVertex:
		if ev.Button != ButtonPrimary {
			return
		}
		m.commit("vertex_moved")
		m.ctx.clearHover()
		m.suspendHover()
		m.transition(StateIdle)
	case StateDraggingPan:
		if ev.Button != ButtonMiddle {
			return
		}
		m.suspendHover()
		m.transition(StateIdle)
	}
}

// DoublePress finalizes the polygon being drawn. Tk delivers the first click of
// a double click as a regular Press, so that click has already added its vertex.
func (m *Machine) DoublePress(ev PointerEvent) {
	m.trackPointer(ev)
	if m.state != StateDrawingPolygon || ev.Button != ButtonPrimary {
		return
	}
	if len(m.ctx.Drawing) < annotation.MinPolygonVertices {
		m.cancelPolygon("too_few_points")
		return
	}
	m.store.AddPolygon(annotation.Polygon{
		ClassID: m.ctx.DrawClass,
		Points:  m.ctx.Drawing,
		Closed:  true,
	})
	m.ctx.Drawing = nil
	m.ctx.pressGuardUntil = m.opts.Now().Add(m.opts.PolygonGuard)
	m.commit("polygon_closed")
	m.transition(StateIdle)
}

// Leave handles the pointer leaving the canvas.
func (m *Machine) Leave() {
	m.ctx.HasPointer = false
	m.ctx.clearHover()
	if m.state == StateDraggingPan {
		m.transition(StateIdle)
	}
}

// Key handles a key press by Tk keysym and reports whether it was consumed.
// Keys are ignored while a box is being dragged out.
func (m *Machine) Key(keysym string) bool {
	if m.state == StateDrawingBox {
		return false
	}
	switch keysym {
	case KeyEscape:
		return m.escape()
	case KeyDelete, KeyBackSpace:
		return m.deleteHovered()
	}
	if len(keysym) == 1 && keysym[0] >= '1' && keysym[0] <= '9' {
		return m.SelectClass(int(keysym[0] - '1'))
	}
	return false
}

func (m *Machine) escape() bool {
	switch {
	case m.state == StateDrawingPolygon:
		m.cancelPolygon("escape")
	case m.ctx.HasHover:
		m.ctx.clearHover()
	case m.ctx.HasClass():
		m.ClearClass()
	default:
		return false
	}
	return true
}

func (m *Machine) deleteHovered() bool {
	if m.ctx.Mode != ModePolygon || m.state != StateIdle || !m.ctx.HasHover {
		return false
	}
	ref := m.ctx.Hover
	m.ctx.clearHover()
	switch m.store.DeleteVertex(ref.Polygon, ref.Vertex) {
	case annotation.VertexRemoved:
		m.commit("vertex_deleted")
		return true
	case annotation.PolygonRemovalRequired:
		if m.confirm == nil || !m.confirm("Deleting this vertex leaves fewer than 3 points. Delete the whole polygon?") {
			return true
		}
		if m.store.DeletePolygon(ref.Polygon) {
			m.commit("polygon_deleted")
		}
		return true
	default:
		return false
	}
}

func (m *Machine) cancelPolygon(reason string) {
	m.ctx.Drawing = nil
	m.logger.Debug("polygon discarded", "reason", reason)
	m.transition(StateIdle)
}

func (m *Machine) suspendHover() {
	m.ctx.hoverResumeAt = m.opts.Now().Add(m.opts.HoverCooldown)
}

func (m *Machine) commit(reason string) {
	if m.recorder != nil {
		m.recorder.Commit(reason)
	}
}

func (m *Machine) trackPointer(ev PointerEvent) {
	m.ctx.Pointer = annotation.Point{X: ev.X, Y: ev.Y}
	m.ctx.HasPointer = true
}

func (m *Machine) toImage(ev PointerEvent) (annotation.Point, bool) {
	w, h := m.view.ImageSize()
	ix, iy, ok := geometry.ViewToImage(ev.X, ev.Y, m.view.State(), w, h)
	return annotation.Point{X: ix, Y: iy}, ok
}

// transition updates state, logs, and notifies listeners.
func (m *Machine) transition(next State) {
	if m.state == next {
		return
	}
	prev := m.state
	m.state = next
	m.logger.Debug("interaction state transition", "from", prev.String(), "to", next.String())
	for _, l := range m.listeners {
		l(prev, next)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
