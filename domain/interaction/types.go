package interaction

import (
	"errors"
	"time"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/geometry"
)

// ErrNoClassSelected rejects creating a box or polygon while no class is selected.
var ErrNoClassSelected = errors.New("select a class before drawing")

// Mode selects which primitive the pointer draws.
type Mode int

const (
	ModeBox Mode = iota
	ModePolygon
)

func (m Mode) String() string {
	switch m {
	case ModeBox:
		return "box"
	case ModePolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// State is the mutually exclusive interaction substate.
type State int

const (
	StateIdle           State = iota // waiting for input; hover tracked in polygon mode
	StateDrawingBox                  // primary button held after creating a box
	StateDrawingPolygon              // collecting polygon vertices
	StateDraggingVertex              // moving an existing polygon vertex
	StateDraggingPan                 // middle button panning a zoomed view
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawingBox:
		return "drawing_box"
	case StateDrawingPolygon:
		return "drawing_polygon"
	case StateDraggingVertex:
		return "dragging_vertex"
	case StateDraggingPan:
		return "dragging_pan"
	default:
		return "unknown"
	}
}

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent carries a view-space position.
type PointerEvent struct {
	X, Y   float64
	Button Button
}

// Key names follow Tk keysyms.
const (
	KeyEscape    = "Escape"
	KeyDelete    = "Delete"
	KeyBackSpace = "BackSpace"
)

// StateListener is invoked on every state transition.
type StateListener func(prev, next State)

// Viewport is the subset of the viewport controller the machine drives.
type Viewport interface {
	State() geometry.ViewState
	ImageSize() (int, int)
	PanBy(dx, dy int) bool
}

// Recorder commits the current store contents as one undo step.
type Recorder interface {
	Commit(reason string)
}

// ClassCounter exposes the length of the external class list.
type ClassCounter interface {
	Len() int
}

// Confirmer asks the user to approve a destructive action.
type Confirmer func(prompt string) bool

// Context is the mutable interaction state: mode, class selection, hover, drag
// and drawing bookkeeping. It is owned by a Machine.
type Context struct {
	Mode          Mode
	SelectedClass int // -1 when nothing is selected

	Hover    geometry.VertexRef
	HasHover bool

	Drag geometry.VertexRef

	BoxIndex int
	BoxStart annotation.Point

	// DrawClass is the class captured when the current box or polygon was started.
	DrawClass int

	Drawing []annotation.Point

	Pointer    annotation.Point // last pointer position in view space
	HasPointer bool

	panLastX, panLastY float64
	hoverResumeAt      time.Time
	pressGuardUntil    time.Time
}

// HasClass reports whether a class is selected.
func (c *Context) HasClass() bool { return c.SelectedClass >= 0 }

func (c *Context) clearHover() {
	c.HasHover = false
	c.Hover = geometry.VertexRef{}
}

func (c *Context) clone() Context {
	cp := *c
	cp.Drawing = append([]annotation.Point(nil), c.Drawing...)
	return cp
}

// Options tune hit testing and debouncing.
type Options struct {
	HoverRadius   float64
	EdgeThreshold float64
	HoverCooldown time.Duration
	PolygonGuard  time.Duration
	Now           func() time.Time
}

// DefaultOptions returns the standard radii and windows.
func DefaultOptions() Options {
	return Options{
		HoverRadius:   8,
		EdgeThreshold: 5,
		HoverCooldown: 120 * time.Millisecond,
		PolygonGuard:  100 * time.Millisecond,
		Now:           time.Now,
	}
}
