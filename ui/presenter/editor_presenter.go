package presenter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soocke/pixel-label-go/config"
	"github.com/soocke/pixel-label-go/domain/autoannotate"
	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/domain/editor"
	"github.com/soocke/pixel-label-go/domain/interaction"
	"github.com/soocke/pixel-label-go/ui/model"
)

// ScreenGrabber saves a screen capture into the dataset and returns its
// relative path.
type ScreenGrabber interface {
	Capture() (string, error)
}

// EditorView reflects class list and tool mode changes.
type EditorView interface {
	SetClasses(names []string, selected int)
	SetMode(mode string)
}

// EditorPresenter turns commands and shortcuts into session operations. It
// also prepares and completes auto-annotation jobs and produces the status
// bar snapshot.
type EditorPresenter struct {
	session *editor.Session
	cfg     *config.Config
	canvas  *CanvasPresenter
	grabber ScreenGrabber
	view    EditorView
	notify  Notifier
	confirm interaction.Confirmer
	logger  *slog.Logger
}

// NewEditorPresenter constructs an editor presenter. grabber, view and notify may be nil.
func NewEditorPresenter(session *editor.Session, cfg *config.Config, canvas *CanvasPresenter, grabber ScreenGrabber, view EditorView, notify Notifier, logger *slog.Logger) *EditorPresenter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EditorPresenter{session: session, cfg: cfg, canvas: canvas, grabber: grabber, view: view, notify: notify, logger: logger}
}

// SetConfirmer installs the yes/no prompt used before destructive actions.
func (p *EditorPresenter) SetConfirmer(c interaction.Confirmer) {
	if p == nil {
		return
	}
	p.confirm = c
	if p.session != nil {
		p.session.Machine().SetConfirmer(c)
	}
}

// Start opens the first image, if any, and pushes the initial view state.
func (p *EditorPresenter) Start() {
	if p == nil || p.session == nil {
		return
	}
	if p.session.Dataset().Len() > 0 {
		p.report("open image", p.session.Open(0))
	}
	p.sync()
}

// Next opens the following image.
func (p *EditorPresenter) Next() { p.navigate(1) }

// Prev opens the preceding image.
func (p *EditorPresenter) Prev() { p.navigate(-1) }

func (p *EditorPresenter) navigate(delta int) {
	if p == nil || p.session == nil {
		return
	}
	p.report("navigate", p.session.Navigate(delta))
	p.canvas.Invalidate()
}

// Save writes the labels of the open image.
func (p *EditorPresenter) Save() {
	if p == nil || p.session == nil {
		return
	}
	if err := p.session.Save(); err != nil {
		p.report("save", err)
		return
	}
	p.say("Labels saved")
}

// Undo steps back in history.
func (p *EditorPresenter) Undo() {
	if p == nil || p.session == nil {
		return
	}
	if p.session.Undo() {
		p.canvas.Invalidate()
	}
}

// Redo steps forward in history.
func (p *EditorPresenter) Redo() {
	if p == nil || p.session == nil {
		return
	}
	if p.session.Redo() {
		p.canvas.Invalidate()
	}
}

// Fit refits the image to the canvas.
func (p *EditorPresenter) Fit() {
	if p == nil || p.session == nil {
		return
	}
	p.session.Fit()
	p.canvas.Invalidate()
}

// SetMode switches between box and polygon drawing.
func (p *EditorPresenter) SetMode(mode interaction.Mode) {
	if p == nil || p.session == nil {
		return
	}
	p.session.Machine().SetMode(mode)
	p.canvas.Invalidate()
	p.sync()
}

// SelectClass selects class i; out of range indices are ignored.
func (p *EditorPresenter) SelectClass(i int) {
	if p == nil || p.session == nil {
		return
	}
	if p.session.Machine().SelectClass(i) {
		p.sync()
	}
}

// AddClass appends a class and selects it.
func (p *EditorPresenter) AddClass(name string) {
	if p == nil || p.session == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	i, err := p.session.AddClass(name)
	if err != nil {
		p.report("add class", err)
		return
	}
	p.session.Machine().SelectClass(i)
	p.canvas.Invalidate()
	p.sync()
}

// RenameClass renames class i.
func (p *EditorPresenter) RenameClass(i int, name string) {
	if p == nil || p.session == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.report("rename class", p.session.RenameClass(i, name))
	p.canvas.Invalidate()
	p.sync()
}

// RemoveClass removes class i after confirmation.
func (p *EditorPresenter) RemoveClass(i int) {
	if p == nil || p.session == nil {
		return
	}
	name := p.session.Classes().Name(i)
	if !p.ask(fmt.Sprintf("Remove class %q? Annotations using it are reset to the first class.", name)) {
		return
	}
	p.report("remove class", p.session.RemoveClass(i))
	p.canvas.Invalidate()
	p.sync()
}

// DeleteImage removes the open image and its labels after confirmation.
func (p *EditorPresenter) DeleteImage() {
	if p == nil || p.session == nil {
		return
	}
	rel, ok := p.session.Current()
	if !ok {
		return
	}
	if !p.ask(fmt.Sprintf("Delete %s and its labels from disk?", rel)) {
		return
	}
	p.report("delete image", p.session.DeleteCurrentImage())
	p.canvas.Invalidate()
}

// GrabScreen captures the screen into the dataset and opens the capture.
func (p *EditorPresenter) GrabScreen() {
	if p == nil || p.session == nil || p.grabber == nil {
		return
	}
	rel, err := p.grabber.Capture()
	if err != nil {
		p.report("grab screen", err)
		return
	}
	p.report("open capture", p.session.AddImage(rel))
	p.canvas.Invalidate()
}

// CopyBox copies the box under the pointer, or the last box when the pointer
// is not over one.
func (p *EditorPresenter) CopyBox() {
	if p == nil || p.session == nil {
		return
	}
	i, ok := p.canvas.BoxAtPointer()
	if !ok {
		i = p.session.Store().BoxCount() - 1
	}
	p.session.ClearClipboard()
	if p.session.CopyBox(i) {
		p.say("Box copied")
	}
}

// Paste adds the copied boxes to the open image.
func (p *EditorPresenter) Paste() {
	if p == nil || p.session == nil {
		return
	}
	if n := p.session.PasteBoxes(); n > 0 {
		p.canvas.Invalidate()
	}
}

// DeleteBoxAtPointer removes the box under the pointer.
func (p *EditorPresenter) DeleteBoxAtPointer() bool {
	if p == nil || p.session == nil {
		return false
	}
	i, ok := p.canvas.BoxAtPointer()
	if !ok || !p.session.DeleteAnnotation(editor.KindBox, i) {
		return false
	}
	p.canvas.Invalidate()
	return true
}

// HandleKey dispatches a Tk keysym. ctrl reports whether Control was held.
// It returns whether the key was consumed.
func (p *EditorPresenter) HandleKey(keysym string, ctrl bool) bool {
	if p == nil || p.session == nil {
		return false
	}
	if ctrl {
		switch strings.ToLower(keysym) {
		case "s":
			p.Save()
		case "z":
			p.Undo()
		case "y":
			p.Redo()
		case "c":
			p.CopyBox()
		case "v":
			p.Paste()
		case "g":
			p.GrabScreen()
		default:
			return false
		}
		return true
	}
	// Plain keys wait until the box drag is released.
	if p.session.Machine().State() == interaction.StateDrawingBox {
		return false
	}
	if p.canvas.Key(keysym) {
		p.sync()
		return true
	}
	switch keysym {
	case "Right", "d", "D":
		p.Next()
	case "Left", "a", "A":
		p.Prev()
	case "b", "B":
		p.SetMode(interaction.ModeBox)
	case "p", "P":
		p.SetMode(interaction.ModePolygon)
	case "f", "F":
		p.Fit()
	case "plus", "equal", "KP_Add":
		p.canvas.Wheel(true)
	case "minus", "KP_Subtract":
		p.canvas.Wheel(false)
	case interaction.KeyDelete, interaction.KeyBackSpace:
		if p.session.Machine().Mode() != interaction.ModeBox {
			return false
		}
		return p.DeleteBoxAtPointer()
	default:
		return false
	}
	return true
}

// PrepareJob saves pending edits and describes a job over the whole dataset.
func (p *EditorPresenter) PrepareJob() (autoannotate.Request, error) {
	if p == nil || p.session == nil {
		return autoannotate.Request{}, errors.New("no session")
	}
	if err := p.session.AutoSave(); err != nil {
		return autoannotate.Request{}, fmt.Errorf("save pending edits: %w", err)
	}
	images := p.session.Dataset().Images()
	if len(images) == 0 {
		return autoannotate.Request{}, dataset.ErrNoImages
	}
	return autoannotate.Request{
		Images:     images,
		Threshold:  p.cfg.ConfidenceThreshold,
		Type:       autoannotate.Type(p.cfg.AnnotationType),
		ClassCount: p.session.Classes().Len(),
	}, nil
}

// CompleteJob merges job statuses and reloads the open image from disk.
func (p *EditorPresenter) CompleteJob(r autoannotate.Result) {
	if p == nil || p.session == nil {
		return
	}
	p.report("apply statuses", p.session.ApplyStatuses(r.Statuses))
	if r.Written > 0 {
		p.report("reload image", p.session.ReloadCurrent())
	}
	p.canvas.Invalidate()
	p.sync()
}

// Snapshot returns the status bar contents.
func (p *EditorPresenter) Snapshot() model.StatusSnapshot {
	if p == nil || p.session == nil {
		return model.StatusSnapshot{Index: -1}
	}
	s := p.session
	m := s.Machine()
	snap := model.StatusSnapshot{
		Index:  s.Index(),
		Total:  s.Dataset().Len(),
		Counts: s.Counts(),
		Dirty:  s.Dirty(),
		Zoom:   s.Viewport().Zoom(),
		Mode:   m.Mode().String(),
	}
	if rel, ok := s.Current(); ok {
		snap.Image = rel
		snap.Status = s.Statuses().Get(rel)
	}
	if c := m.SelectedClass(); c >= 0 {
		snap.Class = s.Classes().Name(c)
	}
	return snap
}

func (p *EditorPresenter) sync() {
	if p.view == nil {
		return
	}
	m := p.session.Machine()
	p.view.SetClasses(p.session.Classes().Names(), m.SelectedClass())
	p.view.SetMode(m.Mode().String())
}

func (p *EditorPresenter) ask(prompt string) bool {
	if p.confirm == nil {
		return true
	}
	return p.confirm(prompt)
}

func (p *EditorPresenter) report(op string, err error) {
	if err == nil {
		return
	}
	p.logger.Warn("editor command failed", "op", op, "error", err)
	p.say(fmt.Sprintf("%s: %v", op, err))
}

func (p *EditorPresenter) say(msg string) {
	if p.notify != nil {
		p.notify.Notify(msg)
	}
}
