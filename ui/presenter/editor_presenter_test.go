package presenter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/pixel-label-go/config"
	"github.com/soocke/pixel-label-go/domain/autoannotate"
	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/domain/editor"
	"github.com/soocke/pixel-label-go/domain/interaction"
)

type mockEditorView struct {
	names    []string
	selected int
	mode     string
	syncs    int
}

func (v *mockEditorView) SetClasses(names []string, selected int) {
	v.syncs++
	v.names, v.selected = names, selected
}
func (v *mockEditorView) SetMode(mode string) { v.mode = mode }

type fakeGrabber struct {
	t    *testing.T
	root string
	err  error
}

func (g *fakeGrabber) Capture() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	rel := "captures/grab_0001.png"
	writePNG(g.t, filepath.Join(g.root, filepath.FromSlash(rel)), 100, 50)
	return rel, nil
}

type editorFixture struct {
	session *editor.Session
	root    string
	canvas  *CanvasPresenter
	editor  *EditorPresenter
	view    *mockEditorView
	notes   *mockNotifier
}

func newEditorFixture(t *testing.T, names ...string) *editorFixture {
	t.Helper()
	s, root := newSession(t, names...)
	notes := &mockNotifier{}
	canvas := NewCanvasPresenter(s, nil, &mockCanvasView{}, notes, discardLogger())
	t.Cleanup(canvas.Close)
	view := &mockEditorView{}
	ep := NewEditorPresenter(s, config.DefaultConfig(), canvas, &fakeGrabber{t: t, root: root}, view, notes, discardLogger())
	ep.Start()
	return &editorFixture{session: s, root: root, canvas: canvas, editor: ep, view: view, notes: notes}
}

// drawBox draws a 30x20 box at (10,10) with class 0; view and image coordinates coincide.
func (f *editorFixture) drawBox() {
	f.editor.SelectClass(0)
	f.canvas.Press(10, 10, interaction.ButtonPrimary)
	f.canvas.Move(40, 30)
	f.canvas.Release(40, 30, interaction.ButtonPrimary)
}

func TestEditorPresenter_StartAndKeys(t *testing.T) {
	f := newEditorFixture(t, "a.png", "b.png")
	if f.session.Index() != 0 || len(f.view.names) != 2 || f.view.selected != -1 || f.view.mode != "box" {
		t.Fatalf("after start: index=%d view=%+v", f.session.Index(), f.view)
	}

	if !f.editor.HandleKey("Right", false) || f.session.Index() != 1 {
		t.Fatalf("Right did not navigate: index=%d", f.session.Index())
	}
	f.editor.HandleKey("d", false)
	if f.session.Index() != 1 {
		t.Fatalf("navigation past the end: index=%d", f.session.Index())
	}
	f.editor.HandleKey("a", false)
	if f.session.Index() != 0 {
		t.Fatalf("a did not go back: index=%d", f.session.Index())
	}

	if !f.editor.HandleKey("p", false) || f.view.mode != "polygon" {
		t.Fatalf("p did not switch mode: %q", f.view.mode)
	}
	if !f.editor.HandleKey("2", false) || f.view.selected != 1 {
		t.Fatalf("digit did not select class: selected=%d", f.view.selected)
	}
	if !f.editor.HandleKey("Escape", false) || f.session.Machine().SelectedClass() != -1 {
		t.Fatalf("escape did not clear the class")
	}
	if f.editor.HandleKey("x", false) || f.editor.HandleKey("q", true) {
		t.Fatalf("unbound keys consumed")
	}

	zoom := f.session.Viewport().Zoom()
	f.editor.HandleKey("plus", false)
	if f.session.Viewport().Zoom() <= zoom {
		t.Fatalf("plus did not zoom in")
	}
	f.editor.HandleKey("f", false)
	if f.session.Viewport().Zoom() != zoom {
		t.Fatalf("fit zoom=%v want %v", f.session.Viewport().Zoom(), zoom)
	}
}

func TestEditorPresenter_UndoRedoCopyPasteDelete(t *testing.T) {
	f := newEditorFixture(t, "a.png")
	f.drawBox()
	store := f.session.Store()
	if store.BoxCount() != 1 {
		t.Fatalf("boxes=%d want 1", store.BoxCount())
	}

	f.editor.HandleKey("z", true)
	if store.BoxCount() != 0 {
		t.Fatalf("undo: boxes=%d", store.BoxCount())
	}
	f.editor.HandleKey("y", true)
	if store.BoxCount() != 1 {
		t.Fatalf("redo: boxes=%d", store.BoxCount())
	}

	// Redo resets the pointer, so copy falls back to the last box.
	f.editor.HandleKey("c", true)
	if len(f.session.Clipboard()) != 1 || f.notes.msgs[len(f.notes.msgs)-1] != "Box copied" {
		t.Fatalf("copy: clipboard=%d notes=%v", len(f.session.Clipboard()), f.notes.msgs)
	}
	f.editor.HandleKey("v", true)
	if store.BoxCount() != 2 {
		t.Fatalf("paste: boxes=%d", store.BoxCount())
	}

	f.canvas.Move(20, 20)
	if !f.editor.HandleKey("Delete", false) || store.BoxCount() != 1 {
		t.Fatalf("delete: boxes=%d", store.BoxCount())
	}
	f.canvas.Leave()
	if f.editor.HandleKey("Delete", false) {
		t.Fatalf("delete without pointer consumed")
	}
}

func TestEditorPresenter_KeysIgnoredDuringBoxDrag(t *testing.T) {
	f := newEditorFixture(t, "a.png", "b.png")
	f.editor.SelectClass(1)
	f.canvas.Press(10, 10, interaction.ButtonPrimary)
	for _, k := range []string{"Escape", "1", "Right", "Delete"} {
		if f.editor.HandleKey(k, false) {
			t.Fatalf("%s consumed mid drag", k)
		}
	}
	f.canvas.Move(40, 30)
	f.canvas.Release(40, 30, interaction.ButtonPrimary)
	b, ok := f.session.Store().Box(0)
	if !ok || b.ClassID != 1 || f.session.Index() != 0 {
		t.Fatalf("box=%+v ok=%v index=%d", b, ok, f.session.Index())
	}
}

func TestEditorPresenter_SaveWritesLabels(t *testing.T) {
	f := newEditorFixture(t, "a.png")
	f.drawBox()
	f.editor.HandleKey("s", true)
	data, err := os.ReadFile(f.session.Dataset().LabelPath("a.png"))
	if err != nil {
		t.Fatalf("label file: %v", err)
	}
	if len(data) == 0 || data[0] != '0' {
		t.Fatalf("label file=%q", data)
	}
	if f.session.Dirty() || f.notes.msgs[len(f.notes.msgs)-1] != "Labels saved" {
		t.Fatalf("dirty=%v notes=%v", f.session.Dirty(), f.notes.msgs)
	}
}

func TestEditorPresenter_ClassCommands(t *testing.T) {
	f := newEditorFixture(t, "a.png")
	f.editor.AddClass("  truck ")
	if len(f.view.names) != 3 || f.view.names[2] != "truck" || f.view.selected != 2 {
		t.Fatalf("add class: view=%+v", f.view)
	}
	f.editor.AddClass("   ")
	if f.session.Classes().Len() != 3 {
		t.Fatalf("blank class added")
	}
	f.editor.RenameClass(0, "auto")
	if f.view.names[0] != "auto" {
		t.Fatalf("rename: names=%v", f.view.names)
	}

	f.editor.SetConfirmer(func(string) bool { return false })
	f.editor.RemoveClass(1)
	if f.session.Classes().Len() != 3 {
		t.Fatalf("declined removal applied")
	}
	f.editor.SetConfirmer(func(string) bool { return true })
	f.editor.RemoveClass(1)
	if f.session.Classes().Len() != 2 || f.view.names[1] != "truck" {
		t.Fatalf("remove: names=%v", f.view.names)
	}
}

func TestEditorPresenter_DeleteAndGrabImage(t *testing.T) {
	f := newEditorFixture(t, "a.png", "b.png")
	f.editor.SetConfirmer(func(string) bool { return false })
	f.editor.DeleteImage()
	if f.session.Dataset().Len() != 2 {
		t.Fatalf("declined delete removed the image")
	}
	f.editor.SetConfirmer(func(string) bool { return true })
	f.editor.DeleteImage()
	if f.session.Dataset().Len() != 1 {
		t.Fatalf("images=%d want 1", f.session.Dataset().Len())
	}
	if _, err := os.Stat(filepath.Join(f.root, "a.png")); !os.IsNotExist(err) {
		t.Fatalf("a.png still on disk: %v", err)
	}
	if rel, _ := f.session.Current(); rel != "b.png" {
		t.Fatalf("current=%q want b.png", rel)
	}

	f.editor.HandleKey("g", true)
	if rel, _ := f.session.Current(); rel != "captures/grab_0001.png" || f.session.Dataset().Len() != 2 {
		t.Fatalf("grab: current=%q images=%d", rel, f.session.Dataset().Len())
	}

	f.editor.grabber = &fakeGrabber{err: errors.New("no display")}
	f.editor.GrabScreen()
	if got := f.notes.msgs[len(f.notes.msgs)-1]; got != "grab screen: no display" {
		t.Fatalf("grab failure note=%q", got)
	}
}

func TestEditorPresenter_PrepareAndCompleteJob(t *testing.T) {
	f := newEditorFixture(t, "a.png", "b.png")
	f.drawBox()
	req, err := f.editor.PrepareJob()
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(req.Images) != 2 || req.Threshold != 0.25 || req.Type != autoannotate.TypeBoxes || req.ClassCount != 2 {
		t.Fatalf("request=%+v", req)
	}
	if f.session.Dirty() {
		t.Fatalf("pending edits not saved before the job")
	}

	labelPath := f.session.Dataset().LabelPath("a.png")
	if err := os.WriteFile(labelPath, []byte("1 0.5 0.5 0.2 0.2\n0 0.1 0.1 0.1 0.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f.editor.CompleteJob(autoannotate.Result{
		State:    autoannotate.JobCompleted,
		Written:  2,
		Statuses: map[string]dataset.Status{"b.png": dataset.StatusReviewNeeded},
	})
	if got := f.session.Statuses().Get("b.png"); got != dataset.StatusReviewNeeded {
		t.Fatalf("b.png status=%q", got)
	}
	if f.session.Store().BoxCount() != 2 {
		t.Fatalf("open image not reloaded: boxes=%d", f.session.Store().BoxCount())
	}

	empty := newEditorFixture(t)
	if _, err := empty.editor.PrepareJob(); !errors.Is(err, dataset.ErrNoImages) {
		t.Fatalf("empty dataset err=%v", err)
	}
}

func TestEditorPresenter_Snapshot(t *testing.T) {
	f := newEditorFixture(t, "a.png", "b.png")
	snap := f.editor.Snapshot()
	if snap.Image != "a.png" || snap.Index != 0 || snap.Total != 2 || snap.Mode != "box" || snap.Class != "" {
		t.Fatalf("snapshot=%+v", snap)
	}
	if snap.Status != dataset.StatusViewed || snap.Counts.NotViewed != 1 {
		t.Fatalf("status=%q counts=%+v", snap.Status, snap.Counts)
	}
	f.drawBox()
	snap = f.editor.Snapshot()
	if !snap.Dirty || snap.Class != "car" || snap.Zoom != 1 {
		t.Fatalf("snapshot after edit=%+v", snap)
	}

	var nilEditor *EditorPresenter
	if nilEditor.Snapshot().Index != -1 || nilEditor.HandleKey("s", true) {
		t.Fatalf("nil presenter misbehaved")
	}
}
