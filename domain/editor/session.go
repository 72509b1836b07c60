package editor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/domain/history"
	"github.com/soocke/pixel-label-go/domain/interaction"
	"github.com/soocke/pixel-label-go/domain/viewport"
)

var (
	// ErrImageLoadFailed wraps decode failures when opening an image. The session
	// still moves to the image with an empty store.
	ErrImageLoadFailed = errors.New("image load failed")
	// ErrNoImage is returned by operations that need an open, decoded image.
	ErrNoImage = errors.New("no image loaded")
)

// Kind selects boxes or polygons in index based operations.
type Kind int

const (
	KindBox Kind = iota
	KindPolygon
)

// ImageLoader decodes an image file.
type ImageLoader func(path string) (image.Image, error)

// DefaultLoader decodes with EXIF orientation applied.
func DefaultLoader(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// Options configure a Session.
type Options struct {
	HistoryLimit int
	ZoomStep     float64
	CanvasWidth  int
	CanvasHeight int
	Interaction  interaction.Options
	Loader       ImageLoader
}

// Session is the editor for one dataset: the open image, its annotation store,
// undo history, viewport and interaction machine. It lives on the UI thread.
type Session struct {
	logger   *slog.Logger
	data     *dataset.Dataset
	statuses *dataset.StatusBook
	classes  *dataset.ClassList
	load     ImageLoader

	store   *annotation.Store
	history *history.Stack
	view    *viewport.Controller
	machine *interaction.Machine

	index     int
	img       image.Image
	imgW      int
	imgH      int
	dirty     bool
	clipboard []annotation.BoundingBox
}

// NewSession wires the editor components. No image is open until Open is called.
func NewSession(data *dataset.Dataset, statuses *dataset.StatusBook, classes *dataset.ClassList, opts Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Loader == nil {
		opts.Loader = DefaultLoader
	}
	s := &Session{
		logger:   logger,
		data:     data,
		statuses: statuses,
		classes:  classes,
		load:     opts.Loader,
		store:    &annotation.Store{},
		history:  history.NewStack(opts.HistoryLimit),
		view:     viewport.NewController(opts.ZoomStep),
		index:    -1,
	}
	s.view.Resize(opts.CanvasWidth, opts.CanvasHeight)
	s.machine = interaction.NewMachine(s.store, s.view, s, classes, opts.Interaction, logger)
	return s
}

func (s *Session) Machine() *interaction.Machine  { return s.machine }
func (s *Session) Store() *annotation.Store       { return s.store }
func (s *Session) Viewport() *viewport.Controller { return s.view }
func (s *Session) History() *history.Stack        { return s.history }
func (s *Session) Classes() *dataset.ClassList    { return s.classes }
func (s *Session) Dataset() *dataset.Dataset      { return s.data }
func (s *Session) Statuses() *dataset.StatusBook  { return s.statuses }
func (s *Session) Index() int                     { return s.index }
func (s *Session) Image() image.Image             { return s.img }
func (s *Session) Dirty() bool                    { return s.dirty }
func (s *Session) ImageSize() (int, int)          { return s.imgW, s.imgH }
func (s *Session) Clipboard() []annotation.BoundingBox {
	return append([]annotation.BoundingBox(nil), s.clipboard...)
}

// Current returns the relative path of the open image.
func (s *Session) Current() (string, bool) { return s.data.Image(s.index) }

// Commit records the store as a new undo step and marks the image dirty. The
// interaction machine calls it after every completed edit.
func (s *Session) Commit(reason string) {
	s.history.Push(history.Snapshot(s.index, s.store))
	s.dirty = true
	s.logger.Debug("edit committed", "reason", reason, "image_index", s.index, "history", s.history.Len())
}

// Open loads image index and its labels, fits the viewport and records a
// baseline undo step. Unsaved edits of the previous image are saved first.
func (s *Session) Open(index int) error {
	if err := s.saveIfDirty(); err != nil {
		s.logger.Error("save before navigation", "error", err)
	}
	return s.open(index, true)
}

func (s *Session) open(index int, baseline bool) error {
	rel, ok := s.data.Image(index)
	if !ok {
		return fmt.Errorf("open image: index %d out of range", index)
	}
	s.index = index
	s.dirty = false
	s.machine.Reset()

	img, err := s.load(s.data.ImagePath(rel))
	if err != nil {
		s.img, s.imgW, s.imgH = nil, 0, 0
		s.store.Clear()
		s.view.FitToCanvas(0, 0, s.canvasW(), s.canvasH())
		s.logger.Warn("image load failed", "image", rel, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrImageLoadFailed, rel, err)
	}
	b := img.Bounds()
	s.img, s.imgW, s.imgH = img, b.Dx(), b.Dy()
	s.view.FitToCanvas(s.imgW, s.imgH, s.canvasW(), s.canvasH())

	doc, err := s.data.LoadLabels(rel, s.imgW, s.imgH)
	if err != nil {
		s.logger.Error("labels load failed", "image", rel, "error", err)
	}
	if doc.Skipped > 0 {
		s.logger.Warn("malformed label lines skipped", "image", rel, "skipped", doc.Skipped)
	}
	s.store.Replace(doc.Boxes, doc.Polygons)
	if n := s.classes.Len(); n > 0 {
		s.store.ReassignClassesOnRemoval(n - 1)
	}
	if baseline {
		s.history.Push(history.Snapshot(index, s.store))
	}
	s.statuses.Set(rel, dataset.StatusFor(!s.store.Empty()))
	if err := s.statuses.Save(); err != nil {
		s.logger.Error("status save failed", "error", err)
	}
	s.logger.Info("image opened", "image", rel, "index", index, "boxes", s.store.BoxCount(), "polygons", s.store.PolygonCount())
	return nil
}

// Navigate moves by delta images, clamped to the dataset bounds.
func (s *Session) Navigate(delta int) error {
	n := s.data.Len()
	if n == 0 {
		return dataset.ErrNoImages
	}
	next := s.index + delta
	if next < 0 {
		next = 0
	}
	if next >= n {
		next = n - 1
	}
	if next == s.index {
		return nil
	}
	return s.Open(next)
}

// Save writes the store to the label file of the open image and updates its status.
func (s *Session) Save() error {
	rel, ok := s.Current()
	if !ok || s.img == nil {
		return ErrNoImage
	}
	if err := s.data.SaveLabels(rel, s.store.Boxes(), s.store.Polygons(), s.imgW, s.imgH); err != nil {
		return err
	}
	s.dirty = false
	s.statuses.Set(rel, dataset.StatusFor(!s.store.Empty()))
	if err := s.statuses.Save(); err != nil {
		return err
	}
	s.logger.Info("labels saved", "image", rel, "boxes", s.store.BoxCount(), "polygons", s.store.PolygonCount())
	return nil
}

// AutoSave saves when there are unsaved edits.
func (s *Session) AutoSave() error { return s.saveIfDirty() }

func (s *Session) saveIfDirty() error {
	if !s.dirty || s.img == nil {
		return nil
	}
	return s.Save()
}

// Undo restores the previous history entry.
func (s *Session) Undo() bool {
	e, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restore(e)
	return true
}

// Redo restores the next history entry.
func (s *Session) Redo() bool {
	e, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(e)
	return true
}

// restore applies e, navigating to its image first when it belongs to another one.
func (s *Session) restore(e history.Entry) {
	if e.ImageIndex() != s.index {
		if err := s.saveIfDirty(); err != nil {
			s.logger.Error("save before history navigation", "error", err)
		}
		if err := s.open(e.ImageIndex(), false); err != nil {
			s.logger.Warn("history navigation", "error", err)
		}
	}
	e.ApplyTo(s.store)
	s.machine.Reset()
	s.dirty = true
}

// DeleteAnnotation removes one box or polygon and refreshes the image status.
func (s *Session) DeleteAnnotation(kind Kind, i int) bool {
	var ok bool
	switch kind {
	case KindBox:
		ok = s.store.DeleteBox(i)
	case KindPolygon:
		ok = s.store.DeletePolygon(i)
	}
	if !ok {
		return false
	}
	s.Commit("annotation_deleted")
	if rel, found := s.Current(); found {
		s.statuses.Set(rel, dataset.StatusFor(!s.store.Empty()))
		if err := s.statuses.Save(); err != nil {
			s.logger.Error("status save failed", "error", err)
		}
	}
	return true
}

// CopyBox appends box i to the clipboard.
func (s *Session) CopyBox(i int) bool {
	b, ok := s.store.Box(i)
	if !ok {
		return false
	}
	s.clipboard = append(s.clipboard, b)
	return true
}

// ClearClipboard empties the clipboard.
func (s *Session) ClearClipboard() { s.clipboard = nil }

// PasteBoxes adds every clipboard box to the open image.
func (s *Session) PasteBoxes() int {
	if len(s.clipboard) == 0 || s.img == nil {
		return 0
	}
	n := s.store.PasteBoxes(s.clipboard)
	s.Commit("boxes_pasted")
	return n
}

// AddClass appends a class and persists the class file.
func (s *Session) AddClass(name string) (int, error) {
	i, err := s.classes.Add(name)
	if err != nil {
		return -1, err
	}
	return i, s.classes.Save()
}

// RenameClass renames class i and persists the class file.
func (s *Session) RenameClass(i int, name string) error {
	if err := s.classes.Rename(i, name); err != nil {
		return err
	}
	return s.classes.Save()
}

// RemoveClass drops class i, persists the class file and resets annotations
// whose class no longer exists.
func (s *Session) RemoveClass(i int) error {
	if err := s.classes.Remove(i); err != nil {
		return err
	}
	if err := s.classes.Save(); err != nil {
		return err
	}
	maxValid := s.classes.Len() - 1
	if s.machine.SelectedClass() > maxValid {
		s.machine.ClearClass()
	}
	if changed := s.store.ReassignClassesOnRemoval(maxValid); changed > 0 {
		s.Commit("classes_reassigned")
	}
	return nil
}

// ReloadCurrent re-reads the labels of the open image from disk, discarding
// unsaved edits. Used after a batch job wrote new labels.
func (s *Session) ReloadCurrent() error {
	if s.index < 0 {
		return nil
	}
	s.dirty = false
	return s.open(s.index, true)
}

// ApplyStatuses merges statuses produced elsewhere and persists them.
func (s *Session) ApplyStatuses(updates map[string]dataset.Status) error {
	if len(updates) == 0 {
		return nil
	}
	s.statuses.Merge(updates)
	return s.statuses.Save()
}

// Counts summarizes statuses across the dataset.
func (s *Session) Counts() dataset.Counts { return s.statuses.Counts(s.data.Images()) }

// AddImage registers a new file in the dataset and opens it. History is reset
// because image indices shift.
func (s *Session) AddImage(rel string) error {
	if err := s.saveIfDirty(); err != nil {
		s.logger.Error("save before import", "error", err)
	}
	i := s.data.AddImage(rel)
	s.history.Reset()
	return s.open(i, true)
}

// DeleteCurrentImage removes the open image and its labels from disk and opens
// the image now at the same position.
func (s *Session) DeleteCurrentImage() error {
	rel, ok := s.Current()
	if !ok {
		return ErrNoImage
	}
	if err := s.data.RemoveImage(rel); err != nil {
		return err
	}
	s.statuses.Delete(rel)
	if err := s.statuses.Save(); err != nil {
		s.logger.Error("status save failed", "error", err)
	}
	s.history.Reset()
	s.dirty = false
	s.logger.Info("image deleted", "image", rel)
	if s.data.Len() == 0 {
		s.index = -1
		s.img, s.imgW, s.imgH = nil, 0, 0
		s.store.Clear()
		s.machine.Reset()
		return nil
	}
	return s.open(min(s.index, s.data.Len()-1), true)
}

// ResizeCanvas records a new canvas size.
func (s *Session) ResizeCanvas(w, h int) { s.view.Resize(w, h) }

// Zoom steps the viewport in or out.
func (s *Session) Zoom(in bool) {
	if in {
		s.view.ZoomIn()
	} else {
		s.view.ZoomOut()
	}
}

// Fit refits the image to the canvas.
func (s *Session) Fit() {
	s.view.FitToCanvas(s.imgW, s.imgH, s.canvasW(), s.canvasH())
}

func (s *Session) canvasW() int { w, _ := s.view.CanvasSize(); return w }
func (s *Session) canvasH() int { _, h := s.view.CanvasSize(); return h }
