package presenter

import (
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/domain/editor"
	"github.com/soocke/pixel-label-go/domain/interaction"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

// newSession builds an editor session over 100x50 images with a 100x50 canvas,
// so view and image coordinates coincide.
func newSession(t *testing.T, names ...string) (*editor.Session, string) {
	t.Helper()
	root := t.TempDir()
	for _, n := range names {
		writePNG(t, filepath.Join(root, n), 100, 50)
	}
	classesPath := filepath.Join(root, "data.yaml")
	if err := os.WriteFile(classesPath, []byte("names: [car, bike]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := dataset.Open(root, "")
	if err != nil {
		t.Fatal(err)
	}
	statuses, err := dataset.LoadStatusBook(root)
	if err != nil {
		t.Fatal(err)
	}
	classes, err := dataset.LoadClassList(classesPath)
	if err != nil {
		t.Fatal(err)
	}
	s := editor.NewSession(data, statuses, classes, editor.Options{
		HistoryLimit: 20,
		CanvasWidth:  100,
		CanvasHeight: 50,
		Interaction:  interaction.DefaultOptions(),
	}, discardLogger())
	return s, root
}

type mockCanvasView struct{ frames [][]byte }

func (v *mockCanvasView) ShowCanvas(png []byte) { v.frames = append(v.frames, png) }
