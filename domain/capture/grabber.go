package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/vova616/screenshot"
)

// GrabFunc returns a screen capture.
type GrabFunc func() (*image.RGBA, error)

// Grab captures the primary screen.
func Grab() (*image.RGBA, error) { return screenshot.CaptureScreen() }

// GrabRect captures a screen region.
func GrabRect(r image.Rectangle) (*image.RGBA, error) {
	if r.Empty() {
		return nil, errors.New("empty capture region")
	}
	return screenshot.CaptureRect(r)
}

// Grabber saves screen captures as PNG files inside the dataset so they can be
// annotated like any other image.
type Grabber struct {
	root     string
	subdir   string
	grab     GrabFunc
	now      func() time.Time
	logger   *slog.Logger
	sequence atomic.Uint64
	failed   atomic.Uint64
	grabNs   atomic.Uint64

	mu      sync.Mutex
	lastAt  time.Time
	lastRel string
}

// NewGrabber stores captures under <root>/<subdir>.
func NewGrabber(root, subdir string, logger *slog.Logger) *Grabber {
	if logger == nil {
		logger = slog.Default()
	}
	if subdir == "" {
		subdir = "captures"
	}
	return &Grabber{root: root, subdir: filepath.ToSlash(subdir), grab: Grab, now: time.Now, logger: logger}
}

// SetGrabFunc replaces the capture source.
func (g *Grabber) SetGrabFunc(fn GrabFunc) {
	if fn != nil {
		g.grab = fn
	}
}

// Captures returns how many images were saved.
func (g *Grabber) Captures() uint64 { return g.sequence.Load() }

// Stats reports grab counters and the average time spent grabbing.
func (g *Grabber) Stats() GrabStats {
	captures := g.sequence.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(g.grabNs.Load() / captures)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return GrabStats{
		Captures:    captures,
		Failed:      g.failed.Load(),
		AvgGrab:     avg,
		LastCapture: g.lastAt,
		LastImage:   g.lastRel,
	}
}

// Capture grabs the screen, writes it and returns its dataset-relative path.
func (g *Grabber) Capture() (string, error) {
	start := time.Now()
	img, err := g.grab()
	if err != nil {
		g.failed.Add(1)
		return "", fmt.Errorf("capture screen: %w", err)
	}
	if img == nil || img.Bounds().Empty() {
		g.failed.Add(1)
		return "", errors.New("capture screen: empty frame")
	}
	elapsed := time.Since(start)
	seq := g.sequence.Add(1)
	g.grabNs.Add(uint64(elapsed.Nanoseconds()))
	name := fmt.Sprintf("capture_%s_%03d.png", g.now().Format("20060102_150405"), seq)
	rel := path.Join(g.subdir, name)
	abs := filepath.Join(g.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}
	if err := imaging.Save(img, abs); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}
	g.mu.Lock()
	g.lastAt, g.lastRel = g.now(), rel
	g.mu.Unlock()
	g.logger.Info("screen captured", "image", rel, "width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "grab", elapsed)
	return rel, nil
}
