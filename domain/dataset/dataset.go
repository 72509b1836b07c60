package dataset

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/labels"
)

// ErrNoImages is returned when a dataset directory contains no supported images.
var ErrNoImages = errors.New("dataset contains no images")

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Dataset is a directory of images with a parallel directory of label files.
// Images are addressed by slash separated paths relative to the root.
type Dataset struct {
	mu       sync.RWMutex
	root     string
	labelDir string
	images   []string
}

// Open scans root for images. labelDir defaults to <root>/labels. The label
// directory is never scanned for images.
func Open(root, labelDir string) (*Dataset, error) {
	if labelDir == "" {
		labelDir = filepath.Join(root, "labels")
	}
	d := &Dataset{root: root, labelDir: labelDir}
	if err := d.Rescan(); err != nil {
		return nil, err
	}
	return d, nil
}

// Rescan rebuilds the sorted image list from disk.
func (d *Dataset) Rescan() error {
	var found []string
	labelAbs, _ := filepath.Abs(d.labelDir)
	err := filepath.WalkDir(d.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			if abs, _ := filepath.Abs(path); abs == labelAbs && path != d.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !imageExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan dataset %s: %w", d.root, err)
	}
	sort.Strings(found)
	d.mu.Lock()
	d.images = found
	d.mu.Unlock()
	return nil
}

// Root returns the dataset directory.
func (d *Dataset) Root() string { return d.root }

// LabelDir returns the label directory.
func (d *Dataset) LabelDir() string { return d.labelDir }

// Images returns a copy of the image list.
func (d *Dataset) Images() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.images...)
}

// Len returns the number of images.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.images)
}

// Image returns the relative path at index i.
func (d *Dataset) Image(i int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.images) {
		return "", false
	}
	return d.images[i], true
}

// IndexOf returns the index of rel or -1.
func (d *Dataset) IndexOf(rel string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := sort.SearchStrings(d.images, rel)
	if i < len(d.images) && d.images[i] == rel {
		return i
	}
	return -1
}

// AddImage inserts rel into the sorted list and returns its index.
func (d *Dataset) AddImage(rel string) int {
	rel = filepath.ToSlash(rel)
	d.mu.Lock()
	defer d.mu.Unlock()
	i := sort.SearchStrings(d.images, rel)
	if i < len(d.images) && d.images[i] == rel {
		return i
	}
	d.images = append(d.images, "")
	copy(d.images[i+1:], d.images[i:])
	d.images[i] = rel
	return i
}

// ImagePath returns the absolute file path of rel.
func (d *Dataset) ImagePath(rel string) string {
	return filepath.Join(d.root, filepath.FromSlash(rel))
}

// LabelPath returns the label file path of rel: the relative path with a .txt
// extension under the label directory.
func (d *Dataset) LabelPath(rel string) string {
	base := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".txt"
	return filepath.Join(d.labelDir, filepath.FromSlash(base))
}

// ImageSize reads the pixel dimensions of rel from its header.
func (d *Dataset) ImageSize(rel string) (int, int, error) {
	f, err := os.Open(d.ImagePath(rel))
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header %s: %w", rel, err)
	}
	return cfg.Width, cfg.Height, nil
}

// LoadLabels reads the label file of rel. A missing file yields an empty document.
func (d *Dataset) LoadLabels(rel string, w, h int) (labels.Document, error) {
	f, err := os.Open(d.LabelPath(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return labels.Document{}, nil
		}
		return labels.Document{}, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()
	return labels.Read(f, w, h)
}

// SaveLabels writes the label file of rel, replacing it atomically.
func (d *Dataset) SaveLabels(rel string, boxes []annotation.BoundingBox, polygons []annotation.Polygon, w, h int) error {
	path := d.LabelPath(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create label dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".labels-*")
	if err != nil {
		return fmt.Errorf("create temp labels: %w", err)
	}
	if err := labels.Write(tmp, boxes, polygons, w, h); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp labels: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace labels: %w", err)
	}
	return nil
}

// RemoveImage deletes the image file and its label file and drops it from the list.
func (d *Dataset) RemoveImage(rel string) error {
	if err := os.Remove(d.ImagePath(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	if err := os.Remove(d.LabelPath(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove labels: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i := sort.SearchStrings(d.images, rel)
	if i < len(d.images) && d.images[i] == rel {
		d.images = append(d.images[:i], d.images[i+1:]...)
	}
	return nil
}
