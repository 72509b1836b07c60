package config

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion is written into every saved config file.
const SchemaVersion = 1

// Annotation types accepted by AnnotationType.
const (
	AnnotationBoxes    = "boxes"
	AnnotationPolygons = "polygons"
	AnnotationBoth     = "both"
)

// Config holds runtime configuration for the editor, the auto-annotation job and
// the inference engine. Fields are loaded from a JSON file and edited in the config panel.
type Config struct {
	SchemaVersion int  `json:"schema_version"`
	Debug         bool `json:"debug"`

	// Dataset layout
	DatasetDir  string `json:"dataset_dir"`
	LabelDir    string `json:"label_dir"`    // empty means <dataset_dir>/labels
	ClassesFile string `json:"classes_file"` // empty means <dataset_dir>/data.yaml
	CaptureDir  string `json:"capture_dir"`  // relative to dataset_dir

	// Screen region grabbed by Ctrl+G; a zero size grabs the whole screen.
	GrabX int `json:"grab_x"`
	GrabY int `json:"grab_y"`
	GrabW int `json:"grab_w"`
	GrabH int `json:"grab_h"`

	// Editor behaviour
	HistoryLimit      int     `json:"history_limit"`
	VertexHoverRadius float64 `json:"vertex_hover_radius"`
	EdgeHitThreshold  float64 `json:"edge_hit_threshold"`
	HoverCooldownMs   int     `json:"hover_cooldown_ms"`
	PolygonGuardMs    int     `json:"polygon_guard_ms"`
	ZoomStep          float64 `json:"zoom_step"`
	CanvasWidth       int     `json:"canvas_width"`
	CanvasHeight      int     `json:"canvas_height"`
	AutoSaveSeconds   int     `json:"auto_save_seconds"`

	// Auto-annotation
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	AnnotationType      string  `json:"annotation_type"`

	// Inference engine
	ModelPath       string  `json:"model_path"`
	OnnxLibraryPath string  `json:"onnx_library_path"`
	ModelInputSize  int     `json:"model_input_size"`
	IoUThreshold    float64 `json:"iou_threshold"`
	MaskThreshold   float64 `json:"mask_threshold"`
	UseCUDA         bool    `json:"use_cuda"`
	NumThreads      int     `json:"num_threads"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion:       SchemaVersion,
		Debug:               false,
		DatasetDir:          ".",
		CaptureDir:          "captures",
		HistoryLimit:        20,
		VertexHoverRadius:   8,
		EdgeHitThreshold:    5,
		HoverCooldownMs:     120,
		PolygonGuardMs:      100,
		ZoomStep:            1.1,
		CanvasWidth:         960,
		CanvasHeight:        640,
		AutoSaveSeconds:     0,
		ConfidenceThreshold: 0.25,
		AnnotationType:      AnnotationBoxes,
		ModelInputSize:      640,
		IoUThreshold:        0.45,
		MaskThreshold:       0.5,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.SchemaVersion <= 0 {
		c.SchemaVersion = SchemaVersion
	}
	if c.DatasetDir == "" {
		c.DatasetDir = d.DatasetDir
	}
	if c.CaptureDir == "" {
		c.CaptureDir = d.CaptureDir
	}
	if c.GrabW <= 0 || c.GrabH <= 0 {
		c.GrabX, c.GrabY, c.GrabW, c.GrabH = 0, 0, 0, 0
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.VertexHoverRadius <= 0 {
		c.VertexHoverRadius = d.VertexHoverRadius
	}
	if c.EdgeHitThreshold <= 0 {
		c.EdgeHitThreshold = d.EdgeHitThreshold
	}
	if c.HoverCooldownMs < 0 {
		c.HoverCooldownMs = d.HoverCooldownMs
	}
	if c.PolygonGuardMs < 0 {
		c.PolygonGuardMs = d.PolygonGuardMs
	}
	if c.ZoomStep <= 1 || c.ZoomStep > 4 {
		c.ZoomStep = d.ZoomStep
	}
	if c.CanvasWidth < 100 {
		c.CanvasWidth = d.CanvasWidth
	}
	if c.CanvasHeight < 100 {
		c.CanvasHeight = d.CanvasHeight
	}
	if c.AutoSaveSeconds < 0 {
		c.AutoSaveSeconds = 0
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold >= 1 {
		c.ConfidenceThreshold = d.ConfidenceThreshold
	}
	switch c.AnnotationType {
	case AnnotationBoxes, AnnotationPolygons, AnnotationBoth:
	default:
		c.AnnotationType = d.AnnotationType
	}
	if c.ModelInputSize < 32 {
		c.ModelInputSize = d.ModelInputSize
	}
	if c.IoUThreshold <= 0 || c.IoUThreshold > 1 {
		c.IoUThreshold = d.IoUThreshold
	}
	if c.MaskThreshold <= 0 || c.MaskThreshold >= 1 {
		c.MaskThreshold = d.MaskThreshold
	}
	if c.NumThreads < 0 {
		c.NumThreads = 0
	}
	return nil
}

// LabelPath returns the effective label directory.
func (c *Config) LabelPath() string {
	if c.LabelDir != "" {
		return c.LabelDir
	}
	return filepath.Join(c.DatasetDir, "labels")
}

// ClassesPath returns the effective class list file.
func (c *Config) ClassesPath() string {
	if c.ClassesFile != "" {
		return c.ClassesFile
	}
	return filepath.Join(c.DatasetDir, "data.yaml")
}

// GrabRegion returns the configured grab rectangle, if any.
func (c *Config) GrabRegion() (image.Rectangle, bool) {
	if c.GrabW <= 0 || c.GrabH <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(c.GrabX, c.GrabY, c.GrabX+c.GrabW, c.GrabY+c.GrabH), true
}

// SetGrabRegion stores r; an empty rectangle clears the region.
func (c *Config) SetGrabRegion(r image.Rectangle) {
	if r.Empty() {
		c.GrabX, c.GrabY, c.GrabW, c.GrabH = 0, 0, 0, 0
		return
	}
	c.GrabX, c.GrabY, c.GrabW, c.GrabH = r.Min.X, r.Min.Y, r.Dx(), r.Dy()
}

// HoverCooldown is the hover suppression window after a drag release.
func (c *Config) HoverCooldown() time.Duration {
	return time.Duration(c.HoverCooldownMs) * time.Millisecond
}

// PolygonGuard is the window after a polygon is finalized during which presses are ignored.
func (c *Config) PolygonGuard() time.Duration {
	return time.Duration(c.PolygonGuardMs) * time.Millisecond
}

// AutoSaveInterval returns zero when auto-save is disabled.
func (c *Config) AutoSaveInterval() time.Duration {
	return time.Duration(c.AutoSaveSeconds) * time.Second
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
