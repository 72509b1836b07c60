package inference

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/soocke/pixel-label-go/domain/autoannotate"
)

// ErrNoModel is returned when no model path is configured.
var ErrNoModel = errors.New("no model configured")

const (
	inputName       = "images"
	detectionOutput = "output0"
	protoOutput     = "output1"
	simplifyEpsilon = 1.5
	letterboxGray   = 114
)

// Config describes the YOLO model and runtime.
type Config struct {
	ModelPath     string
	LibraryPath   string // onnxruntime shared library; DefaultLibraryPath when empty
	InputSize     int
	IoUThreshold  float32
	MaskThreshold float32
	UseCUDA       bool
	NumThreads    int
}

// DefaultLibraryPath guesses the onnxruntime library under ./lib for this platform.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./lib/onnxruntime.dll"
	case "darwin":
		return fmt.Sprintf("./lib/onnxruntime_%s.dylib", runtime.GOARCH)
	default:
		return fmt.Sprintf("./lib/onnxruntime_%s.so", runtime.GOARCH)
	}
}

var (
	envOnce sync.Once
	envErr  error
)

func initEnvironment(libPath string) error {
	envOnce.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		envErr = ort.InitializeEnvironment()
	})
	if envErr != nil {
		return fmt.Errorf("initialize onnxruntime: %w", envErr)
	}
	return nil
}

func newSessionOptions(cfg Config) (*ort.SessionOptions, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			opts.Destroy()
			return nil, fmt.Errorf("set threads: %w", err)
		}
	}
	if cfg.UseCUDA {
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			opts.Destroy()
			return nil, fmt.Errorf("cuda provider options: %w", err)
		}
		defer cuda.Destroy()
		if err := opts.AppendExecutionProviderCUDA(cuda); err != nil {
			opts.Destroy()
			return nil, fmt.Errorf("append cuda provider: %w", err)
		}
	}
	return opts, nil
}

// Engine runs a YOLO detection or segmentation model exported to ONNX. A model
// with a second prototype output is treated as a segmentation model.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	session *ort.DynamicAdvancedSession
	masks   bool
	logger  *slog.Logger
}

// NewEngine loads the model and creates an inference session.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.ModelPath == "" {
		return nil, ErrNoModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LibraryPath == "" {
		cfg.LibraryPath = DefaultLibraryPath()
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = 640
	}
	if cfg.IoUThreshold <= 0 {
		cfg.IoUThreshold = 0.45
	}
	if cfg.MaskThreshold <= 0 {
		cfg.MaskThreshold = 0.5
	}
	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, err
	}
	_, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", cfg.ModelPath, err)
	}
	outNames := []string{detectionOutput}
	masks := false
	for _, o := range outputs {
		if o.Name == protoOutput {
			outNames = append(outNames, protoOutput)
			masks = true
		}
	}
	opts, err := newSessionOptions(cfg)
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, []string{inputName}, outNames, opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("model loaded", "model", cfg.ModelPath, "segmentation", masks, "input_size", cfg.InputSize, "cuda", cfg.UseCUDA)
	return &Engine{cfg: cfg, session: session, masks: masks, logger: logger}, nil
}

// Segmentation reports whether the model produces masks.
func (e *Engine) Segmentation() bool { return e != nil && e.masks }

// Close releases the session.
func (e *Engine) Close() error {
	if e == nil || e.session == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.session.Destroy()
	e.session = nil
	return err
}

// Infer implements autoannotate.Inferencer.
func (e *Engine) Infer(ctx context.Context, imagePath string, threshold float64) ([]autoannotate.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", imagePath, err)
	}
	return e.Predict(img, float32(threshold))
}

// Predict runs the model on img.
func (e *Engine) Predict(img image.Image, threshold float32) ([]autoannotate.Detection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, errors.New("engine closed")
	}
	input, lb, err := preprocess(img, e.cfg.InputSize)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	defer input.Destroy()

	outputs := make([]ort.Value, 1, 2)
	if e.masks {
		outputs = append(outputs, nil)
	}
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	head, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected %s type %T", detectionOutput, outputs[0])
	}
	shape := head.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("unexpected %s shape %v", detectionOutput, shape)
	}
	channels, anchors := int(shape[1]), int(shape[2])

	var (
		protos             []float32
		protoC, protoH, pw int
	)
	if e.masks {
		pt, ok := outputs[1].(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("unexpected %s type %T", protoOutput, outputs[1])
		}
		ps := pt.GetShape()
		if len(ps) != 4 {
			return nil, fmt.Errorf("unexpected %s shape %v", protoOutput, ps)
		}
		protos = pt.GetData()
		protoC, protoH, pw = int(ps[1]), int(ps[2]), int(ps[3])
	}

	cands := parseCandidates(head.GetData(), channels, anchors, channels-4-protoC, protoC, threshold, lb)
	kept := nms(cands, e.cfg.IoUThreshold)
	dets := make([]autoannotate.Detection, 0, len(kept))
	for _, c := range kept {
		d := toDetection(c, lb)
		if e.masks {
			mask := decodeMask(c, protos, protoC, protoH, pw, e.cfg.InputSize, lb, e.cfg.MaskThreshold)
			if pts := MaskPolygon(mask, simplifyEpsilon); pts != nil {
				d.Polygon = normalizePolygon(pts, lb.origW, lb.origH)
			}
		}
		dets = append(dets, d)
	}
	e.logger.Debug("inference done", "candidates", len(cands), "detections", len(dets))
	return dets, nil
}

// preprocess letterboxes img into a square CHW float tensor normalized to [0,1].
func preprocess(img image.Image, size int) (*ort.Tensor[float32], letterbox, error) {
	b := img.Bounds()
	lb := letterbox{origW: b.Dx(), origH: b.Dy()}
	if lb.origW == 0 || lb.origH == 0 {
		return nil, lb, errors.New("empty image")
	}
	lb.scale = float32(size) / float32(max(lb.origW, lb.origH))
	nw := max(1, int(float32(lb.origW)*lb.scale))
	nh := max(1, int(float32(lb.origH)*lb.scale))
	canvas := imaging.New(size, size, color.NRGBA{R: letterboxGray, G: letterboxGray, B: letterboxGray, A: 255})
	canvas = imaging.Paste(canvas, imaging.Resize(img, nw, nh, imaging.Linear), image.Pt(0, 0))

	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		row := canvas.Pix[y*canvas.Stride:]
		for x := 0; x < size; x++ {
			i := y*size + x
			data[i] = float32(row[x*4]) / 255
			data[plane+i] = float32(row[x*4+1]) / 255
			data[2*plane+i] = float32(row[x*4+2]) / 255
		}
	}
	t, err := ort.NewTensor(ort.NewShape(1, 3, int64(size), int64(size)), data)
	return t, lb, err
}

var _ autoannotate.Inferencer = (*Engine)(nil)
