package view

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/soocke/pixel-label-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

var annotationTypes = []string{config.AnnotationBoxes, config.AnnotationPolygons, config.AnnotationBoth}

// ConfigPanel edits the auto-annotation, model and editor settings and writes
// them back into *config.Config on Apply.
type ConfigPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	onApplied func(*config.Config)
	typing    func(bool)
	applyBtn  *ButtonWidget
	typeBox   *TComboboxWidget
	widgets   map[string]*TextWidget
}

// NewConfigPanel creates the panel bound to cfg. onApplied runs after a
// successful apply; typing is told when a field gains or loses focus.
func NewConfigPanel(cfg *config.Config, cfgPath string, onApplied func(*config.Config), typing func(bool), logger *slog.Logger) *ConfigPanel {
	return &ConfigPanel{cfg: cfg, cfgPath: cfgPath, onApplied: onApplied, typing: typing, logger: logger, widgets: make(map[string]*TextWidget)}
}

// Build lays the form out inside parent from startRow and returns the next free row.
func (v *ConfigPanel) Build(parent *FrameWidget, startRow int) (row int) {
	c := v.cfg
	row = startRow
	Grid(Label(Txt("Auto-annotation"), Anchor("w")), In(parent), Row(row), Column(0), Columnspan(3), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	row++
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(14))
		Grid(w, In(parent), Row(row), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		Bind(w, "<FocusIn>", Command(func() { v.setTyping(true) }))
		Bind(w, "<FocusOut>", Command(func() { v.setTyping(false) }))
		v.widgets[id] = w
		row++
	}
	makeRow("confidence", "Confidence", fmt.Sprintf("%.2f", c.ConfidenceThreshold))

	Grid(Label(Txt("Annotation Type"), Anchor("w")), In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	v.typeBox = TCombobox(Values(annotationTypes), Width(12))
	Grid(v.typeBox, In(parent), Row(row), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.typeBox.Current(max(0, slices.Index(annotationTypes, c.AnnotationType)))
	row++

	makeRow("modelPath", "Model Path", c.ModelPath)
	makeRow("onnxLib", "ONNX Runtime Library", c.OnnxLibraryPath)
	makeRow("inputSize", "Model Input Size", strconv.Itoa(c.ModelInputSize))
	makeRow("iou", "IoU Threshold", fmt.Sprintf("%.2f", c.IoUThreshold))
	makeRow("mask", "Mask Threshold", fmt.Sprintf("%.2f", c.MaskThreshold))
	makeRow("cuda", "Use CUDA (true/false)", fmt.Sprintf("%t", c.UseCUDA))
	makeRow("threads", "Threads (0 = auto)", strconv.Itoa(c.NumThreads))
	makeRow("autoSave", "Auto-save Seconds", strconv.Itoa(c.AutoSaveSeconds))
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, In(parent), Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

// SetEditable locks the form while a job runs.
func (v *ConfigPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.typeBox != nil {
		v.typeBox.Configure(State(state))
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *ConfigPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), "")), true
}

// ApplyChanges parses the form into the config, validates and persists it.
func (v *ConfigPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg
	assignFloat := func(id string, dst *float64) {
		if s, ok := v.text(id); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				*dst = f
			}
		}
	}
	assignInt := func(id string, dst *int) {
		if s, ok := v.text(id); ok {
			if i, err := strconv.Atoi(s); err == nil {
				*dst = i
			}
		}
	}
	assignString := func(id string, dst *string) {
		if s, ok := v.text(id); ok {
			*dst = s
		}
	}
	assignFloat("confidence", &cfg.ConfidenceThreshold)
	assignString("modelPath", &cfg.ModelPath)
	assignString("onnxLib", &cfg.OnnxLibraryPath)
	assignInt("inputSize", &cfg.ModelInputSize)
	assignFloat("iou", &cfg.IoUThreshold)
	assignFloat("mask", &cfg.MaskThreshold)
	if s, ok := v.text("cuda"); ok {
		if b, ok := parseBoolLoose(s); ok {
			cfg.UseCUDA = b
		}
	}
	assignInt("threads", &cfg.NumThreads)
	assignInt("autoSave", &cfg.AutoSaveSeconds)
	if v.typeBox != nil {
		if i, err := strconv.Atoi(v.typeBox.Current(nil)); err == nil && i >= 0 && i < len(annotationTypes) {
			cfg.AnnotationType = annotationTypes[i]
		}
	}
	if err := cfg.Validate(); err != nil {
		if v.logger != nil {
			v.logger.Warn("config rejected", "error", err)
		}
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApplied != nil {
		v.onApplied(v.cfg)
	}
}

func (v *ConfigPanel) setTyping(on bool) {
	if v.typing != nil {
		v.typing(on)
	}
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
