package view

import (
	"image"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/soocke/pixel-label-go/config"
	"github.com/soocke/pixel-label-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

const (
	regionKey     = "#008080" // made transparent where the platform supports it
	defaultRegion = "640x360+100+100"
)

// RegionPicker opens a see-through window the user moves and resizes over the
// screen area that screen grabs should capture. The confirmed rectangle is
// stored in the config.
type RegionPicker struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgPath string
	region  atomic.Value // image.Rectangle
	win     *ToplevelWidget
}

// NewRegionPicker restores the saved region from cfg.
func NewRegionPicker(cfg *config.Config, cfgPath string, logger *slog.Logger) *RegionPicker {
	v := &RegionPicker{logger: logger, cfg: cfg, cfgPath: cfgPath}
	v.region.Store(image.Rectangle{})
	if cfg != nil {
		if r, ok := cfg.GrabRegion(); ok {
			v.region.Store(r)
		}
	}
	return v
}

// OpenOrFocus shows the picker window.
func (v *RegionPicker) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background(regionKey))
	win.WmTitle("Grab Region")
	v.win = win
	geom := defaultRegion
	if r := v.ActiveRect(); r != nil {
		geom = model.FormatGeometry(*r)
	}
	WmGeometry(win.Window, geom)
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-alpha", 0.6)
	if runtime.GOOS == "windows" {
		WmAttributes(win.Window, "-transparentcolor", regionKey)
	}
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(1))
	center := win.Frame(Background(regionKey))
	Grid(center, Row(0), Column(0), Columnspan(3), Sticky("nsew"))
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Columnspan(3), Sticky("we"))
	confirm := win.Button(Txt("Use Region [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.destroy))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	full := win.Button(Txt("Full Screen"), Command(func() {
		v.Clear()
		v.destroy()
	}))
	Grid(full, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.destroy))
}

// Clear drops the region so grabs capture the whole screen.
func (v *RegionPicker) Clear() { v.store(image.Rectangle{}) }

// ActiveRect returns the confirmed region or nil.
func (v *RegionPicker) ActiveRect() *image.Rectangle {
	r, ok := v.region.Load().(image.Rectangle)
	if !ok || r.Empty() {
		return nil
	}
	return &r
}

func (v *RegionPicker) confirm() {
	if v.win == nil {
		return
	}
	if r, ok := model.ParseGeometry(WmGeometry(v.win.Window)); ok {
		v.store(r)
	}
	v.destroy()
}

func (v *RegionPicker) store(r image.Rectangle) {
	v.region.Store(r)
	if v.cfg == nil {
		return
	}
	v.cfg.SetGrabRegion(r)
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("config save failed", "error", err)
	}
	if v.logger != nil {
		v.logger.Info("grab region set", "region", r.String())
	}
}

func (v *RegionPicker) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}
