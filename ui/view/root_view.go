package view

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soocke/pixel-label-go/assets"
	"github.com/soocke/pixel-label-go/config"
	"github.com/soocke/pixel-label-go/domain/interaction"
	"github.com/soocke/pixel-label-go/ui/model"
	"github.com/soocke/pixel-label-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user commands the root view forwards. Nil entries are ignored.
type Handlers struct {
	Canvas CanvasHandlers
	Class  ClassHandlers

	Key           func(keysym string, ctrl bool) bool
	Prev          func()
	Next          func()
	Save          func()
	Undo          func()
	Redo          func()
	Fit           func()
	ZoomIn        func()
	ZoomOut       func()
	Mode          func(m interaction.Mode)
	DeleteImage   func()
	Grab          func()
	ToggleJob     func()
	Exit          func()
	ConfigApplied func(cfg *config.Config)
}

// RootView composes the window: toolbar, canvas, side panel and status bar.
// It implements every view contract the presenters use.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	Canvas  *CanvasView
	Classes *ClassPanel
	Config  *ConfigPanel
	Status  *StatusBar
	Region  *RegionPicker

	StateLabel *TLabelWidget
	notice     *TLabelWidget
	boxBtn     *TButtonWidget
	polyBtn    *TButtonWidget
	jobBtn     *TButtonWidget
	jobLabel   *LabelWidget
	help       *ToplevelWidget

	typing bool // a text field has focus; global shortcuts are suspended
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger, Region: NewRegionPicker(cfg, cfgPath, logger)}
}

// Build constructs the layout and binds h.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	GridRowConfigure(App, 1, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))

	// Row 0: toolbar
	bar := Frame()
	Grid(bar, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	col := 0
	button := func(text string, fn func()) *ButtonWidget {
		b := Button(Txt(text), Command(call(fn)))
		Grid(b, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		col++
		return b
	}
	button("< Prev", h.Prev)
	button("Next >", h.Next)
	button("Save", h.Save)
	button("Undo", h.Undo)
	button("Redo", h.Redo)
	button("Fit", h.Fit)
	button("Zoom +", h.ZoomIn)
	button("Zoom -", h.ZoomOut)
	rv.boxBtn = TButton(Txt("Box [B]"), Command(func() { callMode(h.Mode, interaction.ModeBox) }))
	Grid(rv.boxBtn, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	col++
	rv.polyBtn = TButton(Txt("Polygon [P]"), Command(func() { callMode(h.Mode, interaction.ModePolygon) }))
	Grid(rv.polyBtn, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	col++
	button("Grab Screen", h.Grab)
	button("Grab Region...", rv.Region.OpenOrFocus)
	del := TButton(Txt("Delete Image"), Style(theme.StyleDangerButton), Command(call(h.DeleteImage)))
	Grid(del, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	col++
	rv.StateLabel = TLabel(Txt("State: <none>"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.4m"))
	col++
	rv.notice = TLabel(Txt(""), Style(theme.StyleNoticeLabel))
	Grid(rv.notice, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.4m"))
	GridColumnConfigure(bar.Window, col, Weight(1))
	col++
	button("Shortcuts", rv.showHelp)
	button("Dark", func() { theme.ToggleDark() })
	button("Exit", h.Exit)

	// Row 1: canvas and side panel
	w, hgt := 960, 640
	if rv.cfg != nil {
		w, hgt = rv.cfg.CanvasWidth, rv.cfg.CanvasHeight
	}
	rv.Canvas = NewCanvasView(1, w, hgt)
	rv.Canvas.Bind(h.Canvas)

	side := Frame()
	Grid(side, Row(1), Column(1), Sticky("ns"), Padx("0.3m"), Pady("0.3m"))
	var row int
	rv.Classes, row = NewClassPanel(side, 0, h.Class, rv.setTyping, rv.logger)

	rv.jobBtn = TButton(Txt("Auto-annotate"), Style(theme.StylePrimaryButton), Command(call(h.ToggleJob)))
	Grid(rv.jobBtn, In(side), Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	row++
	rv.jobLabel = Label(Txt("Idle"), Anchor("w"))
	Grid(rv.jobLabel, In(side), Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"))
	row++

	rv.Config = NewConfigPanel(rv.cfg, rv.cfgPath, h.ConfigApplied, rv.setTyping, rv.logger)
	rv.Config.Build(side, row)

	// Row 2: status bar
	rv.Status = NewStatusBar(2)

	if h.Key != nil {
		Bind(App, "<KeyPress>", Command(func(e *Event) { rv.key(h.Key, e.Keysym, false) }))
		Bind(App, "<Control-KeyPress>", Command(func(e *Event) { rv.key(h.Key, e.Keysym, true) }))
	}
}

func (rv *RootView) key(fn func(string, bool) bool, keysym string, ctrl bool) {
	if rv.typing {
		return
	}
	fn(keysym, ctrl)
}

func (rv *RootView) setTyping(on bool) { rv.typing = on }

// ShowCanvas displays a rendered frame.
func (rv *RootView) ShowCanvas(png []byte) {
	if rv != nil {
		rv.Canvas.ShowCanvas(png)
	}
}

// Notify shows a short message in the toolbar.
func (rv *RootView) Notify(msg string) {
	if rv != nil && rv.notice != nil {
		rv.notice.Configure(Txt(msg))
	}
}

// Confirm asks a yes/no question.
func (rv *RootView) Confirm(prompt string) bool {
	return MessageBox(Icon("question"), Msg(prompt), Title("Confirm"), Type("yesno")) == "yes"
}

// SetStateLabel updates the interaction state label.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetClasses refreshes the class panel.
func (rv *RootView) SetClasses(names []string, selected int) {
	if rv != nil {
		rv.Classes.SetClasses(names, selected)
	}
}

// SetMode highlights the active tool button.
func (rv *RootView) SetMode(mode string) {
	if rv == nil || rv.boxBtn == nil {
		return
	}
	box, poly := "TButton", "TButton"
	if mode == interaction.ModePolygon.String() {
		poly = theme.StyleModeButton
	} else {
		box = theme.StyleModeButton
	}
	rv.boxBtn.Configure(Style(box))
	rv.polyBtn.Configure(Style(poly))
}

// SetStatus updates the status bar.
func (rv *RootView) SetStatus(s model.StatusSnapshot) {
	if rv != nil {
		rv.Status.SetStatus(s)
	}
}

// SetJobElapsed updates the job timer.
func (rv *RootView) SetJobElapsed(d time.Duration) {
	if rv != nil {
		rv.Status.SetJobElapsed(d)
	}
}

// SetJobRunning switches the job button between start and cancel.
func (rv *RootView) SetJobRunning(running bool) {
	if rv == nil || rv.jobBtn == nil {
		return
	}
	if running {
		rv.jobBtn.Configure(Txt("Cancel"), Style(theme.StyleDangerButton))
		return
	}
	rv.jobBtn.Configure(Txt("Auto-annotate"), Style(theme.StylePrimaryButton))
}

// SetJobProgress shows job progress.
func (rv *RootView) SetJobProgress(percent float64, text string) {
	if rv == nil || rv.jobLabel == nil {
		return
	}
	rv.jobLabel.Configure(Txt(fmt.Sprintf("%3.0f%%  %s", percent, text)))
}

// ConfigEditable toggles config panel editability.
func (rv *RootView) ConfigEditable(editable bool) {
	if rv != nil && rv.Config != nil {
		rv.Config.SetEditable(editable)
	}
}

func (rv *RootView) showHelp() {
	if rv.help != nil {
		WmGeometry(rv.help.Window)
		return
	}
	win := App.Toplevel()
	win.WmTitle("Shortcuts")
	lines := assets.Shortcuts()
	txt := win.Text(Height(len(lines)+1), Width(64))
	Grid(txt, Row(0), Column(0), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	txt.Insert("1.0", strings.Join(lines, "\n"))
	txt.Configure(State("disabled"))
	closeHelp := func() {
		Destroy(win)
		rv.help = nil
	}
	WmProtocol(win.Window, "WM_DELETE_WINDOW", closeHelp)
	closeBtn := win.Button(Txt("Close"), Command(closeHelp))
	Grid(closeBtn, Row(1), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	rv.help = win
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}

func callMode(fn func(interaction.Mode), m interaction.Mode) {
	if fn != nil {
		fn(m)
	}
}
