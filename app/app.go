package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-label-go/config"
	"github.com/soocke/pixel-label-go/debug"
	"github.com/soocke/pixel-label-go/ui/theme"
)

const (
	tick          = 50 * time.Millisecond
	statsInterval = 10 * time.Second
)

type app struct {
	config  *config.Config
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	afterID string
	closed  bool

	c *AppContainer
}

// NewApp opens the dataset and prepares the main window. Widgets are created in Start.
func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := BuildContainer(ctx, cfg, cfgPath, logger)
	if err != nil {
		cancel()
		return nil, err
	}
	a := &app{config: cfg, logger: logger, ctx: ctx, cancel: cancel, c: c}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+80+60", cfg.CanvasWidth+320, cfg.CanvasHeight+120))
	theme.InitStyles()
	return a, nil
}

// Start builds the UI, loads the first image and blocks in the Tk event loop.
func (a *app) Start() {
	c := a.c
	c.RootView.Build(c.Handlers(a.exitHandler))
	c.EditorPresenter.Start()
	c.StatusPresenter.Refresh()

	if a.config.Debug {
		debug.StartStatsLogger(a.ctx, statsInterval, a.logger, c.Engine.Stats, c.Grabber.Stats)
	}

	c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()
	App.Wait()
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// TclAfter keeps the loop on Tk's event thread.
	a.afterID = TclAfter(tick, a.c.Loop.Tick)
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.cancel()
	c := a.c
	c.CanvasPresenter.Close()
	c.Engine.Close()
	if err := c.Session.AutoSave(); err != nil {
		a.logger.Error("save on exit failed", "error", err)
	}
	Destroy(App)
}
