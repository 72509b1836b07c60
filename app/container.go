package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/pixel-label-go/config"
	"github.com/soocke/pixel-label-go/domain/capture"
	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/domain/editor"
	"github.com/soocke/pixel-label-go/domain/interaction"
	"github.com/soocke/pixel-label-go/ui/images"
	"github.com/soocke/pixel-label-go/ui/model"
	"github.com/soocke/pixel-label-go/ui/presenter"
	"github.com/soocke/pixel-label-go/ui/view"
)

// AppContainer assembles the dataset, editor session, models, presenters and
// the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	Dataset  *dataset.Dataset
	Statuses *dataset.StatusBook
	Classes  *dataset.ClassList
	Session  *editor.Session
	Grabber  *capture.Grabber
	Engine   *jobEngine

	Jobs     *model.JobModel
	Status   *model.StatusModel
	RootView *view.RootView

	// Presenters
	CanvasPresenter *presenter.CanvasPresenter
	EditorPresenter *presenter.EditorPresenter
	JobPresenter    *presenter.JobPresenter
	StatePresenter  *presenter.StatePresenter
	StatusPresenter *presenter.StatusPresenter
	AutoSaver       *presenter.AutoSaver
	Loop            *presenter.Loop
}

// BuildContainer opens the dataset and constructs all components. The view is
// not built here; ctx bounds auto-annotation jobs.
func BuildContainer(ctx context.Context, cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}

	data, err := dataset.Open(cfg.DatasetDir, cfg.LabelPath())
	if err != nil {
		return nil, err
	}
	statuses, err := dataset.LoadStatusBook(cfg.DatasetDir)
	if err != nil {
		return nil, err
	}
	classes, err := dataset.LoadClassList(cfg.ClassesPath())
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}
	c.Dataset, c.Statuses, c.Classes = data, statuses, classes
	logger.Info("dataset opened", "dir", cfg.DatasetDir, "images", data.Len(), "classes", classes.Len())

	c.Session = editor.NewSession(data, statuses, classes, editor.Options{
		HistoryLimit: cfg.HistoryLimit,
		ZoomStep:     cfg.ZoomStep,
		CanvasWidth:  cfg.CanvasWidth,
		CanvasHeight: cfg.CanvasHeight,
		Interaction: interaction.Options{
			HoverRadius:   cfg.VertexHoverRadius,
			EdgeThreshold: cfg.EdgeHitThreshold,
			HoverCooldown: cfg.HoverCooldown(),
			PolygonGuard:  cfg.PolygonGuard(),
		},
	}, logger)

	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.Grabber = capture.NewGrabber(cfg.DatasetDir, cfg.CaptureDir, logger)
	region := c.RootView.Region
	c.Grabber.SetGrabFunc(func() (*image.RGBA, error) {
		if r := region.ActiveRect(); r != nil {
			return capture.GrabRect(*r)
		}
		return capture.Grab()
	})
	c.Engine = newJobEngine(cfg, data, logger)

	c.Jobs = model.NewJobModel()
	c.Status = model.NewStatusModel()

	rv := c.RootView
	c.CanvasPresenter = presenter.NewCanvasPresenter(c.Session, images.NewRenderer(), rv, rv, logger)
	c.EditorPresenter = presenter.NewEditorPresenter(c.Session, cfg, c.CanvasPresenter, c.Grabber, rv, rv, logger)
	c.EditorPresenter.SetConfirmer(rv.Confirm)
	c.JobPresenter = presenter.NewJobPresenter(ctx, c.Jobs, c.Engine.Runner, c.EditorPresenter, rv, rv, logger)
	c.StatePresenter = presenter.NewStatePresenter(rv)
	c.Session.Machine().AddListener(c.StatePresenter.OnState)
	c.StatusPresenter = presenter.NewStatusPresenter(c.Status, c.EditorPresenter, c.Jobs, rv)
	c.AutoSaver = presenter.NewAutoSaver(c.Session, cfg.AutoSaveInterval(), logger)
	// Schedule is set by the app once the Tk loop runs.
	c.Loop = presenter.NewLoop(c.StatePresenter, c.JobPresenter, c.AutoSaver, c.CanvasPresenter, c.StatusPresenter, nil)
	return c, nil
}

// Handlers maps view commands onto the presenters.
func (c *AppContainer) Handlers(exit func()) view.Handlers {
	cp, ep := c.CanvasPresenter, c.EditorPresenter
	return view.Handlers{
		Canvas: view.CanvasHandlers{
			Press:       cp.Press,
			Move:        cp.Move,
			Release:     cp.Release,
			DoublePress: cp.DoublePress,
			Leave:       cp.Leave,
			Wheel:       cp.Wheel,
			Resize:      cp.Resize,
		},
		Class: view.ClassHandlers{
			Select: ep.SelectClass,
			Add:    ep.AddClass,
			Rename: ep.RenameClass,
			Remove: ep.RemoveClass,
		},
		Key:         ep.HandleKey,
		Prev:        ep.Prev,
		Next:        ep.Next,
		Save:        ep.Save,
		Undo:        ep.Undo,
		Redo:        ep.Redo,
		Fit:         ep.Fit,
		ZoomIn:      func() { cp.Wheel(true) },
		ZoomOut:     func() { cp.Wheel(false) },
		Mode:        ep.SetMode,
		DeleteImage: ep.DeleteImage,
		Grab:        ep.GrabScreen,
		ToggleJob:   c.JobPresenter.Toggle,
		Exit:        exit,
		ConfigApplied: func(cfg *config.Config) {
			c.AutoSaver.SetInterval(cfg.AutoSaveInterval())
			c.JobPresenter.ResetRunner()
			c.StatusPresenter.Refresh()
		},
	}
}
