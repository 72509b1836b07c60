package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/pixel-label-go/domain/autoannotate"
)

var errNoRunner = errors.New("no inference engine configured")

// JobModel tracks the running flag, progress and result of a job.
type JobModel interface {
	Running() bool
	Begin(now time.Time) bool
	SetProgress(p autoannotate.Progress)
	Progress() autoannotate.Progress
	Finish(r autoannotate.Result, now time.Time)
}

// JobRunner narrows autoannotate.Orchestrator to what the presenter drives.
type JobRunner interface {
	Start(ctx context.Context, req autoannotate.Request) (string, error)
	Cancel()
	Progress() <-chan autoannotate.Progress
	Done() <-chan autoannotate.Result
}

// JobHost builds requests from the editor and applies finished results to it.
type JobHost interface {
	PrepareJob() (autoannotate.Request, error)
	CompleteJob(r autoannotate.Result)
}

// JobView updates the widgets affected by a running job.
type JobView interface {
	SetJobRunning(running bool)
	SetJobProgress(percent float64, text string)
	ConfigEditable(editable bool)
}

// JobPresenter owns presentation logic for auto-annotation jobs. The runner is
// created on first use so a missing model only matters when a job is started.
type JobPresenter struct {
	ctx       context.Context
	model     JobModel
	newRunner func() (JobRunner, error)
	runner    JobRunner
	host      JobHost
	view      JobView
	notify    Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewJobPresenter constructs a job presenter. ctx bounds every job it starts.
func NewJobPresenter(ctx context.Context, model JobModel, newRunner func() (JobRunner, error), host JobHost, view JobView, notify Notifier, logger *slog.Logger) *JobPresenter {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobPresenter{ctx: ctx, model: model, newRunner: newRunner, host: host, view: view, notify: notify, logger: logger, now: time.Now}
}

// Start launches a job over the dataset. It is a no-op while a job runs.
func (p *JobPresenter) Start() {
	if p == nil || p.model == nil || p.host == nil || p.view == nil {
		return
	}
	if p.model.Running() {
		return
	}
	runner, err := p.ensureRunner()
	if err != nil {
		p.fail("auto-annotation unavailable", err)
		return
	}
	req, err := p.host.PrepareJob()
	if err != nil {
		p.fail("auto-annotation not started", err)
		return
	}
	now := p.now()
	if !p.model.Begin(now) {
		return
	}
	id, err := runner.Start(p.ctx, req)
	if err != nil {
		p.model.Finish(autoannotate.Result{State: autoannotate.JobFailed, Err: err}, now)
		p.fail("auto-annotation not started", err)
		return
	}
	p.logger.Info("auto-annotation started", "job_id", id, "images", len(req.Images), "threshold", req.Threshold, "type", string(req.Type))
	p.view.SetJobRunning(true)
	p.view.ConfigEditable(false)
	p.view.SetJobProgress(0, fmt.Sprintf("0/%d", len(req.Images)))
}

// Cancel asks the running job to stop after the current image.
func (p *JobPresenter) Cancel() {
	if p == nil || p.model == nil || p.runner == nil || p.view == nil {
		return
	}
	if !p.model.Running() {
		return
	}
	p.runner.Cancel()
	p.view.SetJobProgress(p.model.Progress().Percent, "Cancelling...")
}

// ResetRunner drops the cached runner so the next Start builds a new one, for
// example after the model settings changed. It is ignored while a job runs.
func (p *JobPresenter) ResetRunner() {
	if p == nil || p.model == nil || p.model.Running() {
		return
	}
	p.runner = nil
}

// Toggle starts a job or cancels the running one.
func (p *JobPresenter) Toggle() {
	if p == nil || p.model == nil {
		return
	}
	if p.model.Running() {
		p.Cancel()
		return
	}
	p.Start()
}

// Tick drains progress reports and handles job completion.
func (p *JobPresenter) Tick(now time.Time) {
	if p == nil || p.model == nil || p.runner == nil || p.view == nil {
		return
	}
	var (
		latest autoannotate.Progress
		got    bool
	)
drain:
	for {
		select {
		case pr := <-p.runner.Progress():
			latest, got = pr, true
		default:
			break drain
		}
	}
	if got {
		p.model.SetProgress(latest)
		p.view.SetJobProgress(latest.Percent, fmt.Sprintf("%d/%d %s", latest.Processed, latest.Total, latest.Image))
	}
	select {
	case res := <-p.runner.Done():
		p.complete(res, now)
	default:
	}
}

func (p *JobPresenter) complete(res autoannotate.Result, now time.Time) {
	p.model.Finish(res, now)
	if p.host != nil {
		p.host.CompleteJob(res)
	}
	p.view.SetJobRunning(false)
	p.view.ConfigEditable(true)
	summary := Summary(res)
	p.view.SetJobProgress(p.model.Progress().Percent, summary)
	p.logger.Info("auto-annotation finished", "job_id", res.JobID, "state", res.State.String(), "processed", res.Processed, "total", res.Total, "review_needed", len(res.ReviewNeeded), "failed", res.Failed)
	if p.notify != nil {
		p.notify.Notify(summary)
	}
}

func (p *JobPresenter) ensureRunner() (JobRunner, error) {
	if p.runner != nil {
		return p.runner, nil
	}
	if p.newRunner == nil {
		return nil, errNoRunner
	}
	r, err := p.newRunner()
	if err != nil {
		return nil, err
	}
	p.runner = r
	return r, nil
}

func (p *JobPresenter) fail(msg string, err error) {
	p.logger.Warn(msg, "error", err)
	if p.notify != nil {
		p.notify.Notify(fmt.Sprintf("%s: %v", msg, err))
	}
}

// Summary formats a finished job for the progress row.
func Summary(r autoannotate.Result) string {
	switch r.State {
	case autoannotate.JobCompleted:
		s := fmt.Sprintf("Completed: %d/%d images, %d need review", r.Processed, r.Total, len(r.ReviewNeeded))
		if r.Failed > 0 {
			s += fmt.Sprintf(", %d failed", r.Failed)
		}
		return s
	case autoannotate.JobCancelled:
		return fmt.Sprintf("Cancelled after %d/%d images", r.Processed, r.Total)
	case autoannotate.JobFailed:
		if r.Err != nil {
			return fmt.Sprintf("Failed: %v", r.Err)
		}
		return "Failed"
	default:
		return r.State.String()
	}
}
