package autoannotate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/pixel-label-go/domain/dataset"
)

const progressBuffer = 16

// Orchestrator runs batch auto-annotation jobs on a worker goroutine. The UI
// thread starts and cancels jobs and drains Progress and Done; results are
// written to label storage, never to the live annotation store.
type Orchestrator interface {
	Start(ctx context.Context, req Request) (string, error)
	Run(ctx context.Context, req Request) Result
	Cancel()
	Running() bool
	State() JobState
	Progress() <-chan Progress
	Done() <-chan Result
	Stats() JobStats
}

// JobStats aggregates counters across jobs for the debug logger.
type JobStats struct {
	Jobs      uint64
	Images    uint64
	Failures  uint64
	AvgInfer  time.Duration
	LastJobID string
}

type orchestrator struct {
	infer  Inferencer
	store  LabelStore
	logger *slog.Logger

	running   atomic.Bool
	cancelled atomic.Bool
	state     atomic.Int32
	lastJob   atomic.Pointer[string]

	jobs       atomic.Uint64
	images     atomic.Uint64
	failures   atomic.Uint64
	inferNanos atomic.Uint64

	progress chan Progress
	done     chan Result
}

func newOrchestrator(infer Inferencer, store LabelStore, logger *slog.Logger) *orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &orchestrator{
		infer:    infer,
		store:    store,
		logger:   logger,
		progress: make(chan Progress, progressBuffer),
		done:     make(chan Result, 1),
	}
}

// NewOrchestrator returns an idle orchestrator bound to an inference engine and
// label storage.
func NewOrchestrator(infer Inferencer, store LabelStore, logger *slog.Logger) Orchestrator {
	return newOrchestrator(infer, store, logger)
}

func (o *orchestrator) Progress() <-chan Progress { return o.progress }
func (o *orchestrator) Done() <-chan Result       { return o.done }
func (o *orchestrator) Running() bool             { return o.running.Load() }
func (o *orchestrator) State() JobState           { return JobState(o.state.Load()) }

// Cancel asks the running job to stop at the next image boundary.
func (o *orchestrator) Cancel() { o.cancelled.Store(true) }

// Start validates req and launches it on a new goroutine. The final Result is
// delivered on Done.
func (o *orchestrator) Start(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}
	if o.infer == nil {
		return "", fmt.Errorf("start auto-annotation: no inference engine loaded")
	}
	if !o.running.CompareAndSwap(false, true) {
		return "", ErrJobRunning
	}
	id := uuid.NewString()
	o.cancelled.Store(false)
	o.state.Store(int32(JobRunning))
	go func() {
		res := newResult(id, len(req.Images))
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("auto-annotation panic", "job", id, "error", r, "stack", string(debug.Stack()))
				res.State = JobFailed
				res.Err = fmt.Errorf("auto-annotation panic: %v", r)
			}
			o.finish(*res)
		}()
		o.run(ctx, id, req, res)
	}()
	return id, nil
}

// Run executes req on the calling goroutine and returns its result. It does not
// publish on Done and fails with ErrJobRunning while another job is active.
func (o *orchestrator) Run(ctx context.Context, req Request) Result {
	if err := validate(req); err != nil {
		return Result{State: JobFailed, Err: err, Total: len(req.Images)}
	}
	if o.infer == nil {
		return Result{State: JobFailed, Err: fmt.Errorf("run auto-annotation: no inference engine loaded"), Total: len(req.Images)}
	}
	if !o.running.CompareAndSwap(false, true) {
		return Result{State: JobFailed, Err: ErrJobRunning, Total: len(req.Images)}
	}
	defer o.running.Store(false)
	o.cancelled.Store(false)
	o.state.Store(int32(JobRunning))
	id := uuid.NewString()
	res := newResult(id, len(req.Images))
	o.run(ctx, id, req, res)
	o.state.Store(int32(res.State))
	return *res
}

func newResult(id string, total int) *Result {
	return &Result{JobID: id, State: JobCompleted, Total: total, Statuses: make(map[string]dataset.Status, total)}
}

func (o *orchestrator) finish(res Result) {
	o.state.Store(int32(res.State))
	o.running.Store(false)
	select {
	case <-o.done:
	default:
	}
	o.done <- res
}

func validate(req Request) error {
	if req.Threshold < 0 || req.Threshold > 1 {
		return ErrInvalidThreshold
	}
	if len(req.Images) == 0 {
		return dataset.ErrNoImages
	}
	if !req.Type.valid() {
		return fmt.Errorf("unknown annotation type %q", req.Type)
	}
	return nil
}

func (o *orchestrator) stopRequested(ctx context.Context) bool {
	return o.cancelled.Load() || ctx.Err() != nil
}

// run fills res in place so a recovered panic still reports the images
// processed so far.
func (o *orchestrator) run(ctx context.Context, id string, req Request, res *Result) {
	o.jobs.Add(1)
	o.lastJob.Store(&id)
	total := res.Total
	o.logger.Info("auto-annotation started", "job", id, "images", total, "threshold", req.Threshold, "type", string(req.Type))
	started := time.Now()

	for _, rel := range req.Images {
		if o.stopRequested(ctx) {
			res.State = JobCancelled
			break
		}
		status, wrote, ok := o.processImage(ctx, id, rel, req)
		if !ok {
			res.State = JobCancelled
			break
		}
		res.Processed++
		o.images.Add(1)
		switch {
		case status == "":
			res.Failed++
		default:
			res.Statuses[rel] = status
			if status == dataset.StatusReviewNeeded {
				res.ReviewNeeded = append(res.ReviewNeeded, rel)
			}
		}
		if wrote {
			res.Written++
		}
		o.publish(Progress{
			JobID:     id,
			Percent:   float64(res.Processed) / float64(total) * 100,
			Processed: res.Processed,
			Total:     total,
			Image:     rel,
		})
	}

	o.logger.Info("auto-annotation finished",
		"job", id,
		"state", res.State.String(),
		"processed", res.Processed,
		"total", total,
		"review_needed", len(res.ReviewNeeded),
		"failed", res.Failed,
		"elapsed", time.Since(started),
	)
}

// processImage runs one image. It returns the decided status (empty on a
// per-image failure), whether labels were written, and false when the job was
// cancelled before anything was committed for this image. Images that need
// review are left unwritten.
func (o *orchestrator) processImage(ctx context.Context, id, rel string, req Request) (dataset.Status, bool, bool) {
	start := time.Now()
	dets, err := o.infer.Infer(ctx, o.store.ImagePath(rel), req.Threshold)
	o.inferNanos.Add(uint64(time.Since(start).Nanoseconds()))
	if err != nil {
		o.failures.Add(1)
		o.logger.Warn("inference failed", "job", id, "image", rel, "error", err)
		return "", false, !o.stopRequested(ctx)
	}
	if len(dets) == 0 {
		return dataset.StatusViewed, false, !o.stopRequested(ctx)
	}
	w, h, err := o.store.ImageSize(rel)
	if err != nil {
		o.failures.Add(1)
		o.logger.Warn("image size unavailable", "job", id, "image", rel, "error", err)
		return "", false, !o.stopRequested(ctx)
	}
	conv := Convert(dets, req.Type, req.ClassCount, w, h)
	if o.stopRequested(ctx) {
		return "", false, false
	}
	if conv.Empty() {
		return dataset.StatusViewed, false, true
	}
	if NeedsReview(conv.Kept, req.Threshold) {
		o.logger.Debug("image needs review", "job", id, "image", rel, "detections", len(conv.Kept))
		return dataset.StatusReviewNeeded, false, true
	}

	existing, err := o.store.LoadLabels(rel, w, h)
	if err != nil {
		o.logger.Warn("existing labels unreadable", "job", id, "image", rel, "error", err)
	}
	boxes, polys := conv.Boxes, conv.Polygons
	if len(boxes) == 0 {
		boxes = existing.Boxes
	}
	if len(polys) == 0 {
		polys = existing.Polygons
	}
	if err := o.store.SaveLabels(rel, boxes, polys, w, h); err != nil {
		o.failures.Add(1)
		o.logger.Error("labels write failed", "job", id, "image", rel, "error", err)
		return "", false, true
	}

	o.logger.Debug("image auto-annotated", "job", id, "image", rel, "detections", len(conv.Kept))
	return dataset.StatusEdited, true, true
}

// publish sends p without blocking, discarding the oldest queued update when
// the UI falls behind.
func (o *orchestrator) publish(p Progress) {
	for {
		select {
		case o.progress <- p:
			return
		default:
		}
		select {
		case <-o.progress:
		default:
		}
	}
}

func (o *orchestrator) Stats() JobStats {
	st := JobStats{
		Jobs:     o.jobs.Load(),
		Images:   o.images.Load(),
		Failures: o.failures.Load(),
	}
	if st.Images > 0 {
		st.AvgInfer = time.Duration(o.inferNanos.Load() / st.Images)
	}
	if id := o.lastJob.Load(); id != nil {
		st.LastJobID = *id
	}
	return st
}

var _ Orchestrator = (*orchestrator)(nil)
