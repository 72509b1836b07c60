package app

import (
	"log/slog"
	"sync"

	"github.com/soocke/pixel-label-go/config"
	"github.com/soocke/pixel-label-go/domain/autoannotate"
	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/domain/inference"
	"github.com/soocke/pixel-label-go/ui/presenter"
)

// jobEngine owns the inference engine and the orchestrator that drives it.
// Both are built on demand because loading a model is slow and may fail.
type jobEngine struct {
	cfg    *config.Config
	data   *dataset.Dataset
	logger *slog.Logger

	mu     sync.Mutex
	engine *inference.Engine
	orch   autoannotate.Orchestrator
}

func newJobEngine(cfg *config.Config, data *dataset.Dataset, logger *slog.Logger) *jobEngine {
	return &jobEngine{cfg: cfg, data: data, logger: logger}
}

// Runner closes any previous engine and loads the configured model.
func (j *jobEngine) Runner() (presenter.JobRunner, error) {
	j.Close()
	eng, err := inference.NewEngine(inference.Config{
		ModelPath:     j.cfg.ModelPath,
		LibraryPath:   j.cfg.OnnxLibraryPath,
		InputSize:     j.cfg.ModelInputSize,
		IoUThreshold:  float32(j.cfg.IoUThreshold),
		MaskThreshold: float32(j.cfg.MaskThreshold),
		UseCUDA:       j.cfg.UseCUDA,
		NumThreads:    j.cfg.NumThreads,
	}, j.logger)
	if err != nil {
		return nil, err
	}
	if j.cfg.AnnotationType != config.AnnotationBoxes && !eng.Segmentation() {
		j.logger.Warn("model has no mask output; polygons fall back to boxes", "model", j.cfg.ModelPath)
	}
	orch := autoannotate.NewOrchestrator(eng, j.data, j.logger)
	j.mu.Lock()
	j.engine, j.orch = eng, orch
	j.mu.Unlock()
	return orch, nil
}

// Stats reports orchestrator counters; zero before the first job.
func (j *jobEngine) Stats() autoannotate.JobStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.orch == nil {
		return autoannotate.JobStats{}
	}
	return j.orch.Stats()
}

// Close cancels a running job and releases the engine.
func (j *jobEngine) Close() {
	j.mu.Lock()
	eng, orch := j.engine, j.orch
	j.engine, j.orch = nil, nil
	j.mu.Unlock()
	if orch != nil && orch.Running() {
		orch.Cancel()
	}
	if eng != nil {
		if err := eng.Close(); err != nil {
			j.logger.Warn("engine close failed", "error", err)
		}
	}
}
