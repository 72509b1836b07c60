package debug

// Runtime stats logger started when config.Debug is true. Each tick logs
// goroutine count, stack and heap usage, process RSS and, when sources are
// given, auto-annotation and screen grab counters.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/soocke/pixel-label-go/domain/autoannotate"
	"github.com/soocke/pixel-label-go/domain/capture"
)

// JobStatsFunc reports auto-annotation counters.
type JobStatsFunc func() autoannotate.JobStats

// GrabStatsFunc reports screen grab counters.
type GrabStatsFunc func() capture.GrabStats

// Sample is one stats reading.
type Sample struct {
	Goroutines uint64
	StackInuse uint64
	HeapAlloc  uint64
	HeapInuse  uint64
	NumGC      uint32
	RSS        uint64
	RSSErr     error
}

// Read takes a sample.
func Read() Sample {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s := Sample{
		StackInuse: ms.StackInuse,
		HeapAlloc:  ms.HeapAlloc,
		HeapInuse:  ms.HeapInuse,
		NumGC:      ms.NumGC,
	}
	if samples[0].Value.Kind() == metrics.KindUint64 {
		s.Goroutines = samples[0].Value.Uint64()
	} else {
		s.Goroutines = uint64(runtime.NumGoroutine())
	}
	s.RSS, s.RSSErr = processRSS()
	return s
}

// StartStatsLogger logs a Sample every interval until ctx is done.
func StartStatsLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, jobs JobStatsFunc, grabs GrabStatsFunc) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			s := Read()
			if s.RSSErr != nil && !rssErrLogged {
				logger.Warn("stats: rss unavailable", slog.String("err", s.RSSErr.Error()))
				rssErrLogged = true
			}
			attrs := []any{
				slog.Uint64("goroutines", s.Goroutines),
				slog.Uint64("stack_inuse", s.StackInuse),
				slog.Uint64("heap_alloc", s.HeapAlloc),
				slog.Uint64("heap_inuse", s.HeapInuse),
				slog.Uint64("num_gc", uint64(s.NumGC)),
				slog.Uint64("rss", s.RSS),
			}
			if jobs != nil {
				js := jobs()
				attrs = append(attrs,
					slog.Uint64("jobs", js.Jobs),
					slog.Uint64("images_inferred", js.Images),
					slog.Uint64("inference_failures", js.Failures),
					slog.Duration("avg_infer", js.AvgInfer),
				)
			}
			if grabs != nil {
				gs := grabs()
				attrs = append(attrs,
					slog.Uint64("grabs", gs.Captures),
					slog.Uint64("grab_failures", gs.Failed),
					slog.Duration("avg_grab", gs.AvgGrab),
				)
			}
			logger.Info("runtime-stats", attrs...)
		}
	}()
}
