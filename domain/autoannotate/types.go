package autoannotate

import (
	"context"
	"errors"

	"github.com/soocke/pixel-label-go/domain/annotation"
	"github.com/soocke/pixel-label-go/domain/dataset"
	"github.com/soocke/pixel-label-go/domain/labels"
)

var (
	// ErrJobRunning is returned by Start while a job is in flight.
	ErrJobRunning = errors.New("auto-annotation job already running")
	// ErrInvalidThreshold rejects thresholds outside [0, 1].
	ErrInvalidThreshold = errors.New("confidence threshold must be within [0, 1]")
)

// TriageFactor widens the review band above the confidence threshold: an image
// is flagged when any detection scores below TriageFactor*threshold.
const TriageFactor = 1.2

// Type selects which annotation kinds a job writes.
type Type string

const (
	TypeBoxes    Type = "boxes"
	TypePolygons Type = "polygons"
	TypeBoth     Type = "both"
)

func (t Type) valid() bool {
	return t == TypeBoxes || t == TypePolygons || t == TypeBoth
}

// NormBox is a center based box in image-normalized coordinates.
type NormBox struct {
	CX, CY, W, H float64
}

// Detection is one model output converted at the inference boundary. Polygon
// holds normalized points as an open ring and is empty when the model produced
// no mask.
type Detection struct {
	ClassID    int
	Confidence float64
	Box        NormBox
	Polygon    []annotation.Point
}

// Inferencer runs a detection model on one image file. Implementations may be
// stateful; the orchestrator never calls Infer concurrently.
type Inferencer interface {
	Infer(ctx context.Context, imagePath string, threshold float64) ([]Detection, error)
}

// LabelStore is the per-image label storage the job writes into.
// *dataset.Dataset satisfies it.
type LabelStore interface {
	ImagePath(rel string) string
	ImageSize(rel string) (int, int, error)
	LoadLabels(rel string, w, h int) (labels.Document, error)
	SaveLabels(rel string, boxes []annotation.BoundingBox, polygons []annotation.Polygon, w, h int) error
}

// Request describes one batch job.
type Request struct {
	Images     []string // relative image paths, processed in order
	Threshold  float64
	Type       Type
	ClassCount int // detections with ClassID >= ClassCount are dropped; 0 disables the check
}

// JobState is the lifecycle state of the orchestrator.
type JobState int32

const (
	JobIdle JobState = iota
	JobRunning
	JobCompleted
	JobCancelled
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobIdle:
		return "idle"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	case JobCancelled:
		return "cancelled"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a job.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobCancelled || s == JobFailed
}

// Progress is published after every processed image.
type Progress struct {
	JobID     string
	Percent   float64
	Processed int
	Total     int
	Image     string
}

// Result is the final report of a job. Statuses holds the status decided for
// every processed image; the UI merges it into its status book.
type Result struct {
	JobID        string
	State        JobState
	Processed    int
	Total        int
	Written      int
	Failed       int
	ReviewNeeded []string
	Statuses     map[string]dataset.Status
	Err          error
}
