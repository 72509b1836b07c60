package capture

import "time"

// GrabStats summarises screen grabs for instrumentation.
type GrabStats struct {
	Captures    uint64
	Failed      uint64
	AvgGrab     time.Duration
	LastCapture time.Time
	LastImage   string
}
