package presenter

import (
	"log/slog"
	"time"
)

// Saver persists pending edits.
type Saver interface {
	Dirty() bool
	AutoSave() error
}

// AutoSaver saves pending edits every interval. A zero interval disables it.
type AutoSaver struct {
	saver    Saver
	interval time.Duration
	logger   *slog.Logger
	last     time.Time
	saves    int
}

func NewAutoSaver(saver Saver, interval time.Duration, logger *slog.Logger) *AutoSaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoSaver{saver: saver, interval: interval, logger: logger}
}

// SetInterval changes the period; the next save is measured from the last one.
func (a *AutoSaver) SetInterval(d time.Duration) {
	if a != nil {
		a.interval = d
	}
}

// Saves returns how many automatic saves ran.
func (a *AutoSaver) Saves() int {
	if a == nil {
		return 0
	}
	return a.saves
}

// Tick saves when the interval elapsed and there are unsaved edits.
func (a *AutoSaver) Tick(now time.Time) {
	if a == nil || a.saver == nil || a.interval <= 0 {
		return
	}
	if a.last.IsZero() {
		a.last = now
		return
	}
	if now.Sub(a.last) < a.interval {
		return
	}
	a.last = now
	if !a.saver.Dirty() {
		return
	}
	if err := a.saver.AutoSave(); err != nil {
		a.logger.Error("auto-save failed", "error", err)
		return
	}
	a.saves++
	a.logger.Debug("auto-saved")
}
