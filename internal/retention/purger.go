// Package retention keeps the in-memory data model inside a bounded time window.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/observability"
)

// Trimmer discards data older than a point in time. *coverage.Store implements it.
type Trimmer interface {
	TrimWindow(trimPoint time.Time) coverage.TrimResult
}

// Purger periodically trims the oldest whole hours once the span between the
// first and latest message exceeds maxWindow.
type Purger struct {
	interval  time.Duration
	maxWindow time.Duration
	clock     *coverage.Clock
	store     Trimmer
	metrics   *observability.Collector
}

// NewPurger builds a purger polling every interval and keeping maxHours hours.
func NewPurger(interval time.Duration, maxHours int, clock *coverage.Clock, store Trimmer, metrics *observability.Collector) *Purger {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Purger{
		interval:  interval,
		maxWindow: time.Duration(maxHours) * time.Hour,
		clock:     clock,
		store:     store,
		metrics:   metrics,
	}
}

// Start runs until ctx is cancelled. A failing tick is logged and the loop
// carries on.
func (p *Purger) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("[Purger] Starting retention purger",
		"interval", p.interval,
		"max_window", p.maxWindow)

	for {
		select {
		case <-ticker.C:
			if _, err := p.safeTick(); err != nil {
				slog.Error("[Purger] Tick failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("[Purger] Stopping (context cancelled)")
			return nil
		}
	}
}

func (p *Purger) safeTick() (res *coverage.TrimResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("purger panic: %v", r)
		}
	}()
	return p.Tick(), nil
}

// TrimPoint returns where the window should be cut, and false when the data
// still fits. The window is measured in whole hours from floor(first) to
// ceil(latest).
func (p *Purger) TrimPoint() (time.Time, bool) {
	first, latest, ok := p.clock.Window()
	if !ok || p.maxWindow <= 0 {
		return time.Time{}, false
	}
	end := coverage.CeilHour(latest)
	if end.Sub(coverage.FloorHour(first)) <= p.maxWindow {
		return time.Time{}, false
	}
	return end.Add(-p.maxWindow), true
}

// Tick performs one retention check. It returns nil when nothing was trimmed.
func (p *Purger) Tick() *coverage.TrimResult {
	trimPoint, ok := p.TrimPoint()
	if !ok {
		return nil
	}

	start := time.Now()
	res := p.store.TrimWindow(trimPoint)
	p.clock.AdvanceFirst(trimPoint)
	p.metrics.Purged()

	slog.Info("[Purger] Trimmed retention window",
		"trim_point", trimPoint.UTC().Format(time.RFC3339),
		"cells", res.Cells,
		"spans", res.Spans,
		"ships", res.Ships,
		"ship_hours", res.ShipHours,
		"duration", time.Since(start))
	return &res
}
