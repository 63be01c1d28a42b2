package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/observability"
)

// Counters is the throughput view of the ingestion handler.
type Counters interface {
	Received() int64
	Dropped() int64
	Processed() int64
}

// StatsReporter periodically logs throughput and data model size, and keeps
// the size gauges current.
type StatsReporter struct {
	interval time.Duration
	counters Counters
	store    *coverage.Store
	metrics  *observability.Collector
}

func NewStatsReporter(interval time.Duration, counters Counters, store *coverage.Store, metrics *observability.Collector) *StatsReporter {
	return &StatsReporter{
		interval: interval,
		counters: counters,
		store:    store,
		metrics:  metrics,
	}
}

// Start blocks until ctx is cancelled. A non-positive interval disables reporting.
func (r *StatsReporter) Start(ctx context.Context) {
	if r.interval <= 0 {
		slog.Info("[Stats] Reporting disabled")
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("[Stats] Started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("[Stats] Stopped")
			return
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report logs one snapshot of the counters.
func (r *StatsReporter) Report() coverage.Stats {
	st := r.store.Stats()
	r.metrics.SetStoreSize(st.Cells, st.Ships)
	slog.Info("[Stats] Throughput",
		"received", humanize.Comma(r.counters.Received()),
		"dropped", humanize.Comma(r.counters.Dropped()),
		"processed", humanize.Comma(r.counters.Processed()),
		"sources", st.Sources,
		"cells", humanize.Comma(int64(st.Cells)),
		"ships", humanize.Comma(int64(st.Ships)),
		"ship_hours", humanize.Comma(int64(st.ShipHours)))
	return st
}
