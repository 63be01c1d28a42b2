package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/storage"
	"github.com/johnmartel/AisCoverage/internal/observability"
)

const finalSaveTimeout = 60 * time.Second

// CellSource supplies the grids to persist. *coverage.Store implements it.
type CellSource interface {
	CellsBySource() map[string][]*coverage.Cell
}

// PersisterService saves a snapshot of every grid on a fixed interval and
// once more on shutdown.
type PersisterService struct {
	interval time.Duration
	db       storage.DatabaseInstance
	source   CellSource
	metrics  *observability.Collector
}

func NewPersisterService(interval time.Duration, db storage.DatabaseInstance, source CellSource, metrics *observability.Collector) *PersisterService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PersisterService{
		interval: interval,
		db:       db,
		source:   source,
		metrics:  metrics,
	}
}

// Start runs until ctx is cancelled, then performs a final save bounded by
// finalSaveTimeout. Failed saves are logged and retried on the next tick.
func (p *PersisterService) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("[Persister] Starting persister", "interval", p.interval)

	for {
		select {
		case <-ticker.C:
			p.SaveOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Persister] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
			defer cancel()

			slog.Info("[Persister] Running final save before shutdown...")
			p.SaveOnce(shutdownCtx)
			return nil
		}
	}
}

// SaveOnce writes one snapshot and reports the outcome.
func (p *PersisterService) SaveOnce(ctx context.Context) storage.Result {
	start := time.Now()
	res, err := p.db.Save(ctx, p.source.CellsBySource())
	elapsed := time.Since(start)

	if err != nil || res.Status != storage.StatusSuccess {
		slog.Error("[Persister] Failed to save coverage data",
			"error", err,
			"duration", elapsed)
		p.metrics.ObservePersist(string(storage.StatusFailure), elapsed)
		return storage.Failure()
	}

	slog.Info("[Persister] Saved cells",
		"cells", res.WrittenCells,
		"duration", elapsed)
	p.metrics.ObservePersist(string(storage.StatusSuccess), elapsed)
	return res
}
