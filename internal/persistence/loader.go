package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/storage"
)

// LoadInto restores the latest snapshot into store and moves the clock's
// first message back to the oldest restored hour. It returns the number of
// cells loaded.
func LoadInto(ctx context.Context, db storage.DatabaseInstance, store *coverage.Store) (int, error) {
	start := time.Now()
	data, err := db.LoadLatest(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load coverage data: %w", err)
	}

	loaded := 0
	for sourceID, cells := range data {
		for _, cell := range cells {
			store.UpdateCell(sourceID, cell)
			loaded++

			keys := cell.FixedSpanKeys()
			if len(keys) == 0 {
				continue
			}
			store.Clock().RecedeFirst(time.UnixMilli(keys[0]).UTC())
		}
	}

	slog.Info("[Persister] Loaded cells",
		"cells", loaded,
		"sources", len(data),
		"duration", time.Since(start))
	return loaded, nil
}
