// Package pebblestore keeps coverage snapshots in an embedded Pebble store.
package pebblestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/johnmartel/AisCoverage/internal/core/config"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/storage"
)

const (
	snapshotPrefix = "snapshot|"
	// '}' sorts directly after '|' so it bounds every snapshot key.
	snapshotUpperBound = "snapshot}"
)

// Adapter implements storage.DatabaseInstance on Pebble. Snapshots are keyed
// by zero-padded unix nanos so the newest one sorts last.
type Adapter struct {
	mu  sync.RWMutex
	db  *pebble.DB
	fs  vfs.FS
	now func() time.Time
}

type Option func(*Adapter)

// WithFS replaces the on-disk filesystem, e.g. with vfs.NewMem() in tests.
func WithFS(fs vfs.FS) Option {
	return func(a *Adapter) { a.fs = fs }
}

func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func snapshotKey(ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s%020d", snapshotPrefix, ts.UnixNano()))
}

func (a *Adapter) Open(_ context.Context, cfg config.DatabaseConfig) error {
	opts := &pebble.Options{}
	if a.fs != nil {
		opts.FS = a.fs
	}
	db, err := pebble.Open(cfg.Path, opts)
	if err != nil {
		return fmt.Errorf("pebblestore: open %s: %w", cfg.Path, err)
	}

	a.mu.Lock()
	a.db = db
	a.mu.Unlock()
	slog.Info("[Pebble] Opened snapshot store", "path", cfg.Path)
	return nil
}

// CreateDatabase is a no-op; Pebble creates its directory on Open.
func (a *Adapter) CreateDatabase(context.Context) error {
	_, err := a.handle()
	return err
}

func (a *Adapter) Save(_ context.Context, data map[string][]*coverage.Cell) (storage.Result, error) {
	db, err := a.handle()
	if err != nil {
		return storage.Failure(), err
	}

	doc, err := storage.Marshal(data, a.now())
	if err != nil {
		return storage.Failure(), err
	}
	value, err := json.Marshal(doc)
	if err != nil {
		return storage.Failure(), fmt.Errorf("pebblestore: encode snapshot: %w", err)
	}
	if err := db.Set(snapshotKey(doc.DataTimestamp), value, pebble.Sync); err != nil {
		return storage.Failure(), fmt.Errorf("pebblestore: write snapshot: %w", err)
	}
	return storage.Success(doc.NumberOfCells), nil
}

func (a *Adapter) LoadLatest(_ context.Context) (map[string][]*coverage.Cell, error) {
	db, err := a.handle()
	if err != nil {
		return nil, err
	}

	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(snapshotPrefix),
		UpperBound: []byte(snapshotUpperBound),
	})
	if err != nil {
		return nil, fmt.Errorf("pebblestore: snapshot iterator: %w", err)
	}
	defer iter.Close()

	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return nil, fmt.Errorf("pebblestore: seek latest snapshot: %w", err)
		}
		return map[string][]*coverage.Cell{}, nil
	}

	var doc storage.Document
	if err := json.Unmarshal(iter.Value(), &doc); err != nil {
		return nil, fmt.Errorf("pebblestore: decode snapshot %s: %w", iter.Key(), err)
	}

	slog.Info("[Pebble] Loaded snapshot",
		"id", doc.ID,
		"data_timestamp", doc.DataTimestamp,
		"cells", doc.NumberOfCells)
	return storage.Unmarshal(doc)
}

// Count returns the number of snapshots held.
func (a *Adapter) Count() (int, error) {
	db, err := a.handle()
	if err != nil {
		return 0, err
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(snapshotPrefix),
		UpperBound: []byte(snapshotUpperBound),
	})
	if err != nil {
		return 0, fmt.Errorf("pebblestore: snapshot iterator: %w", err)
	}
	defer iter.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *Adapter) handle() (*pebble.DB, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return nil, storage.ErrNotOpen
	}
	return a.db, nil
}
