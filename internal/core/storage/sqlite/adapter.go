// Package sqlite stores coverage snapshots in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/johnmartel/AisCoverage/internal/core/config"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/storage"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS coverage_snapshots (
		id               TEXT PRIMARY KEY,
		data_timestamp   INTEGER NOT NULL,
		number_of_cells  INTEGER NOT NULL,
		compressed_cells TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_coverage_snapshots_data_timestamp
		ON coverage_snapshots (data_timestamp DESC);
`

const (
	querySaveSnapshot = `
		INSERT INTO coverage_snapshots (id, data_timestamp, number_of_cells, compressed_cells)
		VALUES (?, ?, ?, ?)
	`
	queryLoadLatestSnapshot = `
		SELECT id, data_timestamp, number_of_cells, compressed_cells
		FROM coverage_snapshots
		ORDER BY data_timestamp DESC
		LIMIT 1
	`
)

// Adapter implements storage.DatabaseInstance on a single SQLite file.
// data_timestamp is stored as unix nanoseconds.
type Adapter struct {
	mu  sync.RWMutex
	db  *sql.DB
	now func() time.Time
}

func NewAdapter() *Adapter {
	return &Adapter{now: time.Now}
}

// Open opens or creates the database file at cfg.Path in WAL mode.
func (a *Adapter) Open(ctx context.Context, cfg config.DatabaseConfig) error {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return fmt.Errorf("enable WAL: %w", err)
	}

	a.mu.Lock()
	a.db = db
	a.mu.Unlock()
	slog.Info("[SQLite] Opened snapshot database", "path", cfg.Path)
	return nil
}

func (a *Adapter) CreateDatabase(ctx context.Context) error {
	db, err := a.handle()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (a *Adapter) Save(ctx context.Context, data map[string][]*coverage.Cell) (storage.Result, error) {
	db, err := a.handle()
	if err != nil {
		return storage.Failure(), err
	}

	doc, err := storage.Marshal(data, a.now())
	if err != nil {
		return storage.Failure(), err
	}
	if _, err := db.ExecContext(ctx, querySaveSnapshot,
		doc.ID.String(),
		doc.DataTimestamp.UnixNano(),
		doc.NumberOfCells,
		doc.CompressedCells,
	); err != nil {
		return storage.Failure(), fmt.Errorf("save snapshot: %w", err)
	}
	return storage.Success(doc.NumberOfCells), nil
}

func (a *Adapter) LoadLatest(ctx context.Context) (map[string][]*coverage.Cell, error) {
	db, err := a.handle()
	if err != nil {
		return nil, err
	}

	var (
		id    string
		nanos int64
		doc   storage.Document
	)
	err = db.QueryRowContext(ctx, queryLoadLatestSnapshot).Scan(&id, &nanos, &doc.NumberOfCells, &doc.CompressedCells)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string][]*coverage.Cell{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if doc.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid snapshot id %q: %w", id, err)
	}
	doc.DataTimestamp = time.Unix(0, nanos).UTC()

	slog.Info("[SQLite] Loaded snapshot",
		"id", doc.ID,
		"data_timestamp", doc.DataTimestamp,
		"cells", doc.NumberOfCells)
	return storage.Unmarshal(doc)
}

func (a *Adapter) Ping(ctx context.Context) error {
	db, err := a.handle()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
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

func (a *Adapter) handle() (*sql.DB, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return nil, storage.ErrNotOpen
	}
	return a.db, nil
}
