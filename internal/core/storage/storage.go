package storage

import (
	"context"
	"errors"

	"github.com/johnmartel/AisCoverage/internal/core/config"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

// ErrNotOpen is returned by a backend used before Open or after Close.
var ErrNotOpen = errors.New("database is not open")

// DatabaseInstance persists and restores the cell grids of every source.
type DatabaseInstance interface {
	Open(ctx context.Context, cfg config.DatabaseConfig) error
	CreateDatabase(ctx context.Context) error
	Save(ctx context.Context, data map[string][]*coverage.Cell) (Result, error)

	// LoadLatest returns the cells of the most recent snapshot keyed by source id.
	// An empty database yields an empty map.
	LoadLatest(ctx context.Context) (map[string][]*coverage.Cell, error)
	Close() error
}

// HealthChecker is implemented by backends that can report connectivity.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the outcome of one Save.
type Result struct {
	Status       Status
	WrittenCells int64
}

func Success(written int64) Result {
	return Result{Status: StatusSuccess, WrittenCells: written}
}

func Failure() Result {
	return Result{Status: StatusFailure}
}

// MemoryOnly keeps nothing. Coverage lives and dies with the process.
type MemoryOnly struct{}

func (MemoryOnly) Open(context.Context, config.DatabaseConfig) error { return nil }

func (MemoryOnly) CreateDatabase(context.Context) error { return nil }

func (MemoryOnly) Save(context.Context, map[string][]*coverage.Cell) (Result, error) {
	return Success(0), nil
}

func (MemoryOnly) LoadLatest(context.Context) (map[string][]*coverage.Cell, error) {
	return map[string][]*coverage.Cell{}, nil
}

func (MemoryOnly) Close() error { return nil }
