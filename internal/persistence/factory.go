// Package persistence wires a storage backend to the in-memory coverage store.
package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/johnmartel/AisCoverage/internal/core/storage"
	"github.com/johnmartel/AisCoverage/internal/core/storage/pebblestore"
	"github.com/johnmartel/AisCoverage/internal/core/storage/postgres"
	"github.com/johnmartel/AisCoverage/internal/core/storage/sqlite"
)

var ErrUnknownDatabaseType = errors.New("unknown database type")

// NewDatabaseInstance returns an unopened backend for dbType.
func NewDatabaseInstance(dbType string) (storage.DatabaseInstance, error) {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "memoryonly":
		return storage.MemoryOnly{}, nil
	case "postgres":
		return postgres.NewAdapter(), nil
	case "sqlite":
		return sqlite.NewAdapter(), nil
	case "pebble":
		return pebblestore.NewAdapter(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDatabaseType, dbType)
}
