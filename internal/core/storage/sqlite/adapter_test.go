package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/config"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func openAdapter(t *testing.T) *Adapter {
	t.Helper()
	a := NewAdapter()
	cfg := config.DatabaseConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "coverage.db")}
	require.NoError(t, a.Open(context.Background(), cfg))
	require.NoError(t, a.CreateDatabase(context.Background()))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func cellWithReceived(id string, n int) *coverage.Cell {
	c := coverage.NewCell(id, 55, 12)
	c.AddReceivedSignals(n)
	c.UpdateFixedSpan(t0, func(s *coverage.TimeSpan) { s.MessageCounterTerrestrial = n })
	return c
}

func TestAdapter_LoadLatestOnEmptyDatabase(t *testing.T) {
	a := openAdapter(t)

	loaded, err := a.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAdapter_SaveThenLoadLatestReturnsNewest(t *testing.T) {
	a := openAdapter(t)
	ctx := context.Background()

	a.now = func() time.Time { return t0 }
	res, err := a.Save(ctx, map[string][]*coverage.Cell{"supersource": {cellWithReceived("a", 1)}})
	require.NoError(t, err)
	assert.Equal(t, storage.Success(1), res)

	a.now = func() time.Time { return t0.Add(time.Hour) }
	res, err = a.Save(ctx, map[string][]*coverage.Cell{
		"supersource": {cellWithReceived("a", 5), cellWithReceived("b", 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, storage.Success(2), res)

	loaded, err := a.LoadLatest(ctx)
	require.NoError(t, err)
	require.Len(t, loaded["supersource"], 2)
	assert.Equal(t, "a", loaded["supersource"][0].ID())
	assert.Equal(t, 5, loaded["supersource"][0].ReceivedSignals())
	assert.NoError(t, a.Ping(ctx))
}

func TestAdapter_ReopenKeepsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.db")
	cfg := config.DatabaseConfig{Type: "sqlite", Path: path}
	ctx := context.Background()

	first := NewAdapter()
	require.NoError(t, first.Open(ctx, cfg))
	require.NoError(t, first.CreateDatabase(ctx))
	_, err := first.Save(ctx, map[string][]*coverage.Cell{"2190047": {cellWithReceived("a", 3)}})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := NewAdapter()
	require.NoError(t, second.Open(ctx, cfg))
	defer second.Close()
	require.NoError(t, second.CreateDatabase(ctx))

	loaded, err := second.LoadLatest(ctx)
	require.NoError(t, err)
	require.Len(t, loaded["2190047"], 1)
	assert.Equal(t, 3, loaded["2190047"][0].ReceivedSignals())
}

func TestAdapter_NotOpen(t *testing.T) {
	a := NewAdapter()
	_, err := a.Save(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrNotOpen)
	assert.ErrorIs(t, a.CreateDatabase(context.Background()), storage.ErrNotOpen)
}
