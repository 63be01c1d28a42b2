package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var snapshotTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return snapshotTime }

func sampleData() map[string][]*coverage.Cell {
	cell := coverage.NewCell("55.6875_12.5775", 55.6875, 12.5775)
	cell.AddReceivedSignals(4)
	cell.UpdateFixedSpan(snapshotTime, func(s *coverage.TimeSpan) {
		s.MessageCounterTerrestrial = 4
	})
	return map[string][]*coverage.Cell{"supersource": {cell}}
}

func TestAdapter_SaveInsertsSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := newAdapterWithDB(db, fixedNow)

	mock.ExpectExec(regexp.QuoteMeta(querySaveSnapshot)).
		WithArgs(sqlmock.AnyArg(), snapshotTime, int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := adapter.Save(context.Background(), sampleData())
	require.NoError(t, err)
	assert.Equal(t, storage.Success(1), res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SaveFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := newAdapterWithDB(db, fixedNow)

	mock.ExpectExec(regexp.QuoteMeta(querySaveSnapshot)).
		WillReturnError(errors.New("connection reset"))

	res, err := adapter.Save(context.Background(), sampleData())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save snapshot")
	assert.Equal(t, storage.StatusFailure, res.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_LoadLatestDecodesNewestRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := newAdapterWithDB(db, fixedNow)
	doc, err := storage.Marshal(sampleData(), snapshotTime)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(queryLoadLatestSnapshot)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_timestamp", "number_of_cells", "compressed_cells"}).
			AddRow(doc.ID.String(), doc.DataTimestamp, doc.NumberOfCells, doc.CompressedCells))

	loaded, err := adapter.LoadLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded["supersource"], 1)
	assert.Equal(t, 4, loaded["supersource"][0].ReceivedSignals())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_LoadLatestEmptyTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := newAdapterWithDB(db, fixedNow)

	mock.ExpectQuery(regexp.QuoteMeta(queryLoadLatestSnapshot)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_timestamp", "number_of_cells", "compressed_cells"}))

	loaded, err := adapter.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		exists  bool
		wantErr bool
	}{
		{name: "table present", exists: true},
		{name: "table missing", exists: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta(querySchemaExists)).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			err = validateSchema(context.Background(), db)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_NotOpen(t *testing.T) {
	adapter := NewAdapter()
	ctx := context.Background()

	_, err := adapter.Save(ctx, sampleData())
	assert.ErrorIs(t, err, storage.ErrNotOpen)
	_, err = adapter.LoadLatest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotOpen)
	assert.ErrorIs(t, adapter.Ping(ctx), storage.ErrNotOpen)
	assert.NoError(t, adapter.Close())
}

func TestScanDocument_ParsesUUID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_timestamp", "number_of_cells", "compressed_cells"}).
			AddRow(id.String(), snapshotTime, int64(0), ""))

	doc, err := scanDocument(db.QueryRow("SELECT 1"))
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.True(t, doc.DataTimestamp.Equal(snapshotTime))
}
