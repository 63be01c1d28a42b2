package calculator

import (
	"testing"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terrMessage(mmsi int, ts time.Time, lat, lon float64, signal *int, sources ...string) *coverage.Message {
	return &coverage.Message{
		ShipMMSI:       mmsi,
		Timestamp:      ts,
		Latitude:       lat,
		Longitude:      lon,
		SourceType:     coverage.SourceTerrestrial,
		SignalStrength: signal,
		Sources:        sources,
	}
}

func intPtr(v int) *int { return &v }

func TestTerrestrial_Calculate(t *testing.T) {
	store := newTestStore()
	terr := NewTerrestrial(store)

	terr.Calculate(terrMessage(1, minutes(5), 55.7, 12.5, intPtr(-100), "r1", "r2"))
	terr.Calculate(terrMessage(2, minutes(6), 55.7, 12.5, nil, "r1"))

	super := store.SuperSource().Cell(55.7, 12.5)
	require.NotNil(t, super)
	assert.Equal(t, 2, super.ReceivedSignals())
	assert.Equal(t, 1, super.VsiMessages())
	assert.Equal(t, -100, super.AverageSignalStrength())
	assert.Equal(t, int64(2), store.SuperSource().MessageCount())

	hour := super.FixedSpans()[base.UnixMilli()]
	require.NotNil(t, hour)
	assert.Equal(t, 2, hour.MessageCounterTerrestrial)
	assert.Equal(t, 2, hour.MessageCounterTerrestrialUnfiltered)
	assert.Len(t, hour.DistinctShipsTerrestrial, 2)
	assert.Equal(t, 1, hour.VsiMessageCounter)

	r1 := store.Source("r1")
	require.NotNil(t, r1)
	assert.Equal(t, int64(2), r1.MessageCount())
	assert.Equal(t, 2, r1.Cell(55.7, 12.5).ReceivedSignals())

	r2 := store.Source("r2")
	require.NotNil(t, r2)
	assert.Equal(t, 1, r2.Cell(55.7, 12.5).ReceivedSignalsBetween(base, base.Add(time.Hour)))
}

func TestTerrestrial_IgnoresSatelliteMessages(t *testing.T) {
	store := newTestStore()
	NewTerrestrial(store).Calculate(satMessage(1, minutes(5), 55.7, 12.5))

	assert.Nil(t, store.SuperSource().Cell(55.7, 12.5))
	assert.Nil(t, store.Source("sat-1"))
}

func TestTerrestrial_CoverageView(t *testing.T) {
	store := newTestStore()
	terr := NewTerrestrial(store)
	for i := 0; i < 4; i++ {
		terr.Calculate(terrMessage(1, minutes(i), 55.7, 12.5, intPtr(-90), "r1"))
	}
	terr.Calculate(terrMessage(2, minutes(10), 55.7, 12.5, intPtr(-100), "r2"))

	views, err := terr.CoverageView(CoverageQuery{
		Box:                  coverage.WorldBox(),
		Start:                base,
		End:                  base.Add(time.Hour),
		MultiplicationFactor: 1,
	})
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[string]*coverage.Source{}
	for _, v := range views {
		byID[v.Identifier()] = v
	}
	c1 := byID["r1"].Cell(55.7, 12.5)
	require.NotNil(t, c1)
	assert.Equal(t, 4, c1.ReceivedSignals())
	assert.Equal(t, 1, c1.MissingSignals())
	assert.InDelta(t, 0.8, c1.Coverage(), 1e-9)
	assert.Equal(t, 5, c1.VsiMessages())
	assert.Equal(t, -92, c1.AverageSignalStrength())

	c2 := byID["r2"].Cell(55.7, 12.5)
	require.NotNil(t, c2)
	assert.Equal(t, 1, c2.ReceivedSignals())
	assert.Equal(t, 4, c2.MissingSignals())
}

func TestTerrestrial_CoverageViewFoldsIntoCoarseCells(t *testing.T) {
	store := newTestStore()
	terr := NewTerrestrial(store)
	terr.Calculate(terrMessage(1, minutes(0), 55.70, 12.50, nil, "r1"))
	terr.Calculate(terrMessage(1, minutes(1), 55.65, 12.47, nil, "r1"))
	terr.Calculate(terrMessage(1, minutes(2), 10, 10, nil, "r1"))

	views, err := terr.CoverageView(CoverageQuery{
		Sources:              []string{"r1", "unknown"},
		Box:                  coverage.NewBox(55, 12, 56, 13),
		MultiplicationFactor: 4,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, 1, views[0].Len())
	assert.Equal(t, 2, views[0].Cell(55.7, 12.5).ReceivedSignals())
	assert.Equal(t, 4, views[0].MultiplicationFactor())
}

func TestTerrestrial_CoverageViewInvalidWindow(t *testing.T) {
	terr := NewTerrestrial(newTestStore())
	_, err := terr.CoverageView(CoverageQuery{Box: coverage.WorldBox(), Start: base, End: base.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
