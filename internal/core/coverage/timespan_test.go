package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestHourBoundaries(t *testing.T) {
	ts := t0.Add(17 * time.Minute)

	assert.Equal(t, t0, FloorHour(ts))
	assert.Equal(t, t0.Add(time.Hour), CeilHour(ts))
	assert.Equal(t, t0.UnixMilli(), BucketKey(ts))
	assert.Equal(t, t0.Add(time.Hour), CeilHour(t0), "an exact hour still ends one hour later")
}

func TestNewHourSpan(t *testing.T) {
	s := NewHourSpan(t0.Add(42 * time.Minute))
	assert.Equal(t, t0, s.First)
	assert.Equal(t, t0.Add(time.Hour), s.Last)
	assert.NotNil(t, s.DistinctShipsSat)
	assert.NotNil(t, s.DistinctShipsTerrestrial)
}

func TestTimeSpan_AddWeightsSignalAverage(t *testing.T) {
	a := NewTimeSpan(t0)
	a.VsiMessageCounter = 9
	a.AverageSignalStrength = 0
	b := NewTimeSpan(t0.Add(time.Minute))
	b.VsiMessageCounter = 1
	b.AverageSignalStrength = -100

	a.Add(b)

	assert.Equal(t, 10, a.VsiMessageCounter)
	assert.Equal(t, -10, a.AverageSignalStrength)
}

func TestTimeSpan_AddWithoutSamplesKeepsAverage(t *testing.T) {
	a := NewTimeSpan(t0)
	b := NewTimeSpan(t0)

	a.Add(b)

	assert.Equal(t, 0, a.VsiMessageCounter)
	assert.Equal(t, 0, a.AverageSignalStrength)
}

func TestTimeSpan_AddMergesCountersShipsAndInterval(t *testing.T) {
	a := NewTimeSpan(t0.Add(10 * time.Minute))
	a.AddSatShip("1")
	a.MessageCounterTerrestrial = 2
	a.MissingSignals = 1

	b := NewTimeSpan(t0)
	b.Last = t0.Add(30 * time.Minute)
	b.AddSatShip("1")
	b.AddSatShip("2")
	b.MessageCounterTerrestrialUnfiltered = 4
	b.DistinctShipsTerrestrial["3"] = struct{}{}

	a.Add(b)

	assert.Equal(t, t0, a.First)
	assert.Equal(t, t0.Add(30*time.Minute), a.Last)
	assert.Equal(t, 3, a.MessageCounterSat)
	assert.Equal(t, 2, a.MessageCounterTerrestrial)
	assert.Equal(t, 4, a.MessageCounterTerrestrialUnfiltered)
	assert.Equal(t, 1, a.MissingSignals)
	assert.Len(t, a.DistinctShipsSat, 2)
	assert.Contains(t, a.DistinctShipsTerrestrial, "3")
}

func TestTimeSpan_IncrementVsiMessagesRoundsDown(t *testing.T) {
	s := NewTimeSpan(t0)
	s.VsiMessageCounter = 1
	s.AverageSignalStrength = -15

	s.IncrementVsiMessages(-10)

	assert.Equal(t, 2, s.VsiMessageCounter)
	assert.Equal(t, -13, s.AverageSignalStrength)
}

func TestTimeSpan_CopyIsDeep(t *testing.T) {
	s := NewTimeSpan(t0)
	s.AddSatShip("1")

	c := s.Copy()
	c.AddSatShip("2")
	c.MessageCounterTerrestrial = 99

	require.Len(t, s.DistinctShipsSat, 1)
	assert.Equal(t, 0, s.MessageCounterTerrestrial)
	assert.Equal(t, 2, c.MessageCounterSat)
}

func TestTimeSpan_Within(t *testing.T) {
	s := NewHourSpan(t0)

	assert.True(t, s.Within(t0, t0.Add(time.Hour)))
	assert.True(t, s.Within(t0.Add(-time.Hour), t0.Add(2*time.Hour)))
	assert.False(t, s.Within(t0.Add(time.Minute), t0.Add(2*time.Hour)))
	assert.False(t, s.Within(t0, t0.Add(59*time.Minute)))
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 2, floorDiv(5, 2))
	assert.Equal(t, -3, floorDiv(-5, 2))
	assert.Equal(t, -2, floorDiv(-4, 2))
	assert.Equal(t, 0, floorDiv(0, 7))
}
