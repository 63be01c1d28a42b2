package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShip_Register(t *testing.T) {
	s := NewShip(219000001)

	s.Register(t0.Add(5*time.Minute+20*time.Second), 55.1, 12.2, t0)
	s.Register(t0.Add(time.Hour+59*time.Minute), 55.3, 12.4, t0)

	h := s.Hour(0)
	require.NotNil(t, h)
	assert.True(t, h.GotSignal(5))
	assert.False(t, h.GotSignal(6))
	assert.InDelta(t, 55.1, h.Lat[5], 1e-5)

	h1 := s.Hour(1)
	require.NotNil(t, h1)
	assert.True(t, h1.GotSignal(59))
	assert.InDelta(t, 12.4, h1.Lon[59], 1e-5)

	assert.Nil(t, s.Hour(2))
	assert.Equal(t, 2, s.HourCount())
}

func TestShip_RegisterBeforeAnalysisStartKept(t *testing.T) {
	s := NewShip(1)
	s.Register(t0.Add(-30*time.Minute), 54.5, 11.5, t0)
	s.Register(t0.Add(-61*time.Minute), 54.6, 11.6, t0)

	h := s.Hour(-1)
	require.NotNil(t, h)
	assert.True(t, h.GotSignal(30))
	assert.InDelta(t, 54.5, h.Lat[30], 1e-5)

	h2 := s.Hour(-2)
	require.NotNil(t, h2)
	assert.True(t, h2.GotSignal(59))
	assert.Equal(t, 2, s.HourCount())

	assert.Equal(t, 1, s.TrimBefore(-1))
	assert.Nil(t, s.Hour(-2))
}

func TestShip_HourReturnsCopy(t *testing.T) {
	s := NewShip(1)
	s.Register(t0, 1, 1, t0)

	h := s.Hour(0)
	h.Signals[10] = true

	assert.False(t, s.Hour(0).GotSignal(10))
}

func TestShip_TrimBefore(t *testing.T) {
	s := NewShip(1)
	for i := 0; i < 5; i++ {
		s.Register(t0.Add(time.Duration(i)*time.Hour), 1, 1, t0)
	}

	assert.Equal(t, 3, s.TrimBefore(3))
	assert.Equal(t, 2, s.HourCount())
	assert.Nil(t, s.Hour(2))
	assert.NotNil(t, s.Hour(3))
}

func TestHourIndex(t *testing.T) {
	assert.Equal(t, 0, HourIndex(t0.Add(59*time.Minute), t0))
	assert.Equal(t, 1, HourIndex(t0.Add(time.Hour), t0))
	assert.Equal(t, 48, HourIndex(t0.Add(48*time.Hour+time.Second), t0))
	assert.Equal(t, -1, HourIndex(t0.Add(-time.Second), t0))
	assert.Equal(t, -1, HourIndex(t0.Add(-time.Hour), t0))
	assert.Equal(t, -2, HourIndex(t0.Add(-time.Hour-time.Second), t0))
}
