package coverage

import (
	"sync"
	"time"
)

// Hour holds per-minute reception flags and the last position seen in each minute.
type Hour struct {
	Signals [60]bool
	Lat     [60]float32
	Lon     [60]float32
}

// GotSignal reports whether the ship was heard in minute m.
func (h *Hour) GotSignal(m int) bool {
	return h.Signals[m]
}

// Ship is the per-vessel reception registry. Hours are indexed from the
// clock's analysis start.
type Ship struct {
	mmsi int

	mu    sync.Mutex
	hours map[int]*Hour
}

func NewShip(mmsi int) *Ship {
	return &Ship{mmsi: mmsi, hours: make(map[int]*Hour)}
}

func (s *Ship) MMSI() int { return s.mmsi }

// minuteOffset is the whole minutes from analysisStarted to ts, floored so
// that a reception half a minute early lands in minute -1.
func minuteOffset(ts, analysisStarted time.Time) int {
	d := ts.Sub(analysisStarted)
	m := int(d / time.Minute)
	if d < 0 && d%time.Minute != 0 {
		m--
	}
	return m
}

// HourIndex is the bucket ts lands in relative to analysisStarted. Times
// before the analysis start give negative indices.
func HourIndex(ts, analysisStarted time.Time) int {
	return floorDiv(minuteOffset(ts, analysisStarted), 60)
}

// Register marks the minute of ts as received and stores the position.
func (s *Ship) Register(ts time.Time, lat, lon float32, analysisStarted time.Time) {
	offset := minuteOffset(ts, analysisStarted)
	idx := floorDiv(offset, 60)
	minute := offset - idx*60

	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hours[idx]
	if !ok {
		h = &Hour{}
		s.hours[idx] = h
	}
	h.Signals[minute] = true
	h.Lat[minute] = lat
	h.Lon[minute] = lon
}

// Hour returns a copy of hour idx, or nil when the ship was not heard then.
func (s *Ship) Hour(idx int) *Hour {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hours[idx]
	if !ok {
		return nil
	}
	c := *h
	return &c
}

func (s *Ship) HourCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hours)
}

// TrimBefore drops every hour bucket with index below idx.
func (s *Ship) TrimBefore(idx int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for i := range s.hours {
		if i < idx {
			delete(s.hours, i)
			removed++
		}
	}
	return removed
}
