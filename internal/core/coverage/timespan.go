package coverage

import "time"

// FloorHour truncates t to the start of its hour.
func FloorHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// CeilHour returns the end of the hour bucket t falls into.
func CeilHour(t time.Time) time.Time {
	return FloorHour(t).Add(time.Hour)
}

// BucketKey is the fixed-width span key for t: the hour-floor in epoch milliseconds.
func BucketKey(t time.Time) int64 {
	return FloorHour(t).UnixMilli()
}

// TimeSpan is an interval of reception activity with aggregated counters.
// A TimeSpan is not synchronized; it is guarded by the Cell that owns it.
type TimeSpan struct {
	First time.Time
	Last  time.Time

	MessageCounterSat                   int
	MessageCounterTerrestrial           int
	MessageCounterTerrestrialUnfiltered int
	MissingSignals                      int
	VsiMessageCounter                   int
	AverageSignalStrength               int

	DistinctShipsSat         map[string]struct{}
	DistinctShipsTerrestrial map[string]struct{}
}

// NewTimeSpan returns a single-point span [at, at].
func NewTimeSpan(at time.Time) *TimeSpan {
	return &TimeSpan{
		First:                    at,
		Last:                     at,
		DistinctShipsSat:         make(map[string]struct{}),
		DistinctShipsTerrestrial: make(map[string]struct{}),
	}
}

// NewHourSpan returns the fixed-width span covering the hour of t.
func NewHourSpan(t time.Time) *TimeSpan {
	s := NewTimeSpan(FloorHour(t))
	s.Last = CeilHour(t)
	return s
}

// AddSatShip records a satellite reception of ship and bumps the satellite counter.
func (s *TimeSpan) AddSatShip(ship string) {
	s.DistinctShipsSat[ship] = struct{}{}
	s.MessageCounterSat++
}

// IncrementVsiMessages folds one signal-strength sample into the running average.
func (s *TimeSpan) IncrementVsiMessages(signalStrength int) {
	next := s.VsiMessageCounter + 1
	s.AverageSignalStrength = floorDiv(s.VsiMessageCounter*s.AverageSignalStrength+signalStrength, next)
	s.VsiMessageCounter = next
}

// Add merges other into s: counters are summed, ship sets unioned, the
// interval widened and the signal average recomputed weighted by count.
func (s *TimeSpan) Add(other *TimeSpan) {
	s.MessageCounterSat += other.MessageCounterSat
	s.MessageCounterTerrestrial += other.MessageCounterTerrestrial
	s.MessageCounterTerrestrialUnfiltered += other.MessageCounterTerrestrialUnfiltered
	s.MissingSignals += other.MissingSignals

	total := s.VsiMessageCounter + other.VsiMessageCounter
	if total > 0 {
		s.AverageSignalStrength = floorDiv(
			s.VsiMessageCounter*s.AverageSignalStrength+other.VsiMessageCounter*other.AverageSignalStrength,
			total,
		)
	}
	s.VsiMessageCounter = total

	for ship := range other.DistinctShipsSat {
		s.DistinctShipsSat[ship] = struct{}{}
	}
	for ship := range other.DistinctShipsTerrestrial {
		s.DistinctShipsTerrestrial[ship] = struct{}{}
	}

	if other.First.Before(s.First) {
		s.First = other.First
	}
	if other.Last.After(s.Last) {
		s.Last = other.Last
	}
}

// Copy returns a deep snapshot safe to hand out of the owning cell.
func (s *TimeSpan) Copy() *TimeSpan {
	c := *s
	c.DistinctShipsSat = make(map[string]struct{}, len(s.DistinctShipsSat))
	for ship := range s.DistinctShipsSat {
		c.DistinctShipsSat[ship] = struct{}{}
	}
	c.DistinctShipsTerrestrial = make(map[string]struct{}, len(s.DistinctShipsTerrestrial))
	for ship := range s.DistinctShipsTerrestrial {
		c.DistinctShipsTerrestrial[ship] = struct{}{}
	}
	return &c
}

// Within reports whether the span lies fully inside [start, end].
func (s *TimeSpan) Within(start, end time.Time) bool {
	return !s.First.Before(start) && !s.Last.After(end)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
