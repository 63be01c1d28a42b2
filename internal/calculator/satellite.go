package calculator

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

// Satellite tracks satellite reception: hourly counters, per-ship minute
// bitmaps and, per cell, an ordered list of continuous reception spans.
type Satellite struct {
	store      *coverage.Store
	timeMargin time.Duration
}

// NewSatellite builds a satellite calculator. A non-positive timeMargin falls
// back to DefaultTimeMargin.
func NewSatellite(store *coverage.Store, timeMargin time.Duration) *Satellite {
	if timeMargin <= 0 {
		timeMargin = DefaultTimeMargin
	}
	return &Satellite{store: store, timeMargin: timeMargin}
}

// Kind identifies the calculator in the pipeline.
func (s *Satellite) Kind() Kind { return KindSatellite }

// Reject never filters satellite messages.
func (s *Satellite) Reject(*coverage.Message) bool { return false }

// TimeMargin is the widest gap still counted as continuous reception.
func (s *Satellite) TimeMargin() time.Duration { return s.timeMargin }

// Calculate records a satellite reception in the supersource hour span, the
// ship registry and the cell's dynamic spans. Other source types only start
// the analysis clock.
func (s *Satellite) Calculate(m *coverage.Message) {
	started := s.store.Clock().StartAnalysis(coverage.FloorHour(m.Timestamp))
	if m.SourceType != coverage.SourceSatellite {
		return
	}
	ship := m.ShipID()

	cell := s.store.SuperSource().GetOrCreateCell(m.Latitude, m.Longitude)
	cell.UpdateFixedSpan(m.Timestamp, func(span *coverage.TimeSpan) {
		span.AddSatShip(ship)
	})

	s.store.GetOrCreateShip(m.ShipMMSI).Register(m.Timestamp, float32(m.Latitude), float32(m.Longitude), started)

	cell.UpdateDynamicSpans(func(spans []*coverage.TimeSpan) []*coverage.TimeSpan {
		return insertDynamic(spans, m.Timestamp, ship, s.timeMargin)
	})
}

// insertDynamic places a reception at t into spans, which is ordered by First
// with gaps wider than margin between neighbours, and keeps it that way.
func insertDynamic(spans []*coverage.TimeSpan, t time.Time, ship string, margin time.Duration) []*coverage.TimeSpan {
	idx := -1
	for i := len(spans) - 1; i >= 0; i-- {
		if !spans[i].First.After(t) {
			idx = i
			break
		}
	}

	switch {
	case idx < 0:
		spans = slices.Insert(spans, 0, coverage.NewTimeSpan(t))
		idx = 0
	case t.Sub(spans[idx].Last) > margin:
		spans = slices.Insert(spans, idx+1, coverage.NewTimeSpan(t))
		idx++
	case t.After(spans[idx].Last):
		spans[idx].Last = t
	}

	target := spans[idx]
	for idx+1 < len(spans) && spans[idx+1].First.Sub(target.Last) <= margin {
		target.Add(spans[idx+1])
		spans = slices.Delete(spans, idx+1, idx+2)
	}

	target.AddSatShip(ship)
	return spans
}

// FixedTimeSpans returns one bucket per hour in [floor(start), floor(end)),
// each summing the supersource hour spans inside box that lie within
// [start, end].
func (s *Satellite) FixedTimeSpans(start, end time.Time, box coverage.Box) ([]*coverage.TimeSpan, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidQuery, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	last := coverage.FloorHour(end)
	buckets := make(map[int64]*coverage.TimeSpan)
	var ordered []*coverage.TimeSpan
	for h := coverage.FloorHour(start); h.Before(last); h = h.Add(time.Hour) {
		span := coverage.NewHourSpan(h)
		buckets[h.UnixMilli()] = span
		ordered = append(ordered, span)
	}
	if len(ordered) == 0 {
		return ordered, nil
	}

	for _, cell := range s.store.SuperSource().Cells() {
		if !box.ContainsCell(cell) {
			continue
		}
		for key, span := range cell.FixedSpans() {
			if !span.Within(start, end) {
				continue
			}
			if bucket, ok := buckets[key]; ok {
				bucket.Add(span)
			}
		}
	}
	return ordered, nil
}

// DynamicTimeSpans collects the continuous reception spans of every cell in
// box and merges them as if the box were one cell. A zero start or end leaves
// that side of the window open.
func (s *Satellite) DynamicTimeSpans(start, end time.Time, box coverage.Box) ([]*coverage.TimeSpan, error) {
	end = resolveEnd(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidQuery, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	var spans []*coverage.TimeSpan
	for _, cell := range s.store.SuperSource().Cells() {
		if !box.ContainsCell(cell) {
			continue
		}
		for _, span := range cell.DynamicSpans() {
			if span.Within(start, end) {
				spans = append(spans, span)
			}
		}
	}
	if len(spans) == 0 {
		return spans, nil
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].First.Before(spans[j].First) })

	merged := []*coverage.TimeSpan{spans[0]}
	for _, next := range spans[1:] {
		cur := merged[len(merged)-1]
		if !next.First.After(cur.Last) || next.First.Sub(cur.Last) <= s.timeMargin {
			cur.Add(next)
			continue
		}
		merged = append(merged, next)
	}
	return merged, nil
}

// Position is a reported ship position.
type Position struct {
	Lat float32 `json:"lat"`
	Lon float32 `json:"lon"`
}

// TrackSegment is a stretch of minutes in which a ship was heard without a
// gap wider than the time margin.
type TrackSegment struct {
	First     time.Time  `json:"first"`
	Last      time.Time  `json:"last"`
	Positions []Position `json:"positions"`
}

// ShipTrack rebuilds the reception segments of mmsi from its minute bitmap,
// walking hour indices [startHour, endHour) relative to the analysis start.
// Hours before the analysis start have negative indices.
func (s *Satellite) ShipTrack(start, end time.Time, mmsi int) ([]TrackSegment, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidQuery, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	ship := s.store.Ship(mmsi)
	if ship == nil {
		return nil, fmt.Errorf("%w: %d", ErrShipNotFound, mmsi)
	}
	started, ok := s.store.Clock().AnalysisStarted()
	if !ok {
		return []TrackSegment{}, nil
	}

	marginMinutes := int(s.timeMargin / time.Minute)
	startHour := coverage.HourIndex(start, started)
	endHour := coverage.HourIndex(end, started)

	segments := []TrackSegment{}
	previous := 0
	for i := startHour; i < endHour; i++ {
		h := ship.Hour(i)
		if h == nil {
			continue
		}
		for j := 0; j < 60; j++ {
			if !h.GotSignal(j) {
				continue
			}
			current := i*60 + j
			at := started.Add(time.Duration(current) * time.Minute)
			pos := Position{Lat: h.Lat[j], Lon: h.Lon[j]}

			if len(segments) > 0 && current-previous <= marginMinutes {
				seg := &segments[len(segments)-1]
				seg.Last = at
				seg.Positions = append(seg.Positions, pos)
			} else {
				segments = append(segments, TrackSegment{First: at, Last: at, Positions: []Position{pos}})
			}
			previous = current
		}
	}
	return segments, nil
}
