package calculator

import (
	"fmt"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

// Terrestrial counts terrestrial receptions per cell and hour, for the
// supersource and for every receiver that heard the message.
type Terrestrial struct {
	store *coverage.Store
}

// NewTerrestrial builds a terrestrial calculator over store.
func NewTerrestrial(store *coverage.Store) *Terrestrial {
	return &Terrestrial{store: store}
}

// Kind identifies the calculator in the pipeline.
func (t *Terrestrial) Kind() Kind { return KindTerrestrial }

// Reject never filters; every deduplicated message is counted.
func (t *Terrestrial) Reject(*coverage.Message) bool { return false }

// Calculate counts a terrestrial reception for its receiver and the
// supersource, in the lifetime counters and the hour span.
func (t *Terrestrial) Calculate(m *coverage.Message) {
	if m.SourceType != coverage.SourceTerrestrial {
		return
	}
	ship := m.ShipID()

	super := t.store.SuperSource()
	super.IncrementMessageCount()
	cell := super.GetOrCreateCell(m.Latitude, m.Longitude)
	cell.UpdateFixedSpan(m.Timestamp, func(s *coverage.TimeSpan) {
		s.MessageCounterTerrestrialUnfiltered++
		s.MessageCounterTerrestrial++
		s.DistinctShipsTerrestrial[ship] = struct{}{}
		if m.SignalStrength != nil {
			s.IncrementVsiMessages(*m.SignalStrength)
		}
	})
	if m.SignalStrength != nil {
		cell.IncrementVsiMessages(*m.SignalStrength)
	}
	cell.IncrementReceivedSignals()

	for _, id := range m.Sources {
		if id == coverage.SuperSourceID {
			continue
		}
		src := t.store.GetOrCreateSource(id)
		src.IncrementMessageCount()
		c := src.GetOrCreateCell(m.Latitude, m.Longitude)
		c.UpdateFixedSpan(m.Timestamp, func(s *coverage.TimeSpan) {
			s.MessageCounterTerrestrial++
			s.DistinctShipsTerrestrial[ship] = struct{}{}
		})
		c.IncrementReceivedSignals()
	}
}

// CoverageQuery selects the terrestrial coverage map to build. An empty
// Sources list means every receiver; a zero End is unbounded.
type CoverageQuery struct {
	Sources              []string
	Box                  coverage.Box
	Start                time.Time
	End                  time.Time
	MultiplicationFactor int
}

// CoverageView builds temporary sources on a grid coarsened by
// q.MultiplicationFactor. A receiver's missing count for a cell is what the
// supersource saw there minus what the receiver itself heard.
func (t *Terrestrial) CoverageView(q CoverageQuery) ([]*coverage.Source, error) {
	end := resolveEnd(q.End)
	if q.Start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidQuery, q.Start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	super := t.store.SuperSource()
	var selected []*coverage.Source
	if len(q.Sources) == 0 {
		for _, src := range t.store.Sources() {
			if src.Identifier() != coverage.SuperSourceID {
				selected = append(selected, src)
			}
		}
	} else {
		for _, id := range q.Sources {
			if src := t.store.Source(id); src != nil {
				selected = append(selected, src)
			}
		}
	}

	out := make([]*coverage.Source, 0, len(selected))
	for _, src := range selected {
		view := coverage.NewSource(src.Identifier(), t.store.GridSpec(), q.MultiplicationFactor)
		view.SetInfo(src.Info())

		for _, cell := range src.Cells() {
			if !q.Box.ContainsCell(cell) {
				continue
			}
			received := cell.ReceivedSignalsBetween(q.Start, end)
			total := received
			vsi, avg := 0, 0
			if sc := super.CellByID(cell.ID()); sc != nil {
				total = sc.ReceivedSignalsBetween(q.Start, end) + sc.MissingSignalsBetween(q.Start, end)
				vsi = sc.VsiMessagesBetween(q.Start, end)
				avg = sc.AverageSignalStrengthBetween(q.Start, end)
			}
			missing := total - received
			if missing < 0 {
				missing = 0
			}
			if received == 0 && missing == 0 && vsi == 0 {
				continue
			}

			coarse := view.GetOrCreateCell(cell.Latitude(), cell.Longitude())
			coarse.AddReceivedSignals(received)
			coarse.AddMissingSignals(missing)
			if vsi > 0 {
				coarse.AddVsiMessages(vsi, avg)
			}
		}
		out = append(out, view)
	}
	return out, nil
}
