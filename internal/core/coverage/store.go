package coverage

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// SourceInfoLookup resolves static metadata for receivers seen on the feed.
type SourceInfoLookup interface {
	Lookup(id string) (SourceInfo, bool)
}

// Store is the in-memory coverage state: sources with their grids, the ship
// registry and the shared clock.
type Store struct {
	spec     GridSpec
	clock    *Clock
	registry SourceInfoLookup

	mu      sync.RWMutex
	sources map[string]*Source

	ships *shardedMap[*Ship]
}

// NewStore creates a store holding only the supersource. registry may be nil.
func NewStore(spec GridSpec, clock *Clock, registry SourceInfoLookup) *Store {
	if clock == nil {
		clock = NewClock()
	}
	s := &Store{
		spec:     spec,
		clock:    clock,
		registry: registry,
		sources:  make(map[string]*Source),
		ships:    newShardedMap[*Ship](),
	}
	super := NewSource(SuperSourceID, spec, 1)
	super.SetInfo(SourceInfo{Name: "All receivers", Visible: true, ReceiverType: ReceiverRegion})
	s.sources[SuperSourceID] = super
	return s
}

func (s *Store) GridSpec() GridSpec { return s.spec }
func (s *Store) Clock() *Clock { return s.clock }

// Source returns the source with id, or nil.
func (s *Store) Source(id string) *Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources[id]
}

// SuperSource returns the aggregate source. It always exists.
func (s *Store) SuperSource() *Source {
	return s.Source(SuperSourceID)
}

// GetOrCreateSource returns the source with id, creating it on first use
// with metadata from the receiver registry when available.
func (s *Store) GetOrCreateSource(id string) *Source {
	if src := s.Source(id); src != nil {
		return src
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if src, ok := s.sources[id]; ok {
		return src
	}
	src := NewSource(id, s.spec, 1)
	if s.registry != nil {
		if info, ok := s.registry.Lookup(id); ok {
			src.SetInfo(info)
		}
	}
	s.sources[id] = src
	return src
}

// Sources returns all sources sorted by identifier.
func (s *Store) Sources() []*Source {
	s.mu.RLock()
	out := make([]*Source, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, src)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier() < out[j].Identifier() })
	return out
}

// Ship returns the registry entry for mmsi, or nil.
func (s *Store) Ship(mmsi int) *Ship {
	sh, _ := s.ships.get(strconv.Itoa(mmsi))
	return sh
}

// GetOrCreateShip returns the registry entry for mmsi, creating it on first use.
func (s *Store) GetOrCreateShip(mmsi int) *Ship {
	return s.ships.getOrCreate(strconv.Itoa(mmsi), func() *Ship { return NewShip(mmsi) })
}

func (s *Store) Ships() []*Ship {
	return s.ships.values()
}

// UpdateCell stores a loaded cell under sourceID.
func (s *Store) UpdateCell(sourceID string, cell *Cell) {
	s.GetOrCreateSource(sourceID).AddCell(cell)
}

// CellsBySource snapshots the grid of every source.
func (s *Store) CellsBySource() map[string][]*Cell {
	out := make(map[string][]*Cell)
	for _, src := range s.Sources() {
		out[src.Identifier()] = src.Cells()
	}
	return out
}

// TrimResult summarizes one TrimWindow pass.
type TrimResult struct {
	Cells     int
	Spans     int
	Ships     int
	ShipHours int
	TrimmedTo time.Time
}

// TrimWindow discards everything strictly older than trimPoint. Cells and
// ships are trimmed one at a time; no lock spans the whole grid.
func (s *Store) TrimWindow(trimPoint time.Time) TrimResult {
	res := TrimResult{TrimmedTo: trimPoint}
	for _, src := range s.Sources() {
		for _, cell := range src.Cells() {
			if n := cell.TrimBefore(trimPoint); n > 0 {
				res.Cells++
				res.Spans += n
			}
		}
	}

	started, ok := s.clock.AnalysisStarted()
	if !ok {
		return res
	}
	idx := HourIndex(trimPoint, started)
	for _, ship := range s.Ships() {
		if n := ship.TrimBefore(idx); n > 0 {
			res.Ships++
			res.ShipHours += n
		}
	}
	return res
}

// Stats is a point-in-time size summary.
type Stats struct {
	Sources    int
	SuperCells int
	Cells      int
	Ships      int
	ShipHours  int
}

func (s *Store) Stats() Stats {
	st := Stats{}
	for _, src := range s.Sources() {
		st.Sources++
		n := src.Len()
		st.Cells += n
		if src.Identifier() == SuperSourceID {
			st.SuperCells = n
		}
	}
	for _, ship := range s.Ships() {
		st.Ships++
		st.ShipHours += ship.HourCount()
	}
	return st
}
