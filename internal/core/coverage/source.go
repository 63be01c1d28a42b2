package coverage

import (
	"strings"
	"sync"
	"sync/atomic"
)

// SuperSourceID names the synthetic source aggregating every receiver.
const SuperSourceID = "supersource"

// ReceiverType classifies a Source.
type ReceiverType string

const (
	ReceiverBaseStation ReceiverType = "BASESTATION"
	ReceiverRegion      ReceiverType = "REGION"
	ReceiverNotDefined  ReceiverType = "NOTDEFINED"
)

// ParseReceiverType maps a config string to a ReceiverType, defaulting to NOTDEFINED.
func ParseReceiverType(s string) ReceiverType {
	switch ReceiverType(strings.ToUpper(strings.TrimSpace(s))) {
	case ReceiverBaseStation:
		return ReceiverBaseStation
	case ReceiverRegion:
		return ReceiverRegion
	}
	return ReceiverNotDefined
}

// Source is a logical receiver owning its own grid of cells.
type Source struct {
	identifier string
	spec       GridSpec
	factor     int
	grid       *shardedMap[*Cell]

	messageCount atomic.Int64

	mu           sync.RWMutex
	name         string
	latitude     float64
	longitude    float64
	visible      bool
	receiverType ReceiverType
}

// NewSource creates an empty source whose cells are factor times the grid spec.
func NewSource(id string, spec GridSpec, factor int) *Source {
	return &Source{
		identifier:   id,
		spec:         spec,
		factor:       normalizeFactor(factor),
		grid:         newShardedMap[*Cell](),
		name:         id,
		visible:      true,
		receiverType: ReceiverNotDefined,
	}
}

func (s *Source) Identifier() string { return s.identifier }
func (s *Source) MultiplicationFactor() int { return s.factor }
func (s *Source) GridSpec() GridSpec { return s.spec }
func (s *Source) MessageCount() int64 { return s.messageCount.Load() }
func (s *Source) IncrementMessageCount() { s.messageCount.Add(1) }

// SourceInfo is the descriptive part of a Source.
type SourceInfo struct {
	Name         string
	Latitude     float64
	Longitude    float64
	Visible      bool
	ReceiverType ReceiverType
}

func (s *Source) Info() SourceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SourceInfo{
		Name:         s.name,
		Latitude:     s.latitude,
		Longitude:    s.longitude,
		Visible:      s.visible,
		ReceiverType: s.receiverType,
	}
}

func (s *Source) SetInfo(info SourceInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info.Name != "" {
		s.name = info.Name
	}
	s.latitude = info.Latitude
	s.longitude = info.Longitude
	s.visible = info.Visible
	s.receiverType = info.ReceiverType
}

// CellID returns the id (lat, lon) maps to on this source's grid.
func (s *Source) CellID(lat, lon float64) string {
	return s.spec.CellID(lat, lon, s.factor)
}

// Cell returns the cell containing (lat, lon), or nil.
func (s *Source) Cell(lat, lon float64) *Cell {
	c, _ := s.grid.get(s.CellID(lat, lon))
	return c
}

// CellByID returns the cell with the given id, or nil.
func (s *Source) CellByID(id string) *Cell {
	c, _ := s.grid.get(id)
	return c
}

// GetOrCreateCell returns the cell containing (lat, lon), creating it on first use.
func (s *Source) GetOrCreateCell(lat, lon float64) *Cell {
	id := s.CellID(lat, lon)
	return s.grid.getOrCreate(id, func() *Cell {
		return NewCell(id, s.spec.RoundLat(lat, s.factor), s.spec.RoundLon(lon, s.factor))
	})
}

// AddCell stores cell under its own id, replacing any previous cell.
func (s *Source) AddCell(cell *Cell) {
	s.grid.put(cell.ID(), cell)
}

// Cells snapshots the grid.
func (s *Source) Cells() []*Cell {
	return s.grid.values()
}

func (s *Source) Len() int {
	return s.grid.len()
}
