package coverage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceType tells which kind of receiver picked up a message.
type SourceType int

const (
	SourceTerrestrial SourceType = iota
	SourceSatellite
)

func (t SourceType) String() string {
	switch t {
	case SourceSatellite:
		return "satellite"
	default:
		return "terrestrial"
	}
}

// ParseSourceType accepts "terrestrial" or "satellite" (any case).
// An empty string means terrestrial.
func ParseSourceType(s string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "terrestrial":
		return SourceTerrestrial, nil
	case "satellite", "sat":
		return SourceSatellite, nil
	}
	return SourceTerrestrial, fmt.Errorf("unknown source type %q", s)
}

// Message is one normalized position report. It lives from decode until the
// dedup buffer flushes it to the calculators.
type Message struct {
	ShipMMSI       int
	Timestamp      time.Time
	Latitude       float64
	Longitude      float64
	SourceType     SourceType
	SignalStrength *int
	Sources        []string
}

// Key identifies the physical transmission. Two receivers hearing the same
// report produce messages with equal keys.
func (m *Message) Key() string {
	return strconv.Itoa(m.ShipMMSI) + "|" + strconv.FormatInt(m.Timestamp.UnixMilli(), 10)
}

// ShipID is the ship identifier used in distinct-ship sets.
func (m *Message) ShipID() string {
	return strconv.Itoa(m.ShipMMSI)
}

// AddSource records another origin receiver. Duplicates are ignored.
func (m *Message) AddSource(id string) {
	if id == "" {
		return
	}
	for _, s := range m.Sources {
		if s == id {
			return
		}
	}
	m.Sources = append(m.Sources, id)
}

// MergeSources folds the origin receivers of other into m.
func (m *Message) MergeSources(other *Message) {
	for _, s := range other.Sources {
		m.AddSource(s)
	}
}
