package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

// Decoder turns a raw packet into a position message. It returns a nil
// message and nil error for packets that carry no usable position.
type Decoder interface {
	Decode(packet []byte) (*coverage.Message, error)
}

// Packet is the JSON position report accepted on the feed.
type Packet struct {
	MMSI           int      `json:"mmsi"`
	Timestamp      int64    `json:"timestamp"` // epoch milliseconds
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	SourceType     string   `json:"source_type"`
	SignalStrength *int     `json:"signal_strength,omitempty"`
	Sources        []string `json:"sources"`
}

var (
	errMissingMMSI      = errors.New("mmsi must be > 0")
	errMissingTimestamp = errors.New("timestamp must be > 0")
)

// JSONDecoder decodes Packet documents.
type JSONDecoder struct{}

func (JSONDecoder) Decode(packet []byte) (*coverage.Message, error) {
	var p Packet
	if err := json.Unmarshal(packet, &p); err != nil {
		return nil, fmt.Errorf("decoding packet: %w", err)
	}
	if p.MMSI <= 0 {
		return nil, errMissingMMSI
	}
	if p.Timestamp <= 0 {
		return nil, errMissingTimestamp
	}
	sourceType, err := coverage.ParseSourceType(p.SourceType)
	if err != nil {
		return nil, err
	}

	// AIS reports 91/181 for "position not available".
	if p.Lat == nil || p.Lon == nil || *p.Lat < -90 || *p.Lat > 90 || *p.Lon < -180 || *p.Lon > 180 {
		return nil, nil
	}

	m := &coverage.Message{
		ShipMMSI:       p.MMSI,
		Timestamp:      time.UnixMilli(p.Timestamp).UTC(),
		Latitude:       *p.Lat,
		Longitude:      *p.Lon,
		SourceType:     sourceType,
		SignalStrength: p.SignalStrength,
	}
	for _, s := range p.Sources {
		m.AddSource(strings.TrimSpace(s))
	}
	return m, nil
}
