package projection

import (
	"time"

	"github.com/johnmartel/AisCoverage/internal/calculator"
	"github.com/shopspring/decimal"
)

// CoverageRequest selects a terrestrial coverage map.
type CoverageRequest struct {
	Sources              []string
	Area                 string
	Start                time.Time
	End                  time.Time
	MultiplicationFactor int
}

// SpanRequest selects satellite spans inside an area.
type SpanRequest struct {
	Area        string
	Start       time.Time
	End         time.Time
	Granularity string // fixed spans only: 1h | 1d | total
}

// ExportRequest selects a coverage download.
type ExportRequest struct {
	Format               string // csv | kml | xml
	DataType             string
	Sources              []string
	Start                time.Time
	End                  time.Time
	MultiplicationFactor int
}

// StatusResponse reports the data window in epoch milliseconds.
type StatusResponse struct {
	FirstMessage    int64  `json:"first_message"`
	LastMessage     int64  `json:"last_message"`
	AnalysisStatus  string `json:"analysis_status"`
	AnalysisStarted *int64 `json:"analysis_started,omitempty"`
}

// SourceSummary describes one receiver.
type SourceSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Visible      bool    `json:"visible"`
	MessageCount int64   `json:"message_count"`
	CellCount    int     `json:"cell_count"`
}

type CoverageCell struct {
	ID                    string          `json:"id"`
	LatStart              float64         `json:"lat_start"`
	LonStart              float64         `json:"lon_start"`
	LatEnd                float64         `json:"lat_end"`
	LonEnd                float64         `json:"lon_end"`
	Received              int             `json:"received"`
	Missing               int             `json:"missing"`
	CoveragePercentage    decimal.Decimal `json:"coverage_percentage"`
	VsiMessages           int             `json:"vsi_messages"`
	AverageSignalStrength int             `json:"average_signal_strength"`
}

type CoverageSource struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Cells []CoverageCell `json:"cells"`
}

type CoverageResponse struct {
	MultiplicationFactor int              `json:"multiplication_factor"`
	Sources              []CoverageSource `json:"sources"`
}

// SpanValue is one time span with its counters flattened.
type SpanValue struct {
	First                               time.Time `json:"first"`
	Last                                time.Time `json:"last"`
	MessageCounterSat                   int       `json:"message_counter_sat"`
	MessageCounterTerrestrial           int       `json:"message_counter_terrestrial"`
	MessageCounterTerrestrialUnfiltered int       `json:"message_counter_terrestrial_unfiltered"`
	MissingSignals                      int       `json:"missing_signals"`
	VsiMessages                         int       `json:"vsi_messages"`
	AverageSignalStrength               int       `json:"average_signal_strength"`
	DistinctShipsSat                    int       `json:"distinct_ships_sat"`
	DistinctShipsTerrestrial            int       `json:"distinct_ships_terrestrial"`
}

type SpansResponse struct {
	TimeMargin string      `json:"time_margin"`
	Spans      []SpanValue `json:"spans"`
}

type FixedSpansResponse struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity string      `json:"granularity"`
	Buckets     []SpanValue `json:"buckets"`
}

type TrackResponse struct {
	MMSI     int                       `json:"mmsi"`
	Segments []calculator.TrackSegment `json:"segments"`
}
