package projection

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/johnmartel/AisCoverage/internal/calculator"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/export"
)

var validGranularities = map[string]bool{
	"1h":    true,
	"1d":    true,
	"total": true,
}

var validExportFormats = map[string]bool{
	"csv": true,
	"kml": true,
	"xml": true,
}

const analysisRunning = "Running"

// Service implements the read side over the in-memory coverage store.
type Service struct {
	store       *coverage.Store
	terrestrial *calculator.Terrestrial
	satellite   *calculator.Satellite
	nowFn       func() time.Time
}

// NewService creates a query service over the pipeline's calculators.
func NewService(store *coverage.Store, pipeline *calculator.Pipeline) *Service {
	return &Service{
		store:       store,
		terrestrial: pipeline.Terrestrial,
		satellite:   pipeline.Satellite,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Sources lists every source, the supersource included, sorted by id.
func (s *Service) Sources() []SourceSummary {
	sources := s.store.Sources()
	out := make([]SourceSummary, 0, len(sources))
	for _, src := range sources {
		info := src.Info()
		out = append(out, SourceSummary{
			ID:           src.Identifier(),
			Name:         info.Name,
			Type:         string(info.ReceiverType),
			Latitude:     info.Latitude,
			Longitude:    info.Longitude,
			Visible:      info.Visible,
			MessageCount: src.MessageCount(),
			CellCount:    src.Len(),
		})
	}
	return out
}

// Status reports the bounds of the data held in memory. Before the first
// message both bounds fall back to the current hour.
func (s *Service) Status() StatusResponse {
	now := coverage.FloorHour(s.nowFn()).UnixMilli()
	resp := StatusResponse{
		FirstMessage:   now,
		LastMessage:    now,
		AnalysisStatus: analysisRunning,
	}

	clock := s.store.Clock()
	first, latest, _ := clock.Window()
	if !first.IsZero() {
		resp.FirstMessage = first.UnixMilli()
	}
	if !latest.IsZero() {
		resp.LastMessage = latest.UnixMilli()
	}
	if started, ok := clock.AnalysisStarted(); ok {
		ms := started.UnixMilli()
		resp.AnalysisStarted = &ms
	}
	return resp
}

// Coverage builds the terrestrial coverage map for req.
func (s *Service) Coverage(req CoverageRequest) (*CoverageResponse, error) {
	views, factor, err := s.coverageViews(req.Sources, req.Area, req.Start, req.End, req.MultiplicationFactor)
	if err != nil {
		return nil, err
	}

	spec := s.store.GridSpec()
	cellLat := spec.LatSize * float64(factor)
	cellLon := spec.LonSize * float64(factor)

	resp := &CoverageResponse{MultiplicationFactor: factor, Sources: make([]CoverageSource, 0, len(views))}
	for _, view := range views {
		src := CoverageSource{ID: view.Identifier(), Name: view.Info().Name, Cells: []CoverageCell{}}
		for _, cell := range view.Cells() {
			src.Cells = append(src.Cells, CoverageCell{
				ID:                    cell.ID(),
				LatStart:              cell.Latitude(),
				LonStart:              cell.Longitude(),
				LatEnd:                cell.Latitude() + cellLat,
				LonEnd:                cell.Longitude() + cellLon,
				Received:              cell.ReceivedSignals(),
				Missing:               cell.MissingSignals(),
				CoveragePercentage:    export.CoveragePercent(cell.Coverage()),
				VsiMessages:           cell.VsiMessages(),
				AverageSignalStrength: cell.AverageSignalStrength(),
			})
		}
		sortCells(src.Cells)
		resp.Sources = append(resp.Sources, src)
	}
	return resp, nil
}

func (s *Service) coverageViews(sources []string, area string, start, end time.Time, factor int) ([]*coverage.Source, int, error) {
	if factor == 0 {
		factor = 1
	}
	if factor < 0 {
		return nil, 0, invalidQueryf("multiplication_factor must be >= 1, got %d", factor)
	}
	box, err := parseArea(area)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.terrestrial.CoverageView(calculator.CoverageQuery{
		Sources:              sources,
		Box:                  box,
		Start:                start,
		End:                  end,
		MultiplicationFactor: factor,
	})
	if err != nil {
		return nil, 0, err
	}
	return views, factor, nil
}

// SatelliteSpans returns the merged dynamic spans inside req.Area.
func (s *Service) SatelliteSpans(req SpanRequest) (*SpansResponse, error) {
	box, err := parseArea(req.Area)
	if err != nil {
		return nil, err
	}
	spans, err := s.satellite.DynamicTimeSpans(req.Start, req.End, box)
	if err != nil {
		return nil, err
	}
	return &SpansResponse{
		TimeMargin: s.satellite.TimeMargin().String(),
		Spans:      toSpanValues(spans),
	}, nil
}

// FixedSpans returns the hourly buckets inside req.Area rolled up to req.Granularity.
func (s *Service) FixedSpans(req SpanRequest) (*FixedSpansResponse, error) {
	if req.Granularity == "" {
		req.Granularity = "1h"
	}
	if !validGranularities[req.Granularity] {
		return nil, invalidQueryf("unsupported granularity %q", req.Granularity)
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, invalidQueryf("start and end are required")
	}
	box, err := parseArea(req.Area)
	if err != nil {
		return nil, err
	}

	hourly, err := s.satellite.FixedTimeSpans(req.Start, req.End, box)
	if err != nil {
		return nil, err
	}
	return &FixedSpansResponse{
		Start:       req.Start,
		End:         req.End,
		Granularity: req.Granularity,
		Buckets:     rollupForGranularity(hourly, req.Granularity, req.Start, req.End),
	}, nil
}

// ShipTrack returns the reception segments of one ship. A zero end means now.
func (s *Service) ShipTrack(mmsi int, start, end time.Time) (*TrackResponse, error) {
	if end.IsZero() {
		end = s.nowFn()
	}
	segments, err := s.satellite.ShipTrack(start, end, mmsi)
	if err != nil {
		return nil, err
	}
	return &TrackResponse{MMSI: mmsi, Segments: segments}, nil
}

// Export renders the coverage map as CSV or KML into w.
func (s *Service) Export(w io.Writer, req ExportRequest) error {
	dataType, err := export.ParseExportDataType(req.DataType)
	if err != nil {
		return fmt.Errorf("%w: %v", calculator.ErrInvalidQuery, err)
	}
	format := strings.ToLower(req.Format)
	if !validExportFormats[format] {
		return invalidQueryf("unsupported export type %q", req.Format)
	}

	views, factor, err := s.coverageViews(req.Sources, "", req.Start, req.End, req.MultiplicationFactor)
	if err != nil {
		return err
	}
	spec := s.store.GridSpec()
	switch format {
	case "csv":
		return export.WriteCSV(w, views, spec.LatSize, spec.LonSize, factor)
	case "xml":
		return export.WriteXML(w, views, spec.LatSize, spec.LonSize, factor)
	default:
		return export.WriteKML(w, views, spec.LatSize, spec.LonSize, factor, dataType)
	}
}

// ExportFileName names a download after the grid and the current time.
func (s *Service) ExportFileName(format string, factor int) string {
	if factor < 1 {
		factor = 1
	}
	spec := s.store.GridSpec()
	return fmt.Sprintf("aiscoverage-%s_latSize%s_lonSize%s_multiplicationfactor%d.%s",
		s.nowFn().Format("20060102T150405Z"),
		strconv.FormatFloat(spec.LatSize, 'f', -1, 64),
		strconv.FormatFloat(spec.LonSize, 'f', -1, 64),
		factor,
		strings.ToLower(format))
}

// parseArea reads "lat1,lon1,lat2,lon2". An empty area is the whole world.
func parseArea(area string) (coverage.Box, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return coverage.WorldBox(), nil
	}
	parts := strings.Split(area, ",")
	if len(parts) != 4 {
		return coverage.Box{}, invalidQueryf("area must be lat1,lon1,lat2,lon2, got %q", area)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return coverage.Box{}, invalidQueryf("invalid area coordinate %q", p)
		}
		v[i] = f
	}
	for _, lat := range []float64{v[0], v[2]} {
		if lat < -90 || lat > 90 {
			return coverage.Box{}, invalidQueryf("latitude %v out of range", lat)
		}
	}
	for _, lon := range []float64{v[1], v[3]} {
		if lon < -180 || lon > 180 {
			return coverage.Box{}, invalidQueryf("longitude %v out of range", lon)
		}
	}
	return coverage.NewBox(v[0], v[1], v[2], v[3]), nil
}

// parseSources splits a comma separated id list, dropping blanks.
func parseSources(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// fromMillis maps epoch ms to UTC time; 0 is the zero time.
func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", calculator.ErrInvalidQuery, fmt.Sprintf(format, args...))
}
