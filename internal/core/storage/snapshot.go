package storage

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

// Document is one persisted snapshot of every source grid.
type Document struct {
	ID              uuid.UUID `json:"id"`
	DataTimestamp   time.Time `json:"dataTimestamp"`
	NumberOfCells   int64     `json:"numberOfCells"`
	CompressedCells string    `json:"compressedCells"`
}

type cellsEnvelope struct {
	Cells []cellRecord `json:"cells"`
}

type cellRecord struct {
	SourceID                string                    `json:"sourceId"`
	CellID                  string                    `json:"cellId"`
	Latitude                float64                   `json:"latitude"`
	Longitude               float64                   `json:"longitude"`
	NumberOfReceivedSignals int                       `json:"numberOfReceivedSignals"`
	NumberOfMissingSignals  int                       `json:"numberOfMissingSignals"`
	NumberOfVsiMessages     int                       `json:"numberOfVsiMessages"`
	AverageSignalStrength   int                       `json:"averageSignalStrength"`
	TimeSpans               map[string]timeSpanRecord `json:"timespans"`
}

type timeSpanRecord struct {
	FirstMessage                        int64 `json:"firstMessage"`
	LastMessage                         int64 `json:"lastMessage"`
	MessageCounterSat                   int   `json:"messageCounterSat"`
	MessageCounterTerrestrial           int   `json:"messageCounterTerrestrial"`
	MessageCounterTerrestrialUnfiltered int   `json:"messageCounterTerrestrialUnfiltered"`
	MissingSignals                      int   `json:"missingSignals"`
	VsiMessageCounter                   int   `json:"vsiMessageCounter"`
	AverageSignalStrength               int   `json:"averageSignalStrength"`
}

// Marshal packs data into a Document stamped with ts. Sources and cells are
// written in id order. Distinct ship sets and satellite spans are not kept.
func Marshal(data map[string][]*coverage.Cell, ts time.Time) (Document, error) {
	sourceIDs := make([]string, 0, len(data))
	for id := range data {
		sourceIDs = append(sourceIDs, id)
	}
	sort.Strings(sourceIDs)

	env := cellsEnvelope{Cells: []cellRecord{}}
	for _, sourceID := range sourceIDs {
		cells := append([]*coverage.Cell(nil), data[sourceID]...)
		sort.Slice(cells, func(i, j int) bool { return cells[i].ID() < cells[j].ID() })
		for _, cell := range cells {
			env.Cells = append(env.Cells, toCellRecord(sourceID, cell))
		}
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return Document{}, fmt.Errorf("failed to marshal cells: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return Document{}, fmt.Errorf("failed to compress cells: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Document{}, fmt.Errorf("failed to compress cells: %w", err)
	}

	return Document{
		ID:              uuid.New(),
		DataTimestamp:   ts.UTC(),
		NumberOfCells:   int64(len(env.Cells)),
		CompressedCells: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func toCellRecord(sourceID string, cell *coverage.Cell) cellRecord {
	rec := cellRecord{
		SourceID:                sourceID,
		CellID:                  cell.ID(),
		Latitude:                cell.Latitude(),
		Longitude:               cell.Longitude(),
		NumberOfReceivedSignals: cell.ReceivedSignals(),
		NumberOfMissingSignals:  cell.MissingSignals(),
		NumberOfVsiMessages:     cell.VsiMessages(),
		AverageSignalStrength:   cell.AverageSignalStrength(),
		TimeSpans:               make(map[string]timeSpanRecord),
	}
	for key, span := range cell.FixedSpans() {
		rec.TimeSpans[strconv.FormatInt(key, 10)] = timeSpanRecord{
			FirstMessage:                        span.First.UnixMilli(),
			LastMessage:                         span.Last.UnixMilli(),
			MessageCounterSat:                   span.MessageCounterSat,
			MessageCounterTerrestrial:           span.MessageCounterTerrestrial,
			MessageCounterTerrestrialUnfiltered: span.MessageCounterTerrestrialUnfiltered,
			MissingSignals:                      span.MissingSignals,
			VsiMessageCounter:                   span.VsiMessageCounter,
			AverageSignalStrength:               span.AverageSignalStrength,
		}
	}
	return rec
}

// Unmarshal rebuilds the cells held in doc, keyed by source id.
func Unmarshal(doc Document) (map[string][]*coverage.Cell, error) {
	out := make(map[string][]*coverage.Cell)
	if doc.CompressedCells == "" {
		return out, nil
	}

	compressed, err := base64.StdEncoding.DecodeString(doc.CompressedCells)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cells: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cells: %w", err)
	}

	var env cellsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cells: %w", err)
	}

	for _, rec := range env.Cells {
		cell, err := fromCellRecord(rec)
		if err != nil {
			return nil, err
		}
		out[rec.SourceID] = append(out[rec.SourceID], cell)
	}
	return out, nil
}

func fromCellRecord(rec cellRecord) (*coverage.Cell, error) {
	cell := coverage.NewCell(rec.CellID, rec.Latitude, rec.Longitude)
	cell.AddReceivedSignals(rec.NumberOfReceivedSignals)
	cell.AddMissingSignals(rec.NumberOfMissingSignals)
	if rec.NumberOfVsiMessages > 0 {
		cell.AddVsiMessages(rec.NumberOfVsiMessages, rec.AverageSignalStrength)
	}

	spans := make(map[int64]*coverage.TimeSpan, len(rec.TimeSpans))
	for key, r := range rec.TimeSpans {
		k, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timespan key %q in cell %s: %w", key, rec.CellID, err)
		}
		span := coverage.NewTimeSpan(time.UnixMilli(r.FirstMessage).UTC())
		span.Last = time.UnixMilli(r.LastMessage).UTC()
		span.MessageCounterSat = r.MessageCounterSat
		span.MessageCounterTerrestrial = r.MessageCounterTerrestrial
		span.MessageCounterTerrestrialUnfiltered = r.MessageCounterTerrestrialUnfiltered
		span.MissingSignals = r.MissingSignals
		span.VsiMessageCounter = r.VsiMessageCounter
		span.AverageSignalStrength = r.AverageSignalStrength
		spans[k] = span
	}
	cell.SetFixedSpans(spans)
	return cell, nil
}
