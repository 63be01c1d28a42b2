package export

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

type xmlCells struct {
	XMLName xml.Name  `xml:"cells"`
	Cells   []xmlCell `xml:"cell"`
}

type xmlCell struct {
	StartLat              string `xml:"startlat"`
	StartLon              string `xml:"startlon"`
	EndLat                string `xml:"endlat"`
	EndLon                string `xml:"endlon"`
	Received              int    `xml:"received"`
	Missing               int    `xml:"missing"`
	CoveragePercentage    string `xml:"coveragepercentage"`
	ReceivedVsiMessages   int    `xml:"receivedvsimessages"`
	AverageSignalStrength int    `xml:"averagesignalstrength"`
}

// WriteXML writes every cell of every source as a flat <cells> list.
func WriteXML(w io.Writer, sources []*coverage.Source, latSize, lonSize float64, factor int) error {
	if factor < 1 {
		factor = 1
	}
	cellLat := latSize * float64(factor)
	cellLon := lonSize * float64(factor)

	var doc xmlCells
	for _, src := range sources {
		for _, cell := range sortedCells(src) {
			doc.Cells = append(doc.Cells, xmlCell{
				StartLat:              formatFloat(cell.Latitude()),
				StartLon:              formatFloat(cell.Longitude()),
				EndLat:                formatFloat(cell.Latitude() + cellLat),
				EndLon:                formatFloat(cell.Longitude() + cellLon),
				Received:              cell.ReceivedSignals(),
				Missing:               cell.MissingSignals(),
				CoveragePercentage:    CoveragePercent(cell.Coverage()).StringFixed(2),
				ReceivedVsiMessages:   cell.VsiMessages(),
				AverageSignalStrength: cell.AverageSignalStrength(),
			})
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}
	return enc.Flush()
}
