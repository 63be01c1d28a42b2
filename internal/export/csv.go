package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/shopspring/decimal"
)

var csvHeader = []string{
	"latstart", "longstart", "latend", "longend",
	"received", "missing", "coverage percentage",
	"vsi messages", "average signal strength",
}

// WriteCSV writes one row per cell of every source. Cells are
// latSize*factor by lonSize*factor degrees.
func WriteCSV(w io.Writer, sources []*coverage.Source, latSize, lonSize float64, factor int) error {
	if factor < 1 {
		factor = 1
	}
	cellLat := latSize * float64(factor)
	cellLon := lonSize * float64(factor)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, src := range sources {
		for _, cell := range sortedCells(src) {
			row := []string{
				formatFloat(cell.Latitude()),
				formatFloat(cell.Longitude()),
				formatFloat(cell.Latitude() + cellLat),
				formatFloat(cell.Longitude() + cellLon),
				strconv.Itoa(cell.ReceivedSignals()),
				strconv.Itoa(cell.MissingSignals()),
				CoveragePercent(cell.Coverage()).StringFixed(2),
				strconv.Itoa(cell.VsiMessages()),
				strconv.Itoa(cell.AverageSignalStrength()),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row for cell %s: %w", cell.ID(), err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// CoveragePercent converts a 0..1 ratio to a percentage rounded to 2 places.
func CoveragePercent(ratio float64) decimal.Decimal {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).Round(2)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedCells(src *coverage.Source) []*coverage.Cell {
	cells := src.Cells()
	sort.Slice(cells, func(i, j int) bool { return cells[i].ID() < cells[j].ID() })
	return cells
}
