// Package export renders coverage grids as CSV or KML downloads.
package export

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownExportDataType = errors.New("unknown export data type")

// ExportDataType selects the cell value a KML export is colored by.
type ExportDataType string

const (
	ReceivedMessages ExportDataType = "RECEIVED_MESSAGES"
	SignalStrength   ExportDataType = "SIGNAL_STRENGTH"
)

// ParseExportDataType accepts either name in any case. An empty string
// selects ReceivedMessages.
func ParseExportDataType(s string) (ExportDataType, error) {
	switch ExportDataType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ReceivedMessages:
		return ReceivedMessages, nil
	case SignalStrength:
		return SignalStrength, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExportDataType, s)
}

// GreenThreshold is the value a cell must exceed to be drawn green.
func (t ExportDataType) GreenThreshold() float64 {
	if t == SignalStrength {
		return -101
	}
	return 0.5
}

// RedThreshold is the value at or below which a cell is drawn red.
func (t ExportDataType) RedThreshold() float64 {
	if t == SignalStrength {
		return -107
	}
	return 0.2
}
