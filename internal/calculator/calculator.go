// Package calculator turns deduplicated messages into coverage statistics.
// Each calculator mutates the shared coverage.Store; queries read it back.
package calculator

import (
	"errors"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid coverage query")
	// ErrShipNotFound is returned by ship queries for an mmsi never seen on a satellite feed.
	ErrShipNotFound = errors.New("ship not found")
)

// DefaultTimeMargin is the largest gap that still counts as continuous reception.
const DefaultTimeMargin = 10 * time.Minute

// Kind names a calculator.
type Kind string

const (
	KindTerrestrial Kind = "terrestrial"
	KindSatellite   Kind = "satellite"
)

// Calculator consumes one message at a time.
type Calculator interface {
	Kind() Kind
	// Reject reports whether m should be skipped before aggregation.
	Reject(m *coverage.Message) bool
	// Calculate folds m into the data model.
	Calculate(m *coverage.Message)
}

// Pipeline is the fixed, ordered set of calculators every message goes through.
type Pipeline struct {
	Terrestrial *Terrestrial
	Satellite   *Satellite

	ordered []Calculator
}

// NewPipeline wires both calculators to store. A non-positive margin selects
// DefaultTimeMargin.
func NewPipeline(store *coverage.Store, timeMargin time.Duration) *Pipeline {
	terr := NewTerrestrial(store)
	sat := NewSatellite(store, timeMargin)
	return &Pipeline{
		Terrestrial: terr,
		Satellite:   sat,
		ordered:     []Calculator{terr, sat},
	}
}

// Dispatch runs every calculator that does not reject m, in order, on the
// caller's goroutine.
func (p *Pipeline) Dispatch(m *coverage.Message) {
	for _, c := range p.ordered {
		if c.Reject(m) {
			continue
		}
		c.Calculate(m)
	}
}

// Calculators returns the calculators in dispatch order.
func (p *Pipeline) Calculators() []Calculator {
	out := make([]Calculator, len(p.ordered))
	copy(out, p.ordered)
	return out
}

// unbounded replaces a zero window end.
var unbounded = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func resolveEnd(end time.Time) time.Time {
	if end.IsZero() {
		return unbounded
	}
	return end
}
