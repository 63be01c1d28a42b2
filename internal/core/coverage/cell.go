package coverage

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// GridSpec is the size of a factor-1 cell in degrees.
type GridSpec struct {
	LatSize float64
	LonSize float64
}

// DefaultGridSpec is roughly 2.5km x 2.5km at the equator.
var DefaultGridSpec = GridSpec{LatSize: 0.0225, LonSize: 0.0225}

// roundingSlack absorbs float error so 55.7/0.0225 does not land one cell low.
const roundingSlack = 1e-9

// RoundLat floors lat to the south edge of its cell at the given coarsening factor.
func (g GridSpec) RoundLat(lat float64, factor int) float64 {
	size := g.LatSize * float64(normalizeFactor(factor))
	return math.Floor(lat/size+roundingSlack) * size
}

// RoundLon floors lon to the west edge of its cell at the given coarsening factor.
func (g GridSpec) RoundLon(lon float64, factor int) float64 {
	size := g.LonSize * float64(normalizeFactor(factor))
	return math.Floor(lon/size+roundingSlack) * size
}

// CellID is the deterministic identity of the cell containing (lat, lon).
func (g GridSpec) CellID(lat, lon float64, factor int) string {
	return fmt.Sprintf("%.4f_%.4f", g.RoundLat(lat, factor), g.RoundLon(lon, factor))
}

func normalizeFactor(factor int) int {
	if factor < 1 {
		return 1
	}
	return factor
}

// Cell is one quantized lat/lon rectangle of a Source's grid.
// All state is guarded by mu; spans handed out are copies.
type Cell struct {
	id        string
	latitude  float64
	longitude float64

	mu                    sync.Mutex
	receivedSignals       int
	missingSignals        int
	vsiMessages           int
	averageSignalStrength int
	fixedWidthSpans       map[int64]*TimeSpan
	timeSpans             []*TimeSpan
}

// NewCell builds an empty cell. lat and lon are the cell's south-west corner.
func NewCell(id string, lat, lon float64) *Cell {
	return &Cell{
		id:              id,
		latitude:        lat,
		longitude:       lon,
		fixedWidthSpans: make(map[int64]*TimeSpan),
	}
}

// ID is the cell identity, "lat_lon" of its south-west corner.
func (c *Cell) ID() string { return c.id }
// Latitude is the south edge of the cell.
func (c *Cell) Latitude() float64 { return c.latitude }
// Longitude is the west edge of the cell.
func (c *Cell) Longitude() float64 { return c.longitude }

// IncrementReceivedSignals counts one received message.
func (c *Cell) IncrementReceivedSignals() {
	c.mu.Lock()
	c.receivedSignals++
	c.mu.Unlock()
}

// IncrementMissingSignals counts one message the receiver should have heard.
func (c *Cell) IncrementMissingSignals() {
	c.mu.Lock()
	c.missingSignals++
	c.mu.Unlock()
}

// AddReceivedSignals adds n received messages, used when restoring snapshots.
func (c *Cell) AddReceivedSignals(n int) {
	c.mu.Lock()
	c.receivedSignals += n
	c.mu.Unlock()
}

// AddMissingSignals adds n missing messages.
func (c *Cell) AddMissingSignals(n int) {
	c.mu.Lock()
	c.missingSignals += n
	c.mu.Unlock()
}

// IncrementVsiMessages folds one signal-strength sample into the cell average.
func (c *Cell) IncrementVsiMessages(signalStrength int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vsiMessages + 1
	c.averageSignalStrength = floorDiv(c.vsiMessages*c.averageSignalStrength+signalStrength, next)
	c.vsiMessages = next
}

// AddVsiMessages folds n samples averaging avg into the cell average.
func (c *Cell) AddVsiMessages(n, avg int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vsiMessages + n
	if next > 0 {
		c.averageSignalStrength = floorDiv(c.vsiMessages*c.averageSignalStrength+n*avg, next)
	} else {
		c.averageSignalStrength = 0
	}
	c.vsiMessages = next
}

// ReceivedSignals is the lifetime received count.
func (c *Cell) ReceivedSignals() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receivedSignals
}

// MissingSignals is the lifetime missing count.
func (c *Cell) MissingSignals() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.missingSignals
}

// VsiMessages is the number of signal-strength samples.
func (c *Cell) VsiMessages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vsiMessages
}

// AverageSignalStrength is the floored mean of all samples in dBm.
func (c *Cell) AverageSignalStrength() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.averageSignalStrength
}

// TotalMessages is received plus missing.
func (c *Cell) TotalMessages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receivedSignals + c.missingSignals
}

// Coverage is the received share of all expected signals, 0 when nothing was expected.
func (c *Cell) Coverage() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.receivedSignals + c.missingSignals
	if total == 0 {
		return 0
	}
	return float64(c.receivedSignals) / float64(total)
}

// ReceivedSignalsBetween sums terrestrial receptions over hour spans inside [start, end].
func (c *Cell) ReceivedSignalsBetween(start, end time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.fixedWidthSpans {
		if s.Within(start, end) {
			n += s.MessageCounterTerrestrial
		}
	}
	return n
}

// MissingSignalsBetween sums missing signals over hour spans inside [start, end].
func (c *Cell) MissingSignalsBetween(start, end time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.fixedWidthSpans {
		if s.Within(start, end) {
			n += s.MissingSignals
		}
	}
	return n
}

// VsiMessagesBetween sums signal-strength samples over hour spans inside [start, end].
func (c *Cell) VsiMessagesBetween(start, end time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vsiMessagesBetweenLocked(start, end)
}

func (c *Cell) vsiMessagesBetweenLocked(start, end time.Time) int {
	n := 0
	for _, s := range c.fixedWidthSpans {
		if s.Within(start, end) {
			n += s.VsiMessageCounter
		}
	}
	return n
}

// AverageSignalStrengthBetween rescans the matching hour spans on every call.
func (c *Cell) AverageSignalStrengthBetween(start, end time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := c.vsiMessagesBetweenLocked(start, end)
	if count == 0 {
		return 0
	}
	sum := 0
	for _, s := range c.fixedWidthSpans {
		if s.Within(start, end) {
			sum += s.AverageSignalStrength * s.VsiMessageCounter
		}
	}
	return floorDiv(sum, count)
}

// UpdateFixedSpan applies fn to the hour span containing ts, creating it first if needed.
func (c *Cell) UpdateFixedSpan(ts time.Time, fn func(*TimeSpan)) {
	key := BucketKey(ts)
	c.mu.Lock()
	defer c.mu.Unlock()
	span, ok := c.fixedWidthSpans[key]
	if !ok {
		span = NewHourSpan(ts)
		c.fixedWidthSpans[key] = span
	}
	fn(span)
}

// UpdateDynamicSpans lets fn rewrite the ordered dynamic span list under the cell lock.
func (c *Cell) UpdateDynamicSpans(fn func([]*TimeSpan) []*TimeSpan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeSpans = fn(c.timeSpans)
}

// FixedSpans returns copies of the hour spans keyed by hour-floor epoch ms.
func (c *Cell) FixedSpans() map[int64]*TimeSpan {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int64]*TimeSpan, len(c.fixedWidthSpans))
	for k, s := range c.fixedWidthSpans {
		out[k] = s.Copy()
	}
	return out
}

// FixedSpanKeys returns the hour keys in ascending order.
func (c *Cell) FixedSpanKeys() []int64 {
	c.mu.Lock()
	keys := make([]int64, 0, len(c.fixedWidthSpans))
	for k := range c.fixedWidthSpans {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// SetFixedSpans replaces the hour spans. Used when loading a snapshot.
func (c *Cell) SetFixedSpans(spans map[int64]*TimeSpan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fixedWidthSpans = make(map[int64]*TimeSpan, len(spans))
	for k, s := range spans {
		c.fixedWidthSpans[k] = s
	}
}

// DynamicSpans returns copies of the satellite span list, ordered by First.
func (c *Cell) DynamicSpans() []*TimeSpan {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*TimeSpan, len(c.timeSpans))
	for i, s := range c.timeSpans {
		out[i] = s.Copy()
	}
	return out
}

// TrimBefore discards hour spans starting before t and dynamic spans ending before t.
// It returns the number of spans removed.
func (c *Cell) TrimBefore(t time.Time) int {
	cutoff := t.UnixMilli()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.fixedWidthSpans {
		if k < cutoff {
			delete(c.fixedWidthSpans, k)
			removed++
		}
	}

	kept := c.timeSpans[:0]
	for _, s := range c.timeSpans {
		if s.Last.Before(t) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(c.timeSpans); i++ {
		c.timeSpans[i] = nil
	}
	c.timeSpans = kept
	return removed
}

// SpanCount returns the number of hour spans and dynamic spans held.
func (c *Cell) SpanCount() (fixed, dynamic int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fixedWidthSpans), len(c.timeSpans)
}
