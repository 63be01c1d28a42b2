package coverage

import (
	"sync"
	"time"
)

// Clock tracks the process-wide time bounds of the data held in memory.
// Ingestion may only widen the window; the purger alone narrows it.
type Clock struct {
	mu              sync.RWMutex
	firstMessage    time.Time
	latestMessage   time.Time
	analysisStarted time.Time
}

func NewClock() *Clock {
	return &Clock{}
}

// Observe widens the window to include ts.
func (c *Clock) Observe(ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firstMessage.IsZero() || ts.Before(c.firstMessage) {
		c.firstMessage = ts
	}
	if c.latestMessage.IsZero() || ts.After(c.latestMessage) {
		c.latestMessage = ts
	}
}

// RecedeFirst moves firstMessage back to ts if ts is earlier.
func (c *Clock) RecedeFirst(ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firstMessage.IsZero() || ts.Before(c.firstMessage) {
		c.firstMessage = ts
	}
}

// AdvanceLatest moves latestMessage forward to ts if ts is later.
func (c *Clock) AdvanceLatest(ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts.After(c.latestMessage) {
		c.latestMessage = ts
	}
}

// AdvanceFirst moves firstMessage forward to ts after data before ts was trimmed.
func (c *Clock) AdvanceFirst(ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts.After(c.firstMessage) {
		c.firstMessage = ts
	}
}

// StartAnalysis sets the analysis start to ts unless already set, and
// returns the effective value.
func (c *Clock) StartAnalysis(ts time.Time) time.Time {
	c.mu.RLock()
	started := c.analysisStarted
	c.mu.RUnlock()
	if !started.IsZero() {
		return started
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.analysisStarted.IsZero() {
		c.analysisStarted = ts
	}
	return c.analysisStarted
}

// AnalysisStarted returns the analysis start and whether it has been set.
func (c *Clock) AnalysisStarted() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.analysisStarted, !c.analysisStarted.IsZero()
}

// Window returns both bounds; ok is false until both are known.
func (c *Clock) Window() (first, latest time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.firstMessage, c.latestMessage, !c.firstMessage.IsZero() && !c.latestMessage.IsZero()
}
