package ingestion

import (
	"log/slog"
	"sync"
	"time"
)

// OverflowLogger rate-limits the "queue full" warning. Drops between two
// warnings are counted and reported with the next one.
type OverflowLogger struct {
	mu         sync.Mutex
	interval   time.Duration
	logger     *slog.Logger
	now        func() time.Time
	nextEmit   time.Time
	suppressed uint64
}

// NewOverflowLogger logs at most once per interval. A nil logger uses slog.Default.
func NewOverflowLogger(interval time.Duration, logger *slog.Logger) *OverflowLogger {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OverflowLogger{
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Dropped records one dropped packet and reports whether a warning was emitted.
func (o *OverflowLogger) Dropped(queueLen, capacity int) bool {
	now := o.now()
	o.mu.Lock()
	if now.Before(o.nextEmit) {
		o.suppressed++
		o.mu.Unlock()
		return false
	}
	suppressed := o.suppressed
	o.suppressed = 0
	o.nextEmit = now.Add(o.interval)
	o.mu.Unlock()

	o.logger.Warn("[Ingestion] Intake queue full, dropping packets",
		"queue_len", queueLen,
		"capacity", capacity,
		"suppressed", suppressed,
		"window", o.interval)
	return true
}
