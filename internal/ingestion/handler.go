package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/dedup"
	"github.com/johnmartel/AisCoverage/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Dispatcher receives deduplicated messages. *calculator.Pipeline implements it.
type Dispatcher interface {
	Dispatch(m *coverage.Message)
}

// Options tunes the intake queue, worker pool and dedup buffer.
type Options struct {
	QueueCapacity       int
	DedupCapacity       int
	Workers             int
	DrainTimeout        time.Duration
	OverflowLogInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = 10000
	}
	if o.DedupCapacity <= 0 {
		o.DedupCapacity = 10000
	}
	if o.Workers <= 0 {
		o.Workers = max(1, runtime.NumCPU()/2)
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = 60 * time.Second
	}
	if o.OverflowLogInterval <= 0 {
		o.OverflowLogInterval = 10 * time.Second
	}
	return o
}

// Handler is the entry point of the feed. Packets are queued without
// blocking, decoded by a worker pool and deduplicated before dispatch.
type Handler struct {
	opts       Options
	decoder    Decoder
	clock      *coverage.Clock
	dispatcher Dispatcher
	metrics    *observability.Collector
	overflow   *OverflowLogger

	stateMu sync.RWMutex
	closed  bool
	intake  chan []byte

	// mu serializes lookup, insert, eviction and dispatch so evicted
	// messages reach the dispatcher in insertion order.
	mu     sync.Mutex
	buffer *dedup.Buffer[*coverage.Message]

	cancel context.CancelFunc
	group  *errgroup.Group

	received        atomic.Int64
	dropped         atomic.Int64
	processed       atomic.Int64
	rejectedStopped atomic.Int64
}

// NewHandler wires a handler. metrics may be nil.
func NewHandler(opts Options, decoder Decoder, clock *coverage.Clock, dispatcher Dispatcher, metrics *observability.Collector) *Handler {
	if decoder == nil {
		panic("ingestion: decoder must not be nil")
	}
	if clock == nil {
		panic("ingestion: clock must not be nil")
	}
	if dispatcher == nil {
		panic("ingestion: dispatcher must not be nil")
	}
	opts = opts.withDefaults()
	return &Handler{
		opts:       opts,
		decoder:    decoder,
		clock:      clock,
		dispatcher: dispatcher,
		metrics:    metrics,
		overflow:   NewOverflowLogger(opts.OverflowLogInterval, nil),
		intake:     make(chan []byte, opts.QueueCapacity),
		buffer:     dedup.New[*coverage.Message](opts.DedupCapacity),
	}
}

// Start launches the worker pool. Workers stop when ctx is cancelled or Stop
// has drained the queue.
func (h *Handler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	h.cancel = cancel
	h.group = g

	for i := 0; i < h.opts.Workers; i++ {
		g.Go(func() error {
			h.work(gctx)
			return nil
		})
	}
	slog.Info("[Ingestion] Started",
		"workers", h.opts.Workers,
		"queue_capacity", h.opts.QueueCapacity,
		"dedup_capacity", h.opts.DedupCapacity)
}

// ReceiveUnfiltered queues packet for decoding. It never blocks; when the
// queue is full or the handler is stopped the packet is dropped and false is
// returned.
func (h *Handler) ReceiveUnfiltered(packet []byte) bool {
	h.received.Add(1)
	h.metrics.PacketReceived()

	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	if h.closed {
		h.countDropped()
		h.rejectedStopped.Add(1)
		return false
	}
	if len(h.intake) >= h.opts.QueueCapacity {
		h.overflowed()
		return false
	}
	select {
	case h.intake <- packet:
		return true
	default:
		h.overflowed()
		return false
	}
}

func (h *Handler) countDropped() {
	h.dropped.Add(1)
	h.metrics.PacketDropped()
}

// overflowed drops a packet refused by a full queue.
func (h *Handler) overflowed() {
	h.countDropped()
	h.overflow.Dropped(len(h.intake), h.opts.QueueCapacity)
}

func (h *Handler) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case packet, ok := <-h.intake:
			if !ok {
				return
			}
			h.process(packet)
		}
	}
}

func (h *Handler) process(packet []byte) {
	msg, err := h.decoder.Decode(packet)
	if err != nil {
		h.metrics.DecodeError()
		slog.Debug("[Ingestion] Failed to decode packet", "error", err, "size", len(packet))
		return
	}
	if msg == nil {
		return
	}
	h.metrics.MessageDecoded()
	h.clock.Observe(msg.Timestamp)
	h.deduplicate(msg)
}

func (h *Handler) deduplicate(msg *coverage.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	evicted, ok := h.buffer.Insert(msg.Key(), msg, mergeMessage)
	if ok {
		h.dispatch(evicted.Value)
	}
	h.metrics.SetDedupPending(h.buffer.Len())
}

func mergeMessage(existing, incoming *coverage.Message) {
	existing.MergeSources(incoming)
	if existing.SignalStrength == nil && incoming.SignalStrength != nil {
		existing.SignalStrength = incoming.SignalStrength
	}
}

// dispatch must be called with mu held.
func (h *Handler) dispatch(msg *coverage.Message) {
	h.dispatcher.Dispatch(msg)
	h.processed.Add(1)
	h.metrics.MessageDispatched()
}

// Flush dispatches every pending message, oldest first.
func (h *Handler) Flush() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.buffer.Drain()
	for _, e := range entries {
		h.dispatch(e.Value)
	}
	h.metrics.SetDedupPending(0)
	return len(entries)
}

// Stop closes the intake and waits for the workers to drain it, up to the
// drain timeout or until ctx is done, then cancels them. Pending dedup
// entries are flushed last.
func (h *Handler) Stop(ctx context.Context) {
	h.stateMu.Lock()
	if !h.closed {
		h.closed = true
		close(h.intake)
	}
	h.stateMu.Unlock()

	if h.group != nil {
		done := make(chan struct{})
		go func() {
			_ = h.group.Wait()
			close(done)
		}()

		timer := time.NewTimer(h.opts.DrainTimeout)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			slog.Warn("[Ingestion] Drain timeout reached, cancelling workers",
				"timeout", h.opts.DrainTimeout,
				"queued", len(h.intake))
		case <-ctx.Done():
			slog.Warn("[Ingestion] Shutdown context done before drain completed", "queued", len(h.intake))
		}
		h.cancel()
		<-done
	}

	flushed := h.Flush()
	slog.Info("[Ingestion] Stopped",
		"received", h.received.Load(),
		"dropped", h.dropped.Load(),
		"rejected_after_stop", h.rejectedStopped.Load(),
		"processed", h.processed.Load(),
		"flushed", flushed)
}

func (h *Handler) Received() int64 { return h.received.Load() }
func (h *Handler) Dropped() int64 { return h.dropped.Load() }
func (h *Handler) Processed() int64 { return h.processed.Load() }

// RejectedAfterStop counts packets refused because the handler was stopped.
// They are included in Dropped.
func (h *Handler) RejectedAfterStop() int64 { return h.rejectedStopped.Load() }

// Pending is the number of messages waiting in the dedup buffer.
func (h *Handler) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffer.Len()
}
