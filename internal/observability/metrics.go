// Package observability bundles the Prometheus metrics of the coverage
// pipeline and exposes them over HTTP.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric. All methods are safe on a nil receiver so
// components can run without metrics in tests.
type Collector struct {
	gatherer prometheus.Gatherer

	PacketsReceived    prometheus.Counter
	PacketsDropped     prometheus.Counter
	MessagesDecoded    prometheus.Counter
	MessagesDispatched prometheus.Counter
	DecodeErrors       prometheus.Counter
	Persists           *prometheus.CounterVec
	Purges             prometheus.Counter

	Cells        prometheus.Gauge
	Ships        prometheus.Gauge
	DedupPending prometheus.Gauge

	PersistDuration prometheus.Histogram
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	counters := []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&c.PacketsReceived, "coverage_packets_received_total", "Packets offered to the ingestion queue."},
		{&c.PacketsDropped, "coverage_packets_dropped_total", "Packets dropped because the ingestion queue was full."},
		{&c.MessagesDecoded, "coverage_messages_decoded_total", "Packets decoded into position messages."},
		{&c.MessagesDispatched, "coverage_messages_dispatched_total", "Deduplicated messages handed to the calculators."},
		{&c.DecodeErrors, "coverage_decode_errors_total", "Packets the decoder failed on."},
		{&c.Purges, "coverage_purges_total", "Retention trims performed."},
	}
	for _, ct := range counters {
		*ct.dst, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: ct.name, Help: ct.help}), ct.name)
		if err != nil {
			return nil, err
		}
	}

	c.Persists, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_persist_total",
		Help: "Snapshot saves, labeled by status.",
	}, []string{"status"}), "coverage_persist_total")
	if err != nil {
		return nil, err
	}

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Cells, "coverage_cells", "Cells held across all sources."},
		{&c.Ships, "coverage_ships", "Ships in the satellite registry."},
		{&c.DedupPending, "coverage_dedup_pending", "Messages waiting in the dedup buffer."},
	}
	for _, g := range gauges {
		*g.dst, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name)
		if err != nil {
			return nil, err
		}
	}

	c.PersistDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coverage_persist_duration_seconds",
		Help:    "Snapshot save latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}), "coverage_persist_duration_seconds")
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) PacketReceived() {
	if c != nil {
		c.PacketsReceived.Inc()
	}
}

func (c *Collector) PacketDropped() {
	if c != nil {
		c.PacketsDropped.Inc()
	}
}

func (c *Collector) MessageDecoded() {
	if c != nil {
		c.MessagesDecoded.Inc()
	}
}

func (c *Collector) MessageDispatched() {
	if c != nil {
		c.MessagesDispatched.Inc()
	}
}

func (c *Collector) DecodeError() {
	if c != nil {
		c.DecodeErrors.Inc()
	}
}

func (c *Collector) Purged() {
	if c != nil {
		c.Purges.Inc()
	}
}

// ObservePersist records one snapshot save.
func (c *Collector) ObservePersist(status string, d time.Duration) {
	if c == nil {
		return
	}
	c.Persists.WithLabelValues(status).Inc()
	c.PersistDuration.Observe(d.Seconds())
}

// SetStoreSize updates the data model gauges.
func (c *Collector) SetStoreSize(cells, ships int) {
	if c == nil {
		return
	}
	c.Cells.Set(float64(cells))
	c.Ships.Set(float64(ships))
}

func (c *Collector) SetDedupPending(n int) {
	if c != nil {
		c.DedupPending.Set(float64(n))
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
