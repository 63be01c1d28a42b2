package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.PacketReceived()
	c.PacketReceived()
	c.PacketDropped()
	c.MessageDecoded()
	c.MessageDispatched()
	c.DecodeError()
	c.Purged()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.PacketsReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PacketsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.MessagesDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.MessagesDispatched))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DecodeErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Purges))
}

func TestCollector_PersistAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObservePersist("success", 200*time.Millisecond)
	c.ObservePersist("failure", time.Second)
	c.SetStoreSize(12, 3)
	c.SetDedupPending(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Persists.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Persists.WithLabelValues("failure")))
	assert.Equal(t, uint64(2), histogramSampleCount(t, reg, "coverage_persist_duration_seconds"))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.Cells))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Ships))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.DedupPending))
}

func TestNewCollector_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	require.NoError(t, err)
	second, err := NewCollector(reg)
	require.NoError(t, err)

	second.PacketReceived()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.PacketsReceived))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.PacketReceived()
		c.ObservePersist("success", time.Second)
		c.SetStoreSize(1, 1)
		c.SetDedupPending(1)
	})
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.PacketReceived()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "coverage_packets_received_total 1"))
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	families, err := gatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if h := m.GetHistogram(); h != nil {
				return sampleCount(h)
			}
		}
	}
	return 0
}

func sampleCount(h *dto.Histogram) uint64 {
	return h.GetSampleCount()
}
