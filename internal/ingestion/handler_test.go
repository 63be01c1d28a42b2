package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []*coverage.Message
}

func (d *recordingDispatcher) Dispatch(m *coverage.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, m)
}

func (d *recordingDispatcher) messages() []*coverage.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*coverage.Message, len(d.msgs))
	copy(out, d.msgs)
	return out
}

const baseMillis = int64(1709287200000)

func packet(mmsi int, offsetMillis int64, sources ...string) []byte {
	src := ""
	for i, s := range sources {
		if i > 0 {
			src += ","
		}
		src += fmt.Sprintf("%q", s)
	}
	return []byte(fmt.Sprintf(`{"mmsi":%d,"timestamp":%d,"lat":55.7,"lon":12.5,"sources":[%s]}`,
		mmsi, baseMillis+offsetMillis, src))
}

func newTestHandler(t *testing.T, opts Options) (*Handler, *recordingDispatcher, *coverage.Clock) {
	t.Helper()
	d := &recordingDispatcher{}
	clock := coverage.NewClock()
	return NewHandler(opts, JSONDecoder{}, clock, d, nil), d, clock
}

func TestHandler_MergesDuplicateReceptions(t *testing.T) {
	h, d, _ := newTestHandler(t, Options{DedupCapacity: 10})

	h.process(packet(1, 0, "r1"))
	h.process(packet(1, 0, "r2"))
	h.process(packet(1, 0, "r1"))
	assert.Equal(t, 1, h.Pending())
	assert.Empty(t, d.messages())

	require.Equal(t, 1, h.Flush())
	msgs := d.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"r1", "r2"}, msgs[0].Sources)
}

func TestHandler_EvictsInInsertionOrder(t *testing.T) {
	h, d, _ := newTestHandler(t, Options{DedupCapacity: 2})

	for i := 0; i < 5; i++ {
		h.process(packet(100+i, int64(i), "r1"))
	}

	msgs := d.messages()
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, 100+i, m.ShipMMSI)
	}
	assert.Equal(t, int64(3), h.Processed())
	assert.Equal(t, 2, h.Pending())
}

func TestHandler_ObservesClock(t *testing.T) {
	h, _, clock := newTestHandler(t, Options{})

	h.process(packet(1, 3_600_000, "r1"))
	h.process(packet(2, 0, "r1"))

	first, latest, ok := clock.Window()
	require.True(t, ok)
	assert.Equal(t, time.UnixMilli(baseMillis).UTC(), first.UTC())
	assert.Equal(t, time.UnixMilli(baseMillis+3_600_000).UTC(), latest.UTC())
}

func TestHandler_DropsWhenQueueFull(t *testing.T) {
	h, _, _ := newTestHandler(t, Options{QueueCapacity: 2})
	var logs bytes.Buffer
	h.overflow = NewOverflowLogger(time.Minute, slog.New(slog.NewTextHandler(&logs, nil)))

	assert.True(t, h.ReceiveUnfiltered(packet(1, 0)))
	assert.True(t, h.ReceiveUnfiltered(packet(2, 0)))
	assert.False(t, h.ReceiveUnfiltered(packet(3, 0)))

	assert.Equal(t, int64(3), h.Received())
	assert.Equal(t, int64(1), h.Dropped())
	assert.Zero(t, h.RejectedAfterStop())
	assert.Contains(t, logs.String(), "Intake queue full")
}

func TestHandler_RejectsAfterStopWithoutOverflowWarning(t *testing.T) {
	h, _, _ := newTestHandler(t, Options{QueueCapacity: 2})
	var logs bytes.Buffer
	h.overflow = NewOverflowLogger(time.Minute, slog.New(slog.NewTextHandler(&logs, nil)))

	h.Stop(context.Background())

	assert.False(t, h.ReceiveUnfiltered(packet(1, 0)))
	assert.Equal(t, int64(1), h.Dropped())
	assert.Equal(t, int64(1), h.RejectedAfterStop())
	assert.NotContains(t, logs.String(), "Intake queue full")
}

func TestHandler_StartStopDrainsAndFlushes(t *testing.T) {
	h, d, _ := newTestHandler(t, Options{Workers: 3, QueueCapacity: 1000, DedupCapacity: 1000})
	h.Start(context.Background())

	for i := 0; i < 200; i++ {
		require.True(t, h.ReceiveUnfiltered(packet(1000+i, int64(i)*1000, "r1")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.Stop(ctx)

	assert.Len(t, d.messages(), 200)
	assert.Equal(t, 0, h.Pending())
	assert.False(t, h.ReceiveUnfiltered(packet(1, 0)), "stopped handler rejects packets")
}

func TestHandler_CountsDecodeErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewCollector(reg)
	require.NoError(t, err)

	d := &recordingDispatcher{}
	h := NewHandler(Options{}, JSONDecoder{}, coverage.NewClock(), d, metrics)

	h.process([]byte(`not json`))
	h.process([]byte(`{"mmsi":1,"timestamp":1,"lat":91,"lon":0}`))
	h.process(packet(1, 0, "r1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DecodeErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DedupPending))
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, 10000, o.QueueCapacity)
	assert.Equal(t, 10000, o.DedupCapacity)
	assert.GreaterOrEqual(t, o.Workers, 1)
	assert.Equal(t, 60*time.Second, o.DrainTimeout)
}
