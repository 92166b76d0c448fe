package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/supportstream/errors"
)

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_tickets_total",
		Help: "test counter",
	})

	require.NoError(t, registry.RegisterCounter("pipeline", "test_tickets_total", counter))

	// Same key again is rejected
	err := registry.RegisterCounter("pipeline", "test_tickets_total", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterSameNameDifferentService(t *testing.T) {
	registry := NewMetricsRegistry()

	a := prometheus.NewGauge(prometheus.GaugeOpts{Name: "svc_a_depth", Help: "a"})
	b := prometheus.NewGauge(prometheus.GaugeOpts{Name: "svc_b_depth", Help: "b"})

	assert.NoError(t, registry.RegisterGauge("svc-a", "depth", a))
	assert.NoError(t, registry.RegisterGauge("svc-b", "depth", b))
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "test_duration_seconds",
		Help: "test histogram",
	})
	require.NoError(t, registry.RegisterHistogram("pipeline", "test_duration_seconds", hist))

	assert.True(t, registry.Unregister("pipeline", "test_duration_seconds"))
	assert.False(t, registry.Unregister("pipeline", "test_duration_seconds"))

	// Re-registration after unregister succeeds
	assert.NoError(t, registry.RegisterHistogram("pipeline", "test_duration_seconds", hist))
}

func TestCoreMetricsRegistered(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()
	require.NotNil(t, core)

	core.RecordMessageReceived("pipeline", "support-tickets")
	core.RecordMessageProcessed("pipeline", "support-tickets", "success")
	core.RecordBrokerStatus(true)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["supportstream_messages_received_total"])
	assert.True(t, names["supportstream_messages_processed_total"])
	assert.True(t, names["supportstream_broker_connected"])
}
