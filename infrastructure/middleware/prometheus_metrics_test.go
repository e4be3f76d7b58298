package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-fairaudit/internal/ports"
)

// newTestMetrics registers collectors with a private registry so tests never
// collide on duplicate registration.
func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

// TestNewPrometheusMetrics verifies that a new PrometheusMetrics instance is
// created with all its internal metrics properly initialized.
func TestNewPrometheusMetrics(t *testing.T) {
	pm, _ := newTestMetrics(t)

	assert.NotNil(t, pm.auditsTotal, "auditsTotal should be initialized")
	assert.NotNil(t, pm.validationFailures, "validationFailures should be initialized")
	assert.NotNil(t, pm.annotationsTotal, "annotationsTotal should be initialized")
	assert.NotNil(t, pm.cacheEvents, "cacheEvents should be initialized")
	assert.NotNil(t, pm.disparity, "disparity should be initialized")
	assert.NotNil(t, pm.executionLatency, "executionLatency should be initialized")
	assert.NotNil(t, pm.operationCounter, "operationCounter should be initialized")
	assert.NotNil(t, pm.systemGauges, "systemGauges should be initialized")

	var _ ports.MetricsCollector = pm
}

func TestNewPrometheusMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)

	assert.Panics(t, func() { NewPrometheusMetrics(reg) })
}

// TestPrometheusMetrics_RecordCounter tests the routing of named counters.
func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordCounter(MetricAuditsTotal, 1, map[string]string{"dataset": "loans", "verdict": "passed"})
	pm.RecordCounter(MetricAuditsTotal, 2, map[string]string{"dataset": "loans", "verdict": "passed"})
	pm.RecordCounter(MetricValidationFailures, 1, map[string]string{"dataset": "loans", "kind": "ShapeMismatch"})
	pm.RecordCounter(MetricAnnotationsTotal, 1, map[string]string{"kind": "DegenerateGroup"})
	pm.RecordCounter(MetricCacheEvents, 4, map[string]string{"event": "hit"})
	pm.RecordCounter("custom_operation", 5, map[string]string{})

	assert.Equal(t, 3.0, testutil.ToFloat64(pm.auditsTotal.WithLabelValues("loans", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.validationFailures.WithLabelValues("loans", "ShapeMismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.annotationsTotal.WithLabelValues("unknown", "DegenerateGroup")))
	assert.Equal(t, 4.0, testutil.ToFloat64(pm.cacheEvents.WithLabelValues("hit")))
	assert.Equal(t, 5.0, testutil.ToFloat64(pm.operationCounter.WithLabelValues("custom_operation", "unknown")))
}

// TestPrometheusMetrics_RecordGauge verifies gauges keep the latest value.
func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordGauge(MetricGroups, 3, map[string]string{"dataset": "loans"})
	pm.RecordGauge(MetricGroups, 5, map[string]string{"dataset": "loans"})

	assert.Equal(t, 5.0, testutil.ToFloat64(pm.systemGauges.WithLabelValues(MetricGroups, "loans")))
}

// TestPrometheusMetrics_Histograms verifies histogram routing by counting
// collected series.
func TestPrometheusMetrics_Histograms(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordHistogram(MetricDisparity, 0.25, map[string]string{"metric": "statistical_parity"})
	pm.RecordHistogram(MetricDisparity, 0.5, map[string]string{"metric": "equal_opportunity"})
	pm.RecordHistogram("render_seconds", 0.01, map[string]string{"dataset": "loans"})
	pm.RecordLatency("audit", 20*time.Millisecond, map[string]string{"dataset": "loans"})

	count, err := testutil.GatherAndCount(reg, "fairaudit_metric_disparity")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "fairaudit_execution_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDatasetLabel(t *testing.T) {
	assert.Equal(t, "unknown", datasetLabel(nil))
	assert.Equal(t, "unknown", datasetLabel(map[string]string{"dataset": ""}))
	assert.Equal(t, "loans", datasetLabel(map[string]string{"dataset": "loans"}))
}
