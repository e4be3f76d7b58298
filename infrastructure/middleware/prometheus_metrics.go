// Package middleware provides cross-cutting concerns for the audit service.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-fairaudit/internal/ports"
)

// Metric names understood by PrometheusMetrics. Any other name is recorded
// on the generic operation counter or state gauge.
const (
	MetricAuditsTotal        = "audits_total"
	MetricValidationFailures = "validation_failures_total"
	MetricAnnotationsTotal   = "annotations_total"
	MetricCacheEvents        = "cache_events_total"
	MetricDisparity          = "metric_disparity"
	MetricGroups             = "audit_groups"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It provides real-time monitoring of audit outcomes, disparity
// distributions, and cache effectiveness.
type PrometheusMetrics struct {
	auditsTotal        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	annotationsTotal   *prometheus.CounterVec
	cacheEvents        *prometheus.CounterVec
	disparity          *prometheus.HistogramVec
	executionLatency   *prometheus.HistogramVec
	operationCounter   *prometheus.CounterVec
	systemGauges       *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics with reg. A nil reg registers with the global
// Prometheus registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		// Audit outcome metrics.
		auditsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairaudit_audits_total",
				Help: "Total number of audits by verdict.",
			},
			[]string{"dataset", "verdict"},
		),
		validationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairaudit_validation_failures_total",
				Help: "Audits rejected before computation, by validation error kind.",
			},
			[]string{"dataset", "kind"},
		),
		annotationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairaudit_annotations_total",
				Help: "Informational annotations attached to audit reports.",
			},
			[]string{"dataset", "kind"},
		),
		cacheEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairaudit_cache_events_total",
				Help: "Report cache lookups by outcome.",
			},
			[]string{"event"},
		),
		disparity: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fairaudit_metric_disparity",
				Help:    "Distribution of per-metric disparities (max rate minus min rate).",
				Buckets: prometheus.LinearBuckets(0, 0.05, 21),
			},
			[]string{"metric"},
		),

		// General execution metrics for comprehensive observability.
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fairaudit_execution_duration_seconds",
				Help:    "Execution time of audit operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "dataset"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairaudit_operations_total",
				Help: "Total number of other operations recorded by the audit service.",
			},
			[]string{"operation", "dataset"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fairaudit_state",
				Help: "Most recent values reported by the audit service.",
			},
			[]string{"metric", "dataset"},
		),
	}
}

// datasetLabel returns the dataset label, defaulting to "unknown".
func datasetLabel(labels map[string]string) string {
	if ds := labels["dataset"]; ds != "" {
		return ds
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, datasetLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	dataset := datasetLabel(labels)

	switch metric {
	case MetricAuditsTotal:
		pm.auditsTotal.WithLabelValues(dataset, labels["verdict"]).Add(value)
	case MetricValidationFailures:
		pm.validationFailures.WithLabelValues(dataset, labels["kind"]).Add(value)
	case MetricAnnotationsTotal:
		pm.annotationsTotal.WithLabelValues(dataset, labels["kind"]).Add(value)
	case MetricCacheEvents:
		pm.cacheEvents.WithLabelValues(labels["event"]).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, dataset).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, datasetLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Disparities go to their own histogram;
// everything else is treated as a duration in seconds.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == MetricDisparity {
		pm.disparity.WithLabelValues(labels["metric"]).Observe(value)
		return
	}
	pm.executionLatency.WithLabelValues(metric, datasetLabel(labels)).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
