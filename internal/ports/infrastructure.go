package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

// CacheStore defines the interface for caching audit reports.
// Audits are deterministic, so a report cached under the digest of its
// inputs stays valid for as long as the entry is kept.
type CacheStore interface {
	// Get retrieves a cached report by key.
	// Returns the report and true if found, or a zero report and false.
	Get(ctx context.Context, key string) (domain.Report, bool, error)

	// Set stores a report in the cache with an expiration time.
	// A zero duration means the item doesn't expire.
	Set(ctx context.Context, key string, report domain.Report, expiration time.Duration) error

	// Delete removes a report from the cache.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Clear removes all reports from the cache.
	Clear(ctx context.Context) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus,
// OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like cache hits/misses, errors, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like disparities.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// DatasetLoader reads audit inputs from an external source such as a CSV
// export or a JSON document produced by a model-serving pipeline.
type DatasetLoader interface {
	// Load reads and decodes the dataset found at path.
	Load(ctx context.Context, path string) (domain.Dataset, error)
}
