// Package report presents audit reports to people and pipelines. Renderers
// only format; they never recompute or alter a verdict.
package report

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

// Envelope wraps a report with run metadata. The report itself carries no
// identifiers or timestamps so that identical inputs give identical reports;
// those belong to the run that produced it.
type Envelope struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Dataset     string        `json:"dataset,omitempty"`
	Report      domain.Report `json:"report"`
}

// NewEnvelope wraps r with a fresh run ID and the current UTC time.
func NewEnvelope(dataset string, r domain.Report) Envelope {
	return Envelope{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Dataset:     dataset,
		Report:      r,
	}
}

// Options control which parts of a report are rendered.
type Options struct {
	// Metrics limits rendered metric sections to these names. Empty renders
	// all of them. The overall verdict is always shown as computed.
	Metrics []domain.MetricName
}

// visibleMetrics returns the metric reports selected by opts, in report
// order.
func (o Options) visibleMetrics(r domain.Report) []domain.MetricReport[string] {
	if len(o.Metrics) == 0 {
		return r.Metrics
	}
	out := make([]domain.MetricReport[string], 0, len(o.Metrics))
	for _, m := range r.Metrics {
		if slices.Contains(o.Metrics, m.Metric) {
			out = append(out, m)
		}
	}
	return out
}

// Filter returns a copy of env whose report lists only the metrics selected
// by opts. Annotations tied to a hidden metric are dropped with it.
func Filter(env Envelope, opts Options) Envelope {
	if len(opts.Metrics) == 0 {
		return env
	}
	out := env
	out.Report.Metrics = opts.visibleMetrics(env.Report)
	out.Report.Annotations = nil
	for _, a := range env.Report.Annotations {
		if a.Metric == "" || slices.Contains(opts.Metrics, a.Metric) {
			out.Report.Annotations = append(out.Report.Annotations, a)
		}
	}
	return out
}
