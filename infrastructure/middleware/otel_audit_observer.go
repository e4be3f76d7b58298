package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

// tracerName is the instrumentation scope of audit spans.
const tracerName = "github.com/ahrav/go-fairaudit/audit"

var _ ports.AuditObserver = (*OTelAuditObserver)(nil)

type startKey struct{}

// OTelAuditObserver implements observability for audits using OpenTelemetry
// tracing. It creates one span per audit, sets attributes describing the
// inputs and verdicts, records an event per annotation, and forwards
// outcome counters to a MetricsCollector.
//
// The observer keeps no per-audit fields; the span and start time travel in
// the context returned by Start, so one observer may serve concurrent audits.
type OTelAuditObserver struct {
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewOTelAuditObserver creates a new OpenTelemetry audit observer using the
// global tracer provider. metrics may be nil.
func NewOTelAuditObserver(metrics ports.MetricsCollector) *OTelAuditObserver {
	return NewOTelAuditObserverWithProvider(metrics, otel.GetTracerProvider())
}

// NewOTelAuditObserverWithProvider creates an observer that draws its tracer
// from tp.
func NewOTelAuditObserverWithProvider(metrics ports.MetricsCollector, tp trace.TracerProvider) *OTelAuditObserver {
	return &OTelAuditObserver{
		metrics: metrics,
		tracer:  tp.Tracer(tracerName),
	}
}

// Start implements the AuditObserver interface. It starts the audit span
// and records the shape of the inputs.
func (o *OTelAuditObserver) Start(ctx context.Context, ds domain.Dataset) context.Context {
	ctx, span := o.tracer.Start(ctx, "AuditService.Audit")
	span.SetAttributes(
		attribute.String("audit.dataset", ds.Name),
		attribute.Int("audit.predictions", len(ds.Predictions)),
		attribute.Int("audit.labels", len(ds.Labels)),
		attribute.Int("audit.groups_vector", len(ds.Groups)),
	)
	return context.WithValue(ctx, startKey{}, time.Now())
}

// Finish implements the AuditObserver interface. It finalizes the span,
// records metrics, and marks validation failures as span errors.
func (o *OTelAuditObserver) Finish(ctx context.Context, ds domain.Dataset, report domain.Report, err error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	labels := map[string]string{"dataset": ds.Name}
	if started, ok := ctx.Value(startKey{}).(time.Time); ok && o.metrics != nil {
		o.metrics.RecordLatency("audit", time.Since(started), labels)
	}

	if err != nil {
		kind, isValidation := domain.KindOf(err)
		span.RecordError(err)
		if isValidation {
			span.AddEvent("audit.rejected", trace.WithAttributes(
				attribute.String("kind", string(kind)),
			))
			span.SetStatus(codes.Error, "audit input rejected")
			if o.metrics != nil {
				o.metrics.RecordCounter(MetricValidationFailures, 1, map[string]string{
					"dataset": ds.Name,
					"kind":    string(kind),
				})
			}
		} else {
			span.SetStatus(codes.Error, err.Error())
		}
		return
	}

	span.SetAttributes(
		attribute.Float64("audit.tolerance", report.Tolerance),
		attribute.Int("audit.subjects", report.Subjects),
		attribute.Int("audit.group_count", len(report.Groups)),
		attribute.Bool("audit.passed", report.Passed),
	)
	for _, m := range report.Metrics {
		span.SetAttributes(
			attribute.Float64("audit.disparity."+string(m.Metric), m.Disparity),
			attribute.Bool("audit.passed."+string(m.Metric), m.Passed),
		)
	}
	for _, a := range report.Annotations {
		span.AddEvent("audit.annotation", trace.WithAttributes(
			attribute.String("kind", string(a.Kind)),
			attribute.String("metric", string(a.Metric)),
			attribute.StringSlice("groups", a.Groups),
		))
	}

	o.updateMetrics(ds, report)
	span.SetStatus(codes.Ok, "audit completed")
}

// updateMetrics sends the audit outcome to the metrics collector.
func (o *OTelAuditObserver) updateMetrics(ds domain.Dataset, report domain.Report) {
	if o.metrics == nil {
		return
	}

	verdict := "failed"
	if report.Passed {
		verdict = "passed"
	}
	o.metrics.RecordCounter(MetricAuditsTotal, 1, map[string]string{
		"dataset": ds.Name,
		"verdict": verdict,
	})
	o.metrics.RecordGauge(MetricGroups, float64(len(report.Groups)), map[string]string{"dataset": ds.Name})

	for _, m := range report.Metrics {
		if m.AliasOf != "" {
			continue
		}
		o.metrics.RecordHistogram(MetricDisparity, m.Disparity, map[string]string{"metric": string(m.Metric)})
	}
	for _, a := range report.Annotations {
		o.metrics.RecordCounter(MetricAnnotationsTotal, 1, map[string]string{
			"dataset": ds.Name,
			"kind":    string(a.Kind),
		})
	}
}
