package report

import (
	"go.uber.org/zap"
)

// LogSummary writes one structured log entry per audit and one per failing
// metric.
func LogSummary(logger *zap.Logger, env Envelope) {
	r := env.Report
	logger.Info("audit finished",
		zap.String("run_id", env.RunID),
		zap.String("dataset", env.Dataset),
		zap.Bool("passed", r.Passed),
		zap.Float64("tolerance", r.Tolerance),
		zap.Int("subjects", r.Subjects),
		zap.Strings("groups", r.Groups),
		zap.Int("annotations", len(r.Annotations)),
	)

	for _, name := range r.FailedMetrics() {
		m, _ := r.Metric(name)
		logger.Warn("metric exceeds tolerance",
			zap.String("run_id", env.RunID),
			zap.String("metric", string(name)),
			zap.Float64("disparity", m.Disparity),
			zap.Float64("tolerance", r.Tolerance),
		)
	}
}
