package application

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

// BatchResult pairs one dataset of a batch with its outcome.
// Exactly one of Report and Err is meaningful.
type BatchResult struct {
	Dataset string
	Report  domain.Report
	Err     error
}

// AuditBatch audits every dataset concurrently, running at most
// Config.Concurrency audits at once. Results are returned in input order.
//
// A validation failure is recorded in that dataset's BatchResult and does
// not stop the batch. Cancelling ctx stops audits that have not started yet;
// their results carry the context error, and AuditBatch returns it.
func (s *AuditService) AuditBatch(ctx context.Context, datasets []domain.Dataset) ([]BatchResult, error) {
	results := make([]BatchResult, len(datasets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, ds := range datasets {
		results[i].Dataset = ds.Name
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			report, err := s.Audit(gctx, ds)
			results[i].Report = report
			results[i].Err = err
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil || !r.Report.Passed {
			failed++
		}
	}
	s.logger.Info("batch audit completed",
		zap.Int("datasets", len(datasets)),
		zap.Int("failed_or_unfair", failed),
	)
	return results, nil
}
