// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

// Auditor evaluates the group fairness of a dataset.
// Implementations must be safe for concurrent use: each call receives its
// own dataset and no state is shared between calls.
type Auditor interface {
	// Audit returns the report for ds, or a *domain.ValidationError when the
	// dataset cannot be audited. No partial report is returned on failure.
	//
	// The context parameter allows callers to abandon work that has not
	// started yet; the computation itself is bounded and never blocks.
	//
	// Example:
	//
	//	report, err := auditor.Audit(ctx, ds)
	//	if err != nil {
	//	    return fmt.Errorf("audit %s failed: %w", ds.Name, err)
	//	}
	Audit(ctx context.Context, ds domain.Dataset) (domain.Report, error)
}

// AuditObserver receives lifecycle callbacks around a single audit.
// It is the hook through which tracing and metrics are attached without the
// domain engine knowing about either.
type AuditObserver interface {
	// Start is called before validation and returns the context to use for
	// the rest of the audit.
	Start(ctx context.Context, ds domain.Dataset) context.Context

	// Finish is called exactly once with the outcome of the audit.
	Finish(ctx context.Context, ds domain.Dataset, report domain.Report, err error)
}
