// Package domain contains the pure, dependency-free fairness audit engine:
// input validation, per-group rate calculation, disparity aggregation, and
// report assembly. Nothing in this package performs I/O or keeps state
// between calls, so every function is safe for concurrent use.
package domain

import (
	"fmt"
	"slices"
)

// Audit evaluates group fairness of binary predictions against binary labels.
//
// The three vectors are index-aligned: predictions[i] and labels[i] belong to
// the subject whose sensitive attribute is groups[i]. Statistical parity and
// its alias demographic parity compare positive-prediction rates; equal
// opportunity compares true-positive rates. Each metric passes when its
// disparity is strictly below tolerance, and the report passes when all do.
//
// Audit returns a *ValidationError wrapping ErrInvalidTolerance,
// ErrShapeMismatch, ErrEmptyInput, or ErrNonBinaryValue when the inputs
// cannot be audited. No report is produced in that case.
//
// Example:
//
//	report, err := domain.Audit(
//	    []int{1, 1, 0, 0},
//	    []int{1, 0, 0, 1},
//	    []string{"X", "X", "Y", "Y"},
//	    domain.DefaultTolerance,
//	)
func Audit[G comparable](predictions, labels []int, groups []G, tolerance float64) (AuditReport[G], error) {
	if err := ValidateTolerance(tolerance); err != nil {
		return AuditReport[G]{}, err
	}
	if err := ValidateInputs(predictions, labels, groups); err != nil {
		return AuditReport[G]{}, err
	}

	stats := Tally(predictions, labels, PartitionByGroup(groups))
	return BuildReport(len(predictions), stats, tolerance), nil
}

// AuditWithDefaults runs Audit with DefaultTolerance.
func AuditWithDefaults[G comparable](predictions, labels []int, groups []G) (AuditReport[G], error) {
	return Audit(predictions, labels, groups, DefaultTolerance)
}

// BuildReport derives every metric verdict and annotation from per-group
// statistics. stats must be non-empty and in first-appearance order.
func BuildReport[G comparable](subjects int, stats []GroupStats[G], tolerance float64) AuditReport[G] {
	ppr := PositivePredictionRates(stats)
	tpr, degenerate := TruePositiveRates(stats)

	parity := Judge(ppr, tolerance)
	demographic := Judge(ppr, tolerance)
	demographic.Metric = MetricDemographicParity
	demographic.AliasOf = MetricStatisticalParity
	demographic.Rates = slices.Clone(ppr.Rates)
	opportunity := Judge(tpr, tolerance)

	report := AuditReport[G]{
		Tolerance: tolerance,
		Subjects:  subjects,
		Groups:    ppr.Groups(),
		Metrics:   []MetricReport[G]{parity, demographic, opportunity},
		Passed:    parity.Passed && demographic.Passed && opportunity.Passed,
	}

	if len(degenerate) > 0 {
		report.Annotations = append(report.Annotations, Annotation[G]{
			Kind:    AnnotationDegenerateGroup,
			Metric:  MetricEqualOpportunity,
			Groups:  degenerate,
			Message: fmt.Sprintf("%d group(s) have no actual-positive members; true-positive rate defined as 0.0", len(degenerate)),
		})
	}
	if len(stats) < 2 {
		report.Annotations = append(report.Annotations, Annotation[G]{
			Kind:    AnnotationSingleGroupAudit,
			Groups:  slices.Clone(report.Groups),
			Message: "fewer than two groups present; every disparity defined as 0.0",
		})
	}
	return report
}
