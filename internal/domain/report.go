package domain

import "slices"

// MetricName identifies a group fairness metric.
type MetricName string

// Metrics evaluated by every audit.
const (
	// MetricStatisticalParity compares positive-prediction rates across groups.
	MetricStatisticalParity MetricName = "statistical_parity"

	// MetricDemographicParity is reported under its own name but is the same
	// computation as MetricStatisticalParity.
	MetricDemographicParity MetricName = "demographic_parity"

	// MetricEqualOpportunity compares true-positive rates across groups.
	MetricEqualOpportunity MetricName = "equal_opportunity"
)

// DefaultTolerance is the maximum disparity a metric may show and still pass.
const DefaultTolerance = 0.1

// ConfusionCounts holds the binary confusion matrix of one group.
type ConfusionCounts struct {
	// Members is the number of subjects in the group.
	Members int `json:"members"`

	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	TrueNegatives  int `json:"true_negatives"`
}

// PredictedPositives returns the number of subjects predicted as 1.
func (c ConfusionCounts) PredictedPositives() int { return c.TruePositives + c.FalsePositives }

// ActualPositives returns the number of subjects labelled as 1.
func (c ConfusionCounts) ActualPositives() int { return c.TruePositives + c.FalseNegatives }

// GroupRate is the value of one metric for one group, together with the
// counts it was derived from.
type GroupRate[G comparable] struct {
	Group  G               `json:"group"`
	Rate   float64         `json:"rate"`
	Counts ConfusionCounts `json:"counts"`
}

// MetricResult maps every group to a rate in [0, 1]. Rates are ordered by the
// first appearance of each group in the sensitive-attribute vector.
type MetricResult[G comparable] struct {
	Metric MetricName     `json:"metric"`
	Rates  []GroupRate[G] `json:"rates"`
}

// Rate returns the rate recorded for group g.
func (m MetricResult[G]) Rate(g G) (float64, bool) {
	for _, r := range m.Rates {
		if r.Group == g {
			return r.Rate, true
		}
	}
	return 0, false
}

// Groups returns the groups in report order.
func (m MetricResult[G]) Groups() []G {
	groups := make([]G, len(m.Rates))
	for i, r := range m.Rates {
		groups[i] = r.Group
	}
	return groups
}

// MetricReport is the verdict for a single metric.
type MetricReport[G comparable] struct {
	// Metric is the name the verdict is reported under.
	Metric MetricName `json:"metric"`

	// AliasOf names the metric whose computation this report reuses.
	// It is empty for metrics computed in their own right.
	AliasOf MetricName `json:"alias_of,omitempty"`

	// Rates holds the per-group rates in report order.
	Rates []GroupRate[G] `json:"rates"`

	// Disparity is max(rate) - min(rate) across groups.
	Disparity float64 `json:"disparity"`

	// Passed is true when Disparity is strictly below the tolerance.
	Passed bool `json:"passed"`
}

// Rate returns the rate recorded for group g.
func (m MetricReport[G]) Rate(g G) (float64, bool) {
	return MetricResult[G]{Metric: m.Metric, Rates: m.Rates}.Rate(g)
}

// AnnotationKind names an informational condition noted during an audit.
type AnnotationKind string

const (
	// AnnotationDegenerateGroup marks groups without actual-positive members.
	// Their true-positive rate is defined as 0.0.
	AnnotationDegenerateGroup AnnotationKind = "DegenerateGroup"

	// AnnotationSingleGroupAudit marks audits with fewer than two groups.
	// Every disparity is defined as 0.0.
	AnnotationSingleGroupAudit AnnotationKind = "SingleGroupAudit"
)

// Annotation documents a convention applied while computing a report.
type Annotation[G comparable] struct {
	Kind    AnnotationKind `json:"kind"`
	Metric  MetricName     `json:"metric,omitempty"`
	Groups  []G            `json:"groups"`
	Message string         `json:"message"`
}

// AuditReport is the sole output of an audit. It is a pure function of the
// audit inputs and is never modified after it is built.
type AuditReport[G comparable] struct {
	// Tolerance is the disparity limit the verdicts were computed against.
	Tolerance float64 `json:"tolerance"`

	// Subjects is the number of evaluated subjects.
	Subjects int `json:"subjects"`

	// Groups lists every group in order of first appearance.
	Groups []G `json:"groups"`

	// Metrics holds one report per evaluated metric.
	Metrics []MetricReport[G] `json:"metrics"`

	// Passed is the logical AND of every metric verdict.
	Passed bool `json:"passed"`

	// Annotations lists the conventions applied during the audit.
	Annotations []Annotation[G] `json:"annotations,omitempty"`
}

// Metric returns the report for the named metric.
func (r AuditReport[G]) Metric(name MetricName) (MetricReport[G], bool) {
	i := slices.IndexFunc(r.Metrics, func(m MetricReport[G]) bool { return m.Metric == name })
	if i < 0 {
		return MetricReport[G]{}, false
	}
	return r.Metrics[i], true
}

// HasAnnotation reports whether an annotation of the given kind is present.
func (r AuditReport[G]) HasAnnotation(kind AnnotationKind) bool {
	return slices.ContainsFunc(r.Annotations, func(a Annotation[G]) bool { return a.Kind == kind })
}

// FailedMetrics returns the names of metrics whose verdict is false.
func (r AuditReport[G]) FailedMetrics() []MetricName {
	var failed []MetricName
	for _, m := range r.Metrics {
		if !m.Passed {
			failed = append(failed, m.Metric)
		}
	}
	return failed
}

// Clone returns a deep copy of r that shares no slices with it.
func (r AuditReport[G]) Clone() AuditReport[G] {
	out := r
	out.Groups = slices.Clone(r.Groups)
	if r.Metrics != nil {
		out.Metrics = make([]MetricReport[G], len(r.Metrics))
		for i, m := range r.Metrics {
			m.Rates = slices.Clone(m.Rates)
			out.Metrics[i] = m
		}
	}
	if r.Annotations != nil {
		out.Annotations = make([]Annotation[G], len(r.Annotations))
		for i, a := range r.Annotations {
			a.Groups = slices.Clone(a.Groups)
			out.Annotations[i] = a
		}
	}
	return out
}
