package domain

// Dataset is an audit request as handed over by an upstream collaborator:
// pre-computed binary predictions and labels with one string group label per
// subject.
type Dataset struct {
	// Name identifies the dataset in logs, metrics, and rendered reports.
	Name string `json:"name,omitempty"`

	Predictions []int    `json:"predictions"`
	Labels      []int    `json:"labels"`
	Groups      []string `json:"groups"`
}

// Len returns the number of predictions.
func (d Dataset) Len() int { return len(d.Predictions) }

// Report is an AuditReport over string-labelled groups.
type Report = AuditReport[string]
