package application

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

// ErrUnknownMetric is returned when a metric name is not registered.
var ErrUnknownMetric = errors.New("unknown metric")

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 4

// MetricDescriptor documents a fairness metric the engine reports.
type MetricDescriptor struct {
	// Name is the canonical metric name.
	Name domain.MetricName `json:"name"`
	// AliasOf is set when the metric reuses another metric's computation.
	AliasOf domain.MetricName `json:"alias_of,omitempty"`
	// Rate names the per-group rate the metric compares.
	Rate string `json:"rate"`
	// Description states the fairness principle the metric checks.
	Description string `json:"description"`
}

// MetricRegistry maps metric names and aliases to their descriptors.
// It is used to validate user-supplied metric names and to describe report
// sections; it does not change what an audit computes.
type MetricRegistry struct {
	// descriptors maps canonical and alternate spellings to descriptors.
	descriptors map[string]MetricDescriptor
	// order preserves registration order for listing.
	order []domain.MetricName
	// mu protects concurrent access to the maps.
	mu sync.RWMutex
}

// builtinMetrics backs the metricname config validator.
var builtinMetrics = NewMetricRegistry()

// NewMetricRegistry creates a registry with the engine's metrics registered.
func NewMetricRegistry() *MetricRegistry {
	r := &MetricRegistry{descriptors: make(map[string]MetricDescriptor)}
	r.registerBuiltins()
	return r
}

// registerBuiltins registers the three metrics every audit reports.
// Demographic parity is registered as an alias of statistical parity.
func (r *MetricRegistry) registerBuiltins() {
	parity := MetricDescriptor{
		Name:        domain.MetricStatisticalParity,
		Rate:        "positive-prediction rate",
		Description: "P(prediction=1 | group) should be approximately equal for all groups.",
	}
	_ = r.Register(parity)
	_ = r.Register(MetricDescriptor{
		Name:        domain.MetricDemographicParity,
		AliasOf:     domain.MetricStatisticalParity,
		Rate:        parity.Rate,
		Description: parity.Description,
	})
	_ = r.Register(MetricDescriptor{
		Name:        domain.MetricEqualOpportunity,
		Rate:        "true-positive rate",
		Description: "P(prediction=1 | label=1, group) should be approximately equal for all groups; groups without actual positives count as 0.0.",
	})
}

// Register adds a descriptor under its canonical name and under the
// dash-separated spelling of that name.
func (r *MetricRegistry) Register(d MetricDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("metric name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d.AliasOf != "" {
		if _, ok := r.descriptors[string(d.AliasOf)]; !ok {
			return fmt.Errorf("alias %s refers to unregistered metric %s: %w", d.Name, d.AliasOf, ErrUnknownMetric)
		}
	}

	key := string(d.Name)
	if _, exists := r.descriptors[key]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.descriptors[key] = d
	r.descriptors[strings.ReplaceAll(key, "_", "-")] = d
	return nil
}

// Resolve looks a metric up by name or alternate spelling, ignoring case.
// Unknown names produce an error wrapping ErrUnknownMetric that suggests the
// closest registered name when one is near enough.
func (r *MetricRegistry) Resolve(name string) (MetricDescriptor, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.descriptors[key]; ok {
		return d, nil
	}

	if suggestion := r.closest(key); suggestion != "" {
		return MetricDescriptor{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownMetric, name, suggestion)
	}
	return MetricDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Canonical resolves name and follows its alias, returning the metric whose
// computation produces the reported rates.
func (r *MetricRegistry) Canonical(name string) (domain.MetricName, error) {
	d, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	if d.AliasOf != "" {
		return d.AliasOf, nil
	}
	return d.Name, nil
}

// List returns every registered descriptor in registration order.
func (r *MetricRegistry) List() []MetricDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MetricDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.descriptors[string(name)])
	}
	return out
}

// closest returns the registered canonical name with the smallest edit
// distance to key, or "" when none is within maxSuggestionDistance.
// Callers must hold r.mu.
func (r *MetricRegistry) closest(key string) string {
	best, bestDist := "", maxSuggestionDistance+1
	names := make([]string, len(r.order))
	for i, n := range r.order {
		names[i] = string(n)
	}
	slices.Sort(names)
	for _, n := range names {
		if d := levenshtein.ComputeDistance(key, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}
