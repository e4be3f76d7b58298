package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

// unfairEnvelope audits groups X and Y where X is always predicted positive
// and Y never is, and Y has no actual positives.
func unfairEnvelope(t *testing.T) Envelope {
	t.Helper()
	r, err := domain.AuditWithDefaults(
		[]int{1, 1, 0, 0},
		[]int{1, 0, 0, 0},
		[]string{"X", "X", "Y|Z", "Y|Z"},
	)
	require.NoError(t, err)
	require.False(t, r.Passed)
	return NewEnvelope("loans", r)
}

func TestNewEnvelope(t *testing.T) {
	env := unfairEnvelope(t)
	_, err := uuid.Parse(env.RunID)
	assert.NoError(t, err)
	assert.False(t, env.GeneratedAt.IsZero())
	assert.Equal(t, "loans", env.Dataset)

	other := NewEnvelope("loans", env.Report)
	assert.NotEqual(t, env.RunID, other.RunID)
	assert.Equal(t, env.Report, other.Report)
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(unfairEnvelope(t), Options{})

	assert.Contains(t, md, "# Fairness Audit Report")
	assert.Contains(t, md, "Status: **FAIL**")
	assert.Contains(t, md, "| statistical_parity | 1.0000 | false |")
	assert.Contains(t, md, "| demographic_parity (alias of statistical_parity) | 1.0000 | false |")
	assert.Contains(t, md, "### equal_opportunity")
	assert.NotContains(t, md, "### demographic_parity", "alias shares the statistical parity table")
	assert.Contains(t, md, `| Y\|Z | 0.0000 | 2 | 0 | 0 | 0 | 2 |`)
	assert.Contains(t, md, "**DegenerateGroup**")
}

func TestBuildMarkdown_FilteredMetrics(t *testing.T) {
	opts := Options{Metrics: []domain.MetricName{domain.MetricStatisticalParity}}
	md := BuildMarkdown(unfairEnvelope(t), opts)

	assert.Contains(t, md, "### statistical_parity")
	assert.NotContains(t, md, "equal_opportunity")
	assert.NotContains(t, md, "DegenerateGroup", "annotation belongs to a hidden metric")
	assert.Contains(t, md, "Status: **FAIL**")
}

func TestBuildText(t *testing.T) {
	text := BuildText(unfairEnvelope(t), Options{})
	lines := strings.Split(strings.TrimSpace(text), "\n")

	assert.Equal(t, "loans: FAIL (tolerance 0.1000, 4 subjects, 2 groups)", lines[0])
	assert.Contains(t, text, "equal_opportunity")
	assert.Contains(t, text, "note: DegenerateGroup")
}

func TestFilter_LeavesOriginalUntouched(t *testing.T) {
	env := unfairEnvelope(t)
	filtered := Filter(env, Options{Metrics: []domain.MetricName{domain.MetricEqualOpportunity}})

	require.Len(t, filtered.Report.Metrics, 1)
	assert.Equal(t, domain.MetricEqualOpportunity, filtered.Report.Metrics[0].Metric)
	assert.Len(t, env.Report.Metrics, 3)
	assert.Equal(t, env.Report.Passed, filtered.Report.Passed)
}

func TestRender(t *testing.T) {
	env := unfairEnvelope(t)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatJSON, env, Options{}))

		var decoded Envelope
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, env.RunID, decoded.RunID)
		assert.Equal(t, env.Report.Passed, decoded.Report.Passed)
		assert.Len(t, decoded.Report.Metrics, 3)
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, "MARKDOWN", env, Options{}))
		assert.True(t, strings.HasPrefix(buf.String(), "# Fairness Audit Report"))
	})

	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		err := Render(&buf, "xml", env, Options{})
		assert.ErrorIs(t, err, ports.ErrUnsupportedFormat)
		assert.Zero(t, buf.Len())
	})
}

func TestLogSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := unfairEnvelope(t)

	LogSummary(zap.New(core), env)

	finished := logs.FilterMessage("audit finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.Equal(t, false, fields["passed"])
	assert.Equal(t, env.RunID, fields["run_id"])

	// Every metric fails in this dataset.
	assert.Equal(t, 3, logs.FilterMessage("metric exceeds tolerance").Len())
}

func TestRender_AliasOnlySelectionShowsRates(t *testing.T) {
	env := unfairEnvelope(t)
	opts := Options{Metrics: []domain.MetricName{domain.MetricDemographicParity}}

	md := BuildMarkdown(env, opts)
	assert.Contains(t, md, "### demographic_parity")
	assert.Contains(t, md, "| X | 1.0000 | 2 | 1 | 1 | 0 | 0 |")
	assert.NotContains(t, md, "statistical_parity |")

	text := BuildText(env, opts)
	assert.Contains(t, text, "demographic_parity")
	assert.Regexp(t, `(?m)^\s+X\s+1\.0000$`, text)
	assert.Regexp(t, `(?m)^\s+Y\|Z\s+0\.0000$`, text)
}

func TestRender_AliasWithCanonicalListsRatesOnce(t *testing.T) {
	env := unfairEnvelope(t)
	opts := Options{Metrics: []domain.MetricName{domain.MetricStatisticalParity, domain.MetricDemographicParity}}

	md := BuildMarkdown(env, opts)
	assert.Contains(t, md, "### statistical_parity")
	assert.NotContains(t, md, "### demographic_parity")
	assert.Equal(t, 1, strings.Count(md, "| X | 1.0000 |"))
}
