package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-fairaudit/infrastructure/dataset"
	"github.com/ahrav/go-fairaudit/internal/domain"
)

func TestGenerateDataset_Deterministic(t *testing.T) {
	cfg := DefaultGeneratorConfig(200)

	a, err := GenerateDataset(cfg, 42)
	require.NoError(t, err)
	b, err := GenerateDataset(cfg, 42)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a.Predictions, 200)
	assert.Len(t, a.Labels, 200)
	assert.Len(t, a.Groups, 200)
}

func TestGenerateDataset_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratorConfig)
	}{
		{name: "zero size", mutate: func(c *GeneratorConfig) { c.Size = 0 }},
		{name: "no groups", mutate: func(c *GeneratorConfig) { c.Groups = nil }},
		{name: "unnamed group", mutate: func(c *GeneratorConfig) { c.Groups[0].Name = "" }},
		{name: "zero weight", mutate: func(c *GeneratorConfig) { c.Groups[0].Weight = 0 }},
		{name: "rate above one", mutate: func(c *GeneratorConfig) { c.Groups[1].TPR = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGeneratorConfig(10)
			tt.mutate(&cfg)
			_, err := GenerateDataset(cfg, 1)
			assert.Error(t, err)
		})
	}
}

func TestGenerateDataset_BiasIsDetected(t *testing.T) {
	fair, err := GenerateDataset(DefaultGeneratorConfig(20000), 7)
	require.NoError(t, err)
	biased, err := GenerateDataset(BiasedGeneratorConfig(20000, 0.5), 7)
	require.NoError(t, err)

	fairReport, err := domain.AuditWithDefaults(fair.Predictions, fair.Labels, fair.Groups)
	require.NoError(t, err)
	assert.True(t, fairReport.Passed, "identical profiles should stay within tolerance")

	biasedReport, err := domain.AuditWithDefaults(biased.Predictions, biased.Labels, biased.Groups)
	require.NoError(t, err)
	assert.False(t, biasedReport.Passed)

	eo, ok := biasedReport.Metric(domain.MetricEqualOpportunity)
	require.True(t, ok)
	assert.InDelta(t, 0.5, eo.Disparity, 0.05)
}

func TestSaveDataset_RoundTripsThroughLoaders(t *testing.T) {
	ds, err := GenerateDataset(BiasedGeneratorConfig(50, 0.3), 3)
	require.NoError(t, err)

	loader := dataset.NewLoader("")
	for _, name := range []string{"out.csv", "nested/out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveDataset(ds, path))

			loaded, err := loader.Load(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, ds.Predictions, loaded.Predictions)
			assert.Equal(t, ds.Labels, loaded.Labels)
			assert.Equal(t, ds.Groups, loaded.Groups)
		})
	}

	assert.Error(t, SaveDataset(ds, filepath.Join(t.TempDir(), "out.parquet")))
}

func TestComputeDatasetStatistics(t *testing.T) {
	ds := domain.Dataset{
		Predictions: []int{1, 0, 1},
		Labels:      []int{1, 1, 0},
		Groups:      []string{"a", "b", "a"},
	}
	stats := ComputeDatasetStatistics(ds)

	assert.Equal(t, 3, stats.Subjects)
	assert.Equal(t, 2, stats.PositivePredictions)
	assert.Equal(t, 2, stats.PositiveLabels)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, stats.GroupCounts)
}
