// Package testutils provides synthetic audit datasets for tests, benchmarks,
// and demos. These components are intended for internal use within the
// project's test suites and tooling and are not part of the public API.
package testutils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

// GroupProfile describes how subjects of one group are generated.
type GroupProfile struct {
	// Name is the group label written to the dataset.
	Name string `json:"name" validate:"required"`
	// Weight is the group's relative share of subjects.
	Weight float64 `json:"weight" validate:"gt=0"`
	// BaseRate is P(label=1) within the group.
	BaseRate float64 `json:"base_rate" validate:"min=0,max=1"`
	// TPR is P(prediction=1 | label=1) within the group.
	TPR float64 `json:"tpr" validate:"min=0,max=1"`
	// FPR is P(prediction=1 | label=0) within the group.
	FPR float64 `json:"fpr" validate:"min=0,max=1"`
}

// GeneratorConfig controls GenerateDataset.
type GeneratorConfig struct {
	Name   string         `json:"name"`
	Size   int            `json:"size" validate:"min=1"`
	Groups []GroupProfile `json:"groups" validate:"min=1,dive"`
}

// DefaultGeneratorConfig returns two equally sized groups with identical
// classifier behaviour.
func DefaultGeneratorConfig(size int) GeneratorConfig {
	return GeneratorConfig{
		Name: "synthetic-fair",
		Size: size,
		Groups: []GroupProfile{
			{Name: "group_a", Weight: 1, BaseRate: 0.4, TPR: 0.8, FPR: 0.1},
			{Name: "group_b", Weight: 1, BaseRate: 0.4, TPR: 0.8, FPR: 0.1},
		},
	}
}

// BiasedGeneratorConfig returns two groups whose true-positive rates differ
// by gap. The disadvantaged group also receives fewer false positives, so
// positive-prediction rates diverge as well.
func BiasedGeneratorConfig(size int, gap float64) GeneratorConfig {
	cfg := DefaultGeneratorConfig(size)
	cfg.Name = "synthetic-biased"
	cfg.Groups[1].TPR = max(0, cfg.Groups[0].TPR-gap)
	cfg.Groups[1].FPR = max(0, cfg.Groups[0].FPR-gap/2)
	return cfg
}

// GenerateDataset draws cfg.Size subjects. The seed parameter controls
// randomization: use a fixed value for reproducible tests.
func GenerateDataset(cfg GeneratorConfig, seed int64) (domain.Dataset, error) {
	if err := NewTestValidator().Struct(cfg); err != nil {
		return domain.Dataset{}, fmt.Errorf("invalid generator config: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))

	total := 0.0
	for _, g := range cfg.Groups {
		total += g.Weight
	}

	ds := domain.Dataset{
		Name:        cfg.Name,
		Predictions: make([]int, cfg.Size),
		Labels:      make([]int, cfg.Size),
		Groups:      make([]string, cfg.Size),
	}
	for i := range cfg.Size {
		g := pickGroup(rng, cfg.Groups, total)
		label := bernoulli(rng, g.BaseRate)
		var pred int
		if label == 1 {
			pred = bernoulli(rng, g.TPR)
		} else {
			pred = bernoulli(rng, g.FPR)
		}
		ds.Predictions[i] = pred
		ds.Labels[i] = label
		ds.Groups[i] = g.Name
	}
	return ds, nil
}

func pickGroup(rng *rand.Rand, groups []GroupProfile, total float64) GroupProfile {
	r := rng.Float64() * total
	for _, g := range groups {
		if r < g.Weight {
			return g
		}
		r -= g.Weight
	}
	return groups[len(groups)-1]
}

func bernoulli(rng *rand.Rand, p float64) int {
	if rng.Float64() < p {
		return 1
	}
	return 0
}

// SaveDataset writes ds to path as CSV or JSON, chosen by extension, in the
// layouts the dataset loaders read.
func SaveDataset(ds domain.Dataset, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(ds, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal dataset: %w", err)
		}
		return os.WriteFile(path, data, 0o600)
	case ".csv":
		return saveCSV(ds, path)
	default:
		return fmt.Errorf("unsupported dataset extension %q", filepath.Ext(path))
	}
}

func saveCSV(ds domain.Dataset, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"prediction", "label", "group"}); err != nil {
		return err
	}
	for i := range ds.Predictions {
		row := []string{strconv.Itoa(ds.Predictions[i]), strconv.Itoa(ds.Labels[i]), ds.Groups[i]}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// DatasetStatistics summarises a dataset for display.
type DatasetStatistics struct {
	Subjects            int            `json:"subjects"`
	GroupCounts         map[string]int `json:"group_counts"`
	PositiveLabels      int            `json:"positive_labels"`
	PositivePredictions int            `json:"positive_predictions"`
}

// ComputeDatasetStatistics counts subjects per group and positive labels and
// predictions.
func ComputeDatasetStatistics(ds domain.Dataset) DatasetStatistics {
	stats := DatasetStatistics{
		Subjects:    ds.Len(),
		GroupCounts: make(map[string]int),
	}
	for i := range ds.Predictions {
		stats.PositivePredictions += ds.Predictions[i]
		stats.PositiveLabels += ds.Labels[i]
		stats.GroupCounts[ds.Groups[i]]++
	}
	return stats
}
