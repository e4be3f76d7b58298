package domain_test

import (
	"fmt"
	"testing"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/testutils"
)

// BenchmarkAudit measures a full audit across dataset sizes.
func BenchmarkAudit(b *testing.B) {
	for _, size := range []int{100, 10_000, 1_000_000} {
		ds, err := testutils.GenerateDataset(testutils.BiasedGeneratorConfig(size, 0.2), 1)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("Subjects_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				_, _ = domain.Audit(ds.Predictions, ds.Labels, ds.Groups, domain.DefaultTolerance)
			}
		})
	}
}

// BenchmarkAudit_ManyGroups measures partitioning cost as the number of
// distinct groups grows.
func BenchmarkAudit_ManyGroups(b *testing.B) {
	for _, groupCount := range []int{2, 50, 1000} {
		cfg := testutils.DefaultGeneratorConfig(100_000)
		cfg.Groups = make([]testutils.GroupProfile, groupCount)
		for i := range cfg.Groups {
			cfg.Groups[i] = testutils.GroupProfile{
				Name: fmt.Sprintf("g%d", i), Weight: 1, BaseRate: 0.5, TPR: 0.7, FPR: 0.2,
			}
		}
		ds, err := testutils.GenerateDataset(cfg, 1)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("Groups_%d", groupCount), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				_, _ = domain.Audit(ds.Predictions, ds.Labels, ds.Groups, domain.DefaultTolerance)
			}
		})
	}
}

// BenchmarkValidateInputs isolates the validation pass.
func BenchmarkValidateInputs(b *testing.B) {
	ds, err := testutils.GenerateDataset(testutils.DefaultGeneratorConfig(100_000), 1)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for b.Loop() {
		_ = domain.ValidateInputs(ds.Predictions, ds.Labels, ds.Groups)
	}
}
