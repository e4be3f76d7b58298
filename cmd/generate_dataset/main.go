// Command generate_dataset writes a synthetic audit dataset with a
// controllable true-positive-rate gap between two groups.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/ahrav/go-fairaudit/internal/testutils"
)

func main() {
	var (
		size       = flag.Int("size", 1000, "Number of subjects to generate")
		gap        = flag.Float64("gap", 0, "True-positive-rate gap between the two groups (0 generates a fair dataset)")
		seed       = flag.Int64("seed", 0, "Random seed; 0 uses the current time")
		outputPath = flag.String("output", "testdata/synthetic.csv", "Output file path (.csv or .json)")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	cfg := testutils.DefaultGeneratorConfig(*size)
	if *gap > 0 {
		cfg = testutils.BiasedGeneratorConfig(*size, *gap)
	}

	ds, err := testutils.GenerateDataset(cfg, *seed)
	if err != nil {
		log.Fatalf("Failed to generate dataset: %v", err)
	}
	if err := testutils.SaveDataset(ds, *outputPath); err != nil {
		log.Fatalf("Failed to save dataset: %v", err)
	}

	stats := testutils.ComputeDatasetStatistics(ds)
	groups := make([]string, 0, len(stats.GroupCounts))
	for g := range stats.GroupCounts {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	fmt.Printf("Generated synthetic dataset:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Seed: %d\n", *seed)
	fmt.Printf("- Subjects: %d\n", stats.Subjects)
	for _, g := range groups {
		fmt.Printf("- Group %s: %d\n", g, stats.GroupCounts[g])
	}
	fmt.Printf("- Positive labels: %d\n", stats.PositiveLabels)
	fmt.Printf("- Positive predictions: %d\n", stats.PositivePredictions)
}
