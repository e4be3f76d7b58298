package domain

// Partition holds the indices of the subjects belonging to one group.
type Partition[G comparable] struct {
	Group   G
	Indices []int
}

// PartitionByGroup splits subject indices by group value in a single pass.
// Partitions are ordered by first appearance; empty groups never appear.
func PartitionByGroup[G comparable](groups []G) []Partition[G] {
	pos := make(map[G]int)
	var parts []Partition[G]
	for i, g := range groups {
		p, ok := pos[g]
		if !ok {
			p = len(parts)
			pos[g] = p
			parts = append(parts, Partition[G]{Group: g})
		}
		parts[p].Indices = append(parts[p].Indices, i)
	}
	return parts
}

// GroupStats pairs a group with its confusion counts.
type GroupStats[G comparable] struct {
	Group  G
	Counts ConfusionCounts
}

// Tally reduces each partition to its confusion counts. Inputs must already
// have passed ValidateInputs.
func Tally[G comparable](predictions, labels []int, parts []Partition[G]) []GroupStats[G] {
	stats := make([]GroupStats[G], len(parts))
	for i, p := range parts {
		c := ConfusionCounts{Members: len(p.Indices)}
		for _, idx := range p.Indices {
			switch {
			case predictions[idx] == 1 && labels[idx] == 1:
				c.TruePositives++
			case predictions[idx] == 1:
				c.FalsePositives++
			case labels[idx] == 1:
				c.FalseNegatives++
			default:
				c.TrueNegatives++
			}
		}
		stats[i] = GroupStats[G]{Group: p.Group, Counts: c}
	}
	return stats
}

// PositivePredictionRates computes mean(prediction) for every group.
func PositivePredictionRates[G comparable](stats []GroupStats[G]) MetricResult[G] {
	return reduce(MetricStatisticalParity, stats, func(c ConfusionCounts) float64 {
		return float64(c.PredictedPositives()) / float64(c.Members)
	})
}

// TruePositiveRates computes TP / (TP + FN) for every group. A group without
// actual-positive members gets a rate of 0.0 and is returned in degenerate.
func TruePositiveRates[G comparable](stats []GroupStats[G]) (result MetricResult[G], degenerate []G) {
	for _, s := range stats {
		if s.Counts.ActualPositives() == 0 {
			degenerate = append(degenerate, s.Group)
		}
	}
	result = reduce(MetricEqualOpportunity, stats, func(c ConfusionCounts) float64 {
		if c.ActualPositives() == 0 {
			return 0.0
		}
		return float64(c.TruePositives) / float64(c.ActualPositives())
	})
	return result, degenerate
}

func reduce[G comparable](metric MetricName, stats []GroupStats[G], rate func(ConfusionCounts) float64) MetricResult[G] {
	rates := make([]GroupRate[G], len(stats))
	for i, s := range stats {
		rates[i] = GroupRate[G]{Group: s.Group, Rate: rate(s.Counts), Counts: s.Counts}
	}
	return MetricResult[G]{Metric: metric, Rates: rates}
}
