package domain

// Disparity reduces a MetricResult to max(rate) - min(rate). A result with
// fewer than two groups has no comparison to make and yields 0.0.
// The result does not depend on group order or group names.
func Disparity[G comparable](result MetricResult[G]) float64 {
	if len(result.Rates) < 2 {
		return 0.0
	}
	lo, hi := result.Rates[0].Rate, result.Rates[0].Rate
	for _, r := range result.Rates[1:] {
		lo = min(lo, r.Rate)
		hi = max(hi, r.Rate)
	}
	return hi - lo
}

// Judge builds the verdict for one metric: it passes when its disparity is
// strictly below tolerance.
func Judge[G comparable](result MetricResult[G], tolerance float64) MetricReport[G] {
	d := Disparity(result)
	return MetricReport[G]{
		Metric:    result.Metric,
		Rates:     result.Rates,
		Disparity: d,
		Passed:    d < tolerance,
	}
}
