package analysis

import (
	"sort"
)

// Baseline locates the resting value of smoothed according to policy.
func Baseline(smoothed []float64, policy OriginPolicy) (float64, error) {
	if len(smoothed) == 0 {
		return 0, NewError(KindInsufficientData, "cannot locate a baseline on an empty sequence")
	}

	switch policy.Kind {
	case DepartureFromFirstSample:
		return smoothed[0], nil
	case RiseAboveMedian:
		if policy.BaselinePoints < 1 {
			return 0, NewError(KindConfiguration, "baseline points must be >= 1, got %d", policy.BaselinePoints)
		}

		return median(smoothed[:min(policy.BaselinePoints, len(smoothed))]), nil
	default:
		return 0, NewError(KindConfiguration, "unknown origin policy %q", policy.Kind)
	}
}

// median averages the two middle values when the count is even.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}
