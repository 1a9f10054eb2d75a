package analysis

import (
	"math"

	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// DetectOrigin picks the sample used as t=0.
//
// With DepartureFromFirstSample the smoothed sequence is scanned from index 1 for the first
// point further than the baseline tolerance from baseline. With RiseAboveMedian the raw values
// are scanned for the first one above baseline + rise magnitude and the origin is the sample
// right before it. When nothing qualifies the origin falls back to index 0 and Detected is false.
func DetectOrigin(samples []model.Sample, smoothed []float64, baseline float64, policy OriginPolicy) (model.Origin, error) {
	if len(samples) == 0 {
		return model.Origin{}, NewError(KindInsufficientData, "cannot detect an origin on an empty sequence")
	}
	if len(smoothed) != len(samples) {
		return model.Origin{}, NewError(KindMalformedInput, "smoothed sequence has %d points, expected %d", len(smoothed), len(samples))
	}

	idx, detected := 0, false

	switch policy.Kind {
	case DepartureFromFirstSample:
		for i := 1; i < len(smoothed); i++ {
			if math.Abs(smoothed[i]-baseline) > policy.BaselineTolerance {
				idx, detected = i, true

				break
			}
		}
	case RiseAboveMedian:
		threshold := baseline + policy.RiseMagnitude
		for i, s := range samples {
			if s.Value > threshold {
				idx, detected = max(0, i-1), true

				break
			}
		}
	default:
		return model.Origin{}, NewError(KindConfiguration, "unknown origin policy %q", policy.Kind)
	}

	return model.Origin{
		Index:    idx,
		Time:     samples[idx].Time,
		Value:    samples[idx].Value,
		Baseline: baseline,
		Detected: detected,
	}, nil
}
