package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// Criteria holds the thresholds of the step response test.
type Criteria struct {
	// SettleStartTime is the aligned time from which the signal must be quiet.
	SettleStartTime float64
	// SettleTolerance is the exclusive upper bound of the settle window standard deviation.
	SettleTolerance float64
	// PeakTolerance is the minimum peak variation for the event to count as a step.
	PeakTolerance float64
}

// Criteria returns the step response thresholds of the config.
func (c Config) Criteria() Criteria {
	return Criteria{
		SettleStartTime: c.SettleStartTime,
		SettleTolerance: c.SettleTolerance,
		PeakTolerance:   c.PeakTolerance,
	}
}

// Classify tests the smoothed values, indexed by aligned time, for a step response.
//
// The excursion is measured against the first sample at or after t=0, not against the
// baseline: a slow drift through the origin registers no excursion. The statistics are
// filled in whenever there is data for them, whatever the verdict.
func Classify(alignedTimes, smoothed []float64, criteria Criteria) (model.Classification, error) {
	if len(alignedTimes) != len(smoothed) {
		return model.Classification{}, NewError(KindMalformedInput, "aligned time axis has %d points, smoothed values have %d", len(alignedTimes), len(smoothed))
	}

	postOrigin := make([]float64, 0, len(smoothed))
	settle := make([]float64, 0, len(smoothed))
	for i, t := range alignedTimes {
		if t < 0 {
			continue
		}
		postOrigin = append(postOrigin, smoothed[i])
		if t >= criteria.SettleStartTime {
			settle = append(settle, smoothed[i])
		}
	}

	res := model.Classification{
		PostOriginSamples: len(postOrigin),
		SettleSamples:     len(settle),
	}
	if len(postOrigin) == 0 {
		res.Reason = model.ReasonNoPostOriginData

		return res, nil
	}

	initial := postOrigin[0]
	res.PeakVariation = math.Max(
		math.Abs(floats.Max(postOrigin)-initial),
		math.Abs(floats.Min(postOrigin)-initial),
	)
	if len(settle) >= 2 {
		_, res.SettleStd = stat.MeanStdDev(settle, nil)
	}

	switch {
	case res.PeakVariation < criteria.PeakTolerance:
		res.Reason = model.ReasonNoSignificantExcursion
	case len(settle) < 2:
		// a sample standard deviation needs two points
		res.Reason = model.ReasonInsufficientSettleData
	case res.SettleStd < criteria.SettleTolerance:
		res.IsStepResponse = true
		res.Reason = model.ReasonSettled
	default:
		res.Reason = model.ReasonDidNotSettle
	}

	return res, nil
}
