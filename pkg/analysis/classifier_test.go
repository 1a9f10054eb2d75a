package analysis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stepresponse/pkg/analysis"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	criteria := analysis.Criteria{SettleStartTime: 2, SettleTolerance: 0.05, PeakTolerance: 0.3}

	tcs := map[string]struct {
		times    []float64
		smoothed []float64
		criteria analysis.Criteria
		expected model.Classification
	}{
		"settled step": {
			times:    []float64{-1, 0, 1, 2, 3, 4},
			smoothed: []float64{0, 0, 1, 1, 1, 1},
			criteria: criteria,
			expected: model.Classification{
				IsStepResponse:    true,
				Reason:            model.ReasonSettled,
				PeakVariation:     1,
				SettleStd:         0,
				PostOriginSamples: 5,
				SettleSamples:     3,
			},
		},
		"no post origin data": {
			times:    []float64{-2, -1},
			smoothed: []float64{0, 1},
			criteria: criteria,
			expected: model.Classification{Reason: model.ReasonNoPostOriginData},
		},
		"excursion measured from the first post origin sample": {
			times:    []float64{-1, 0, 1, 2, 3},
			smoothed: []float64{0, 1, 1, 1, 1},
			criteria: criteria,
			expected: model.Classification{
				Reason:            model.ReasonNoSignificantExcursion,
				PostOriginSamples: 4,
				SettleSamples:     2,
			},
		},
		"downward excursion": {
			times:    []float64{0, 1, 2, 3},
			smoothed: []float64{1, 0, 0, 0},
			criteria: criteria,
			expected: model.Classification{
				IsStepResponse:    true,
				Reason:            model.ReasonSettled,
				PeakVariation:     1,
				PostOriginSamples: 4,
				SettleSamples:     2,
			},
		},
		"peak equal to tolerance is an excursion": {
			times:    []float64{0, 1, 2, 3},
			smoothed: []float64{0, 0.5, 0.5, 0.5},
			criteria: analysis.Criteria{SettleStartTime: 2, SettleTolerance: 0.05, PeakTolerance: 0.5},
			expected: model.Classification{
				IsStepResponse:    true,
				Reason:            model.ReasonSettled,
				PeakVariation:     0.5,
				PostOriginSamples: 4,
				SettleSamples:     2,
			},
		},
		"one sample in the settle window": {
			times:    []float64{0, 1, 2},
			smoothed: []float64{0, 1, 1},
			criteria: criteria,
			expected: model.Classification{
				Reason:            model.ReasonInsufficientSettleData,
				PeakVariation:     1,
				PostOriginSamples: 3,
				SettleSamples:     1,
			},
		},
		"empty settle window": {
			times:    []float64{0, 1},
			smoothed: []float64{0, 1},
			criteria: criteria,
			expected: model.Classification{
				Reason:            model.ReasonInsufficientSettleData,
				PeakVariation:     1,
				PostOriginSamples: 2,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := analysis.Classify(tc.times, tc.smoothed, tc.criteria)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClassifyDidNotSettle(t *testing.T) {
	t.Parallel()

	got, err := analysis.Classify(
		[]float64{0, 1, 2, 3, 4, 5},
		[]float64{0, 1, 0, 1, 0, 1},
		analysis.Criteria{SettleStartTime: 2, SettleTolerance: 0.05, PeakTolerance: 0.3},
	)
	require.NoError(t, err)
	assert.False(t, got.IsStepResponse)
	assert.Equal(t, model.ReasonDidNotSettle, got.Reason)
	assert.InDelta(t, 1.0, got.PeakVariation, 1e-12)
	// sample standard deviation of 0, 1, 0, 1
	assert.InDelta(t, math.Sqrt(1.0/3.0), got.SettleStd, 1e-12)
	assert.Equal(t, 4, got.SettleSamples)
}

func TestClassifyStatisticsFilledOnNegativeVerdict(t *testing.T) {
	t.Parallel()

	got, err := analysis.Classify(
		[]float64{0, 1, 2, 3},
		[]float64{1, 1.1, 1.05, 1.15},
		analysis.Criteria{SettleStartTime: 2, SettleTolerance: 0.05, PeakTolerance: 0.3},
	)
	require.NoError(t, err)
	assert.Equal(t, model.ReasonNoSignificantExcursion, got.Reason)
	assert.InDelta(t, 0.15, got.PeakVariation, 1e-9)
	assert.InDelta(t, math.Sqrt(0.005), got.SettleStd, 1e-9)
}

func TestClassifyLengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := analysis.Classify([]float64{0, 1}, []float64{0}, analysis.Criteria{})
	require.Error(t, err)
	assert.Equal(t, analysis.KindMalformedInput, analysis.KindOf(err))
}
