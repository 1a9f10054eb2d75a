package analysis

import (
	"math"

	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// OriginPolicyKind selects how the baseline is located and how the origin is detected.
type OriginPolicyKind string

const (
	// DepartureFromFirstSample uses the first smoothed sample as baseline and picks the first
	// smoothed sample departing from it by more than the baseline tolerance.
	DepartureFromFirstSample OriginPolicyKind = "departure"
	// RiseAboveMedian uses the median of the first N smoothed samples as baseline and picks the
	// raw sample right before the first one exceeding baseline + rise magnitude.
	RiseAboveMedian OriginPolicyKind = "rise"
)

// OriginPolicy is a tagged variant: only the fields belonging to Kind are read.
type OriginPolicy struct {
	Kind OriginPolicyKind

	// BaselineTolerance is used by DepartureFromFirstSample.
	BaselineTolerance float64
	// BaselinePoints and RiseMagnitude are used by RiseAboveMedian.
	BaselinePoints int
	RiseMagnitude  float64
}

// Departure returns a DepartureFromFirstSample policy.
func Departure(baselineTolerance float64) OriginPolicy {
	return OriginPolicy{
		Kind:              DepartureFromFirstSample,
		BaselineTolerance: baselineTolerance,
	}
}

// Rise returns a RiseAboveMedian policy.
func Rise(baselinePoints int, riseMagnitude float64) OriginPolicy {
	return OriginPolicy{
		Kind:           RiseAboveMedian,
		BaselinePoints: baselinePoints,
		RiseMagnitude:  riseMagnitude,
	}
}

// ValueAlignment selects whether the value axis is shifted along with the time axis.
type ValueAlignment string

const (
	// KeepRawValues plots raw values against the shifted time axis.
	KeepRawValues ValueAlignment = "raw"
	// ZeroAtOrigin subtracts the origin value from every value.
	ZeroAtOrigin ValueAlignment = "zero"
)

// Config is the immutable parameter set of one analysis run.
type Config struct {
	SmoothingWindow int
	Origin          OriginPolicy
	ValueAlignment  ValueAlignment
	// SettleStartTime is relative to the origin.
	SettleStartTime float64
	SettleTolerance float64
	PeakTolerance   float64
	// PlotRange is carried for renderers only, the analysis never reads it.
	PlotRange model.Range
}

// Validate checks every parameter and returns a KindConfiguration *Error on the first problem.
func (c Config) Validate() error {
	if c.SmoothingWindow < 1 {
		return NewError(KindConfiguration, "smoothing window must be >= 1, got %d", c.SmoothingWindow)
	}

	switch c.Origin.Kind {
	case DepartureFromFirstSample:
		if err := checkTolerance("baseline tolerance", c.Origin.BaselineTolerance); err != nil {
			return err
		}
	case RiseAboveMedian:
		if c.Origin.BaselinePoints < 1 {
			return NewError(KindConfiguration, "baseline points must be >= 1, got %d", c.Origin.BaselinePoints)
		}
		if !isFinite(c.Origin.RiseMagnitude) {
			return NewError(KindConfiguration, "rise magnitude must be finite, got %v", c.Origin.RiseMagnitude)
		}
	default:
		return NewError(KindConfiguration, "unknown origin policy %q", c.Origin.Kind)
	}

	switch c.ValueAlignment {
	case KeepRawValues, ZeroAtOrigin:
	default:
		return NewError(KindConfiguration, "unknown value alignment %q", c.ValueAlignment)
	}

	if !isFinite(c.SettleStartTime) {
		return NewError(KindConfiguration, "settle start time must be finite, got %v", c.SettleStartTime)
	}
	if err := checkTolerance("settle tolerance", c.SettleTolerance); err != nil {
		return err
	}
	if err := checkTolerance("peak tolerance", c.PeakTolerance); err != nil {
		return err
	}

	if !isFinite(c.PlotRange.Min) || !isFinite(c.PlotRange.Max) || c.PlotRange.Min > c.PlotRange.Max {
		return NewError(KindConfiguration, "plot range [%v, %v] is not a valid interval", c.PlotRange.Min, c.PlotRange.Max)
	}

	return nil
}

func checkTolerance(name string, v float64) error {
	if !isFinite(v) || v < 0 {
		return NewError(KindConfiguration, "%s must be a finite non-negative number, got %v", name, v)
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
