package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

type analyzer struct {
	logger logrus.FieldLogger
	hooks  []model.AnalysisOption
	parent *model.StageInfo
}

// Analyze runs smooth, baseline, origin, align and classify on samples, in that order.
//
// The config is validated before anything else. A fatal condition returns a nil result and an
// *Error; soft conditions return a complete result whose classification says why the verdict is
// negative.
func Analyze(samples []model.Sample, cfg Config, opts ...Option) (*model.Result, error) {
	anz := &analyzer{
		logger: logrus.StandardLogger(),
		parent: &model.StageInfo{Name: model.StartStage, Samples: len(samples)},
	}
	for _, opt := range opts {
		opt(anz)
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	err = validateSamples(samples)
	if err != nil {
		return nil, err
	}

	for _, hook := range anz.hooks {
		err := hook.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply analysis option")
		}
	}

	res := &model.Result{}

	err = anz.stage(model.SmoothStage, len(samples), func() error {
		var err error
		res.Smoothed, err = Smooth(model.Values(samples), cfg.SmoothingWindow)

		return err
	})
	if err != nil {
		return nil, err
	}

	var baseline float64
	err = anz.stage(model.BaselineStage, len(samples), func() error {
		var err error
		baseline, err = Baseline(res.Smoothed, cfg.Origin)

		return err
	})
	if err != nil {
		return nil, err
	}

	err = anz.stage(model.OriginStage, len(samples), func() error {
		var err error
		res.Origin, err = DetectOrigin(samples, res.Smoothed, baseline, cfg.Origin)

		return err
	})
	if err != nil {
		return nil, err
	}
	res.Warnings = anz.reportOrigin(res.Origin, cfg.Origin)

	err = anz.stage(model.AlignStage, len(samples), func() error {
		var err error
		res.Aligned, err = Align(samples, res.Origin, cfg.ValueAlignment)

		return err
	})
	if err != nil {
		return nil, err
	}

	err = anz.stage(model.ClassifyStage, len(samples), func() error {
		var err error
		res.Classification, err = Classify(model.Times(res.Aligned), res.Smoothed, cfg.Criteria())

		return err
	})
	if err != nil {
		return nil, err
	}

	anz.logger.WithFields(logrus.Fields{
		"step_response":  res.Classification.IsStepResponse,
		"reason":         res.Classification.Reason,
		"peak_variation": res.Classification.PeakVariation,
		"settle_std":     res.Classification.SettleStd,
	}).Debug("classification done")

	for _, hook := range anz.hooks {
		err := hook.Finish()
		if err != nil {
			return nil, errors.Wrap(err, "unable to finish analysis option")
		}
	}

	return res, nil
}

func (a *analyzer) stage(name string, samples int, stageFn func() error) error {
	info := &model.StageInfo{Name: name, Samples: samples}
	for _, hook := range a.hooks {
		err := hook.PrepareStage(a.parent, info)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare stage %s", name)
		}
	}

	start := time.Now()
	err := stageFn()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, hook := range a.hooks {
		err := hook.OnStageOutput(a.parent, info, elapsed)
		if err != nil {
			return errors.Wrapf(err, "unable to run stage output hook for %s", name)
		}
	}
	a.parent = info

	return nil
}

func (a *analyzer) reportOrigin(origin model.Origin, policy OriginPolicy) []string {
	fields := logrus.Fields{
		"policy":   policy.Kind,
		"baseline": origin.Baseline,
		"index":    origin.Index,
		"time":     origin.Time,
	}
	if origin.Detected {
		a.logger.WithFields(fields).Info("origin determined")

		return nil
	}

	if policy.Kind == RiseAboveMedian {
		msg := fmt.Sprintf("no value rises above threshold %.4f, using first sample as origin", origin.Baseline+policy.RiseMagnitude)
		a.logger.WithFields(fields).Warn(msg)

		return []string{msg}
	}

	a.logger.WithFields(fields).Info("no departure from baseline, using first sample as origin")

	return nil
}

func validateSamples(samples []model.Sample) error {
	if len(samples) == 0 {
		return NewError(KindMalformedInput, "sample sequence is empty")
	}

	for i, s := range samples {
		if math.IsNaN(s.Time) || math.IsInf(s.Time, 0) {
			return NewError(KindMalformedInput, "time at index %d is not a finite number", i)
		}
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return NewError(KindMalformedInput, "value at index %d is not a finite number", i)
		}
		if i > 0 && s.Time < samples[i-1].Time {
			return NewError(KindMalformedInput, "time decreases at index %d (%v after %v)", i, s.Time, samples[i-1].Time)
		}
	}

	return nil
}
