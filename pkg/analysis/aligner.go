package analysis

import (
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// Align shifts the time axis so origin.Time becomes zero. With ZeroAtOrigin the value axis is
// shifted by origin.Value as well, otherwise the raw values are kept.
func Align(samples []model.Sample, origin model.Origin, alignment ValueAlignment) ([]model.Sample, error) {
	var valueShift float64

	switch alignment {
	case KeepRawValues:
	case ZeroAtOrigin:
		valueShift = origin.Value
	default:
		return nil, NewError(KindConfiguration, "unknown value alignment %q", alignment)
	}

	res := make([]model.Sample, len(samples))
	for i, s := range samples {
		res[i] = model.Sample{
			Time:  s.Time - origin.Time,
			Value: s.Value - valueShift,
		}
	}

	return res, nil
}
