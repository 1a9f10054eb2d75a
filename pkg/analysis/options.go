package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// Option configures a single Analyze call.
type Option func(a *analyzer)

// WithLogger sets the logger used to report the origin and the verdict.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithHooks registers hooks observing the stages of the run.
func WithHooks(hooks ...model.AnalysisOption) Option {
	return func(a *analyzer) {
		a.hooks = append(a.hooks, hooks...)
	}
}
