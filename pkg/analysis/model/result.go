package model

// Reason names the outcome of the step response classification.
type Reason string

const (
	// ReasonSettled means the signal moved enough and then stayed quiet.
	ReasonSettled Reason = "Settled"
	// ReasonNoPostOriginData means no sample has an aligned time >= 0.
	ReasonNoPostOriginData Reason = "NoPostOriginData"
	// ReasonNoSignificantExcursion means the peak variation stayed under the peak tolerance.
	ReasonNoSignificantExcursion Reason = "NoSignificantExcursion"
	// ReasonInsufficientSettleData means the settle window holds fewer than two samples.
	ReasonInsufficientSettleData Reason = "InsufficientSettleData"
	// ReasonDidNotSettle means the settle window standard deviation reached the settle tolerance.
	ReasonDidNotSettle Reason = "DidNotSettle"
)

// Origin is the sample chosen as t=0.
type Origin struct {
	// Index into the input sequence, always valid.
	Index int `yaml:"index"`
	// Time of the input sample at Index, before alignment.
	Time float64 `yaml:"time"`
	// Value is the raw value at Index.
	Value float64 `yaml:"value"`
	// Baseline is the resting value the detector compared against.
	Baseline float64 `yaml:"baseline"`
	// Detected is false when the detector fell back to the first sample.
	Detected bool `yaml:"detected"`
}

// Classification is the step response verdict with the statistics behind it.
type Classification struct {
	IsStepResponse    bool    `yaml:"is_step_response"`
	Reason            Reason  `yaml:"reason"`
	PeakVariation     float64 `yaml:"peak_variation"`
	// SettleStd is only computed when SettleSamples is at least 2, it is 0 otherwise.
	SettleStd         float64 `yaml:"settle_std"`
	PostOriginSamples int     `yaml:"post_origin_samples"`
	SettleSamples     int     `yaml:"settle_samples"`
}

// Result is produced once per analysis run and never mutated afterwards.
type Result struct {
	Origin         Origin         `yaml:"origin"`
	Smoothed       []float64      `yaml:"-"`
	Aligned        []Sample       `yaml:"-"`
	Classification Classification `yaml:"classification"`
	Warnings       []string       `yaml:"warnings,omitempty"`
}
