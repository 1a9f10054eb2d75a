package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stepresponse/pkg/analysis"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]

		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.applyEnv(lookupFrom(map[string]string{
		"STEPRESPONSE_TIME_COL":           "t",
		"STEPRESPONSE_VALUE_COL":          " v ",
		"STEPRESPONSE_SKIP_ROWS":          "0, 3",
		"STEPRESPONSE_DELIMITER":          ";",
		"STEPRESPONSE_SMOOTHING_WINDOW":   "9",
		"STEPRESPONSE_ORIGIN_POLICY":      "rise",
		"STEPRESPONSE_BASELINE_TOLERANCE": "0.5",
		"STEPRESPONSE_BASELINE_POINTS":    "10",
		"STEPRESPONSE_RISE_MAGNITUDE":     "0.25",
		"STEPRESPONSE_VALUE_ALIGNMENT":    "zero",
		"STEPRESPONSE_SETTLE_TIME":        "1.5",
		"STEPRESPONSE_SETTLE_TOLERANCE":   "0.01",
		"STEPRESPONSE_PEAK_TOLERANCE":     "2",
		"STEPRESPONSE_PLOT_RANGE_MIN":     "-1",
		"STEPRESPONSE_PLOT_RANGE_MAX":     "4",
		"STEPRESPONSE_PLOT_WIDTH":         "800",
		"STEPRESPONSE_PLOT_HEIGHT":        "",
		"STEPRESPONSE_PLOT_FORMAT":        "svg",
		"UNRELATED":                       "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, DataConfig{TimeColumn: "t", ValueColumn: "v", SkipRows: []int{0, 3}, Delimiter: ";"}, cfg.Data)
	assert.Equal(t, AnalysisConfig{
		SmoothingWindow: 9,
		Origin: OriginConfig{
			Policy:            "rise",
			BaselineTolerance: 0.5,
			BaselinePoints:    10,
			RiseMagnitude:     0.25,
		},
		ValueAlignment:  "zero",
		SettleStartTime: 1.5,
		SettleTolerance: 0.01,
		PeakTolerance:   2,
	}, cfg.Analysis)
	// an empty variable keeps the current value
	assert.Equal(t, PlotConfig{RangeMin: -1, RangeMax: 4, Width: 800, Height: 500, Format: "svg"}, cfg.Plot)
}

func TestApplyEnvErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]map[string]string{
		"int":   {"STEPRESPONSE_SMOOTHING_WINDOW": "five"},
		"float": {"STEPRESPONSE_SETTLE_TOLERANCE": "0,05"},
		"ints":  {"STEPRESPONSE_SKIP_ROWS": "1;2"},
	}

	for name, env := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			err := cfg.applyEnv(lookupFrom(env))
			require.Error(t, err)
			assert.Equal(t, analysis.KindConfiguration, analysis.KindOf(err))
		})
	}
}

func TestApplyEnvStopsAtFirstError(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.applyEnv(lookupFrom(map[string]string{
		"STEPRESPONSE_SMOOTHING_WINDOW": "x",
		"STEPRESPONSE_PLOT_WIDTH":       "10",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMOOTHING_WINDOW")
	assert.Equal(t, 1000, cfg.Plot.Width)
}
