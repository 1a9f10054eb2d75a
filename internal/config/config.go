// Package config loads the analysis settings from a YAML file and the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-stepresponse/internal/loader"
	"github.com/askiada/go-stepresponse/pkg/analysis"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STEPRESPONSE_"

// Config is the full settings of the command line tool.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Plot     PlotConfig     `yaml:"plot"`
}

// DataConfig describes the CSV layout.
type DataConfig struct {
	TimeColumn  string `yaml:"time_col"`
	ValueColumn string `yaml:"value_col"`
	SkipRows    []int  `yaml:"skip_rows"`
	Delimiter   string `yaml:"delimiter"`
}

// AnalysisConfig holds the analysis parameters.
type AnalysisConfig struct {
	SmoothingWindow int          `yaml:"smoothing_window"`
	Origin          OriginConfig `yaml:"origin"`
	ValueAlignment  string       `yaml:"value_alignment"`
	SettleStartTime float64      `yaml:"settle_time"`
	SettleTolerance float64      `yaml:"settle_tolerance"`
	PeakTolerance   float64      `yaml:"peak_tolerance"`
}

// OriginConfig selects the origin policy. Only the fields of the selected policy are used.
type OriginConfig struct {
	Policy            string  `yaml:"policy"`
	BaselineTolerance float64 `yaml:"baseline_tolerance"`
	BaselinePoints    int     `yaml:"baseline_points"`
	RiseMagnitude     float64 `yaml:"rise_magnitude"`
}

// PlotConfig describes the rendered chart.
type PlotConfig struct {
	RangeMin float64 `yaml:"range_min"`
	RangeMax float64 `yaml:"range_max"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Format   string  `yaml:"format"`
}

// chartFormats are the image formats accepted for the rendered chart.
var chartFormats = map[string]bool{"png": true, "svg": true, "pdf": true}

// Default returns the settings used when nothing else is given.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			TimeColumn:  "Date/Time",
			ValueColumn: "No.2",
			SkipRows:    []int{1, 2},
			Delimiter:   ",",
		},
		Analysis: AnalysisConfig{
			SmoothingWindow: 5,
			Origin: OriginConfig{
				Policy:            string(analysis.DepartureFromFirstSample),
				BaselineTolerance: 0.02,
				BaselinePoints:    20,
				RiseMagnitude:     0.5,
			},
			ValueAlignment:  string(analysis.KeepRawValues),
			SettleStartTime: 2.0,
			SettleTolerance: 0.05,
			PeakTolerance:   0.3,
		},
		Plot: PlotConfig{
			RangeMin: 0,
			RangeMax: 5,
			Width:    1000,
			Height:   500,
			Format:   "png",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	return c, nil
}

// Marshal renders the settings as YAML.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}

	return out, nil
}

// LoadEnvFile loads variables from a .env file into the process environment without
// overriding variables already set. A missing file is not an error unless required.
func LoadEnvFile(path string, required bool) error {
	err := godotenv.Load(path)
	if err != nil && (required || !errors.Is(err, os.ErrNotExist)) {
		return errors.Wrapf(err, "load env file %s", path)
	}

	return nil
}

// ApplyEnv overrides settings with the STEPRESPONSE_* variables of the process environment.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.stringVar("TIME_COL", &c.Data.TimeColumn)
	env.stringVar("VALUE_COL", &c.Data.ValueColumn)
	env.intsVar("SKIP_ROWS", &c.Data.SkipRows)
	env.stringVar("DELIMITER", &c.Data.Delimiter)

	env.intVar("SMOOTHING_WINDOW", &c.Analysis.SmoothingWindow)
	env.stringVar("ORIGIN_POLICY", &c.Analysis.Origin.Policy)
	env.floatVar("BASELINE_TOLERANCE", &c.Analysis.Origin.BaselineTolerance)
	env.intVar("BASELINE_POINTS", &c.Analysis.Origin.BaselinePoints)
	env.floatVar("RISE_MAGNITUDE", &c.Analysis.Origin.RiseMagnitude)
	env.stringVar("VALUE_ALIGNMENT", &c.Analysis.ValueAlignment)
	env.floatVar("SETTLE_TIME", &c.Analysis.SettleStartTime)
	env.floatVar("SETTLE_TOLERANCE", &c.Analysis.SettleTolerance)
	env.floatVar("PEAK_TOLERANCE", &c.Analysis.PeakTolerance)

	env.floatVar("PLOT_RANGE_MIN", &c.Plot.RangeMin)
	env.floatVar("PLOT_RANGE_MAX", &c.Plot.RangeMax)
	env.intVar("PLOT_WIDTH", &c.Plot.Width)
	env.intVar("PLOT_HEIGHT", &c.Plot.Height)
	env.stringVar("PLOT_FORMAT", &c.Plot.Format)

	return env.err
}

// AnalysisConfig converts the settings to a validated analysis config.
func (c *Config) AnalysisConfig() (analysis.Config, error) {
	policy := analysis.OriginPolicy{Kind: analysis.OriginPolicyKind(c.Analysis.Origin.Policy)}
	switch policy.Kind {
	case analysis.DepartureFromFirstSample:
		policy = analysis.Departure(c.Analysis.Origin.BaselineTolerance)
	case analysis.RiseAboveMedian:
		policy = analysis.Rise(c.Analysis.Origin.BaselinePoints, c.Analysis.Origin.RiseMagnitude)
	}

	cfg := analysis.Config{
		SmoothingWindow: c.Analysis.SmoothingWindow,
		Origin:          policy,
		ValueAlignment:  analysis.ValueAlignment(c.Analysis.ValueAlignment),
		SettleStartTime: c.Analysis.SettleStartTime,
		SettleTolerance: c.Analysis.SettleTolerance,
		PeakTolerance:   c.Analysis.PeakTolerance,
		PlotRange: model.Range{
			Min: c.Plot.RangeMin,
			Max: c.Plot.RangeMax,
		},
	}

	err := cfg.Validate()
	if err != nil {
		return analysis.Config{}, err
	}

	return cfg, nil
}

// ChartFormat returns the lower cased image format of the charts.
func (c *Config) ChartFormat() (string, error) {
	format := strings.ToLower(c.Plot.Format)
	if !chartFormats[format] {
		return "", analysis.NewError(analysis.KindConfiguration, "unknown chart format %q", c.Plot.Format)
	}

	return format, nil
}

// LoaderOptions converts the data settings to loader options.
func (c *Config) LoaderOptions() (loader.Options, error) {
	opts := loader.Options{
		TimeColumn:  c.Data.TimeColumn,
		ValueColumn: c.Data.ValueColumn,
		SkipRows:    c.Data.SkipRows,
	}

	delim := []rune(c.Data.Delimiter)
	switch {
	case len(delim) == 0:
	case len(delim) == 1 && delim[0] != '"' && delim[0] != '\r' && delim[0] != '\n':
		opts.Comma = delim[0]
	case c.Data.Delimiter == `\t`:
		opts.Comma = '\t'
	default:
		return loader.Options{}, analysis.NewError(analysis.KindConfiguration, "invalid delimiter %q", c.Data.Delimiter)
	}

	if opts.TimeColumn == "" || opts.ValueColumn == "" {
		return loader.Options{}, analysis.NewError(analysis.KindConfiguration, "time and value columns must be set")
	}

	return opts, nil
}

// envReader records the first parse failure and ignores later variables.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	value, ok := e.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}

	return strings.TrimSpace(value), true
}

func (e *envReader) fail(key, value string, err error) {
	e.err = analysis.NewError(analysis.KindConfiguration, "%s%s=%q: %v", EnvPrefix, key, value, err)
}

func (e *envReader) stringVar(key string, dst *string) {
	if value, ok := e.get(key); ok {
		*dst = value
	}
}

func (e *envReader) intVar(key string, dst *int) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, value, err)

		return
	}
	*dst = parsed
}

func (e *envReader) floatVar(key string, dst *float64) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		e.fail(key, value, err)

		return
	}
	*dst = parsed
}

// intsVar parses a comma separated list, such as "1, 2".
func (e *envReader) intsVar(key string, dst *[]int) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parts := strings.Split(value, ",")
	parsed := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			e.fail(key, value, err)

			return
		}
		parsed = append(parsed, n)
	}
	*dst = parsed
}
