package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/askiada/go-stepresponse/internal/batch"
	"github.com/askiada/go-stepresponse/internal/config"
	"github.com/askiada/go-stepresponse/internal/loader"
	"github.com/askiada/go-stepresponse/internal/report"
	"github.com/askiada/go-stepresponse/pkg/analysis"
	"github.com/askiada/go-stepresponse/pkg/analysis/drawer"
	"github.com/askiada/go-stepresponse/pkg/analysis/measure"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
	"github.com/askiada/go-stepresponse/pkg/chart"
)

var errFilesFailed = errors.New("some files could not be analysed")

type analyzeOptions struct {
	configFile  string
	envFile     string
	outDir      string
	format      string
	stageGraph  string
	noPlot      bool
	failFast    bool
	concurrency int

	// overrides, applied only when the flag is set
	timeCol           string
	valueCol          string
	skipRows          []int
	smoothingWindow   int
	policy            string
	baselineTolerance float64
	baselinePoints    int
	riseMagnitude     float64
	valueAlignment    string
	settleTime        float64
	settleTolerance   float64
	peakTolerance     float64
	plotMin           float64
	plotMax           float64
	plotFormat        string
}

// fileJob pairs an input file with the chart it renders to.
type fileJob struct {
	file  string
	chart string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:     "analyze [flags] FILE...",
		Aliases: []string{"a"},
		Short:   "Analyses CSV recordings and reports whether each one is a step response",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.settings(cmd.Flags())
			if err != nil {
				return err
			}

			return runAnalyze(cmd.Context(), opts, cfg, args, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "file with STEPRESPONSE_* variables")
	flags.StringVarP(&opts.outDir, "out-dir", "o", "save", "directory receiving the charts")
	flags.StringVarP(&opts.format, "format", "f", string(report.FormatText), "report format (text, yaml)")
	flags.StringVar(&opts.stageGraph, "stage-graph", "", "write a DOT graph of the analysis stages with their durations")
	flags.BoolVar(&opts.noPlot, "no-plot", false, "do not render charts")
	flags.BoolVar(&opts.failFast, "fail-fast", false, "stop at the first file that cannot be analysed")
	flags.IntVarP(&opts.concurrency, "concurrency", "j", 4, "number of files analysed at the same time")

	flags.StringVar(&opts.timeCol, "time-col", "", "name of the time column")
	flags.StringVar(&opts.valueCol, "value-col", "", "name of the voltage column")
	flags.IntSliceVar(&opts.skipRows, "skip-rows", nil, "0-based lines skipped before the header")
	flags.IntVarP(&opts.smoothingWindow, "smoothing-window", "w", 0, "moving average window")
	flags.StringVar(&opts.policy, "policy", "", "origin policy (departure, rise)")
	flags.Float64Var(&opts.baselineTolerance, "baseline-tolerance", 0, "departure threshold from the baseline [V]")
	flags.IntVar(&opts.baselinePoints, "baseline-points", 0, "number of leading points used for the median baseline")
	flags.Float64Var(&opts.riseMagnitude, "rise-magnitude", 0, "rise above the median baseline marking the event [V]")
	flags.StringVar(&opts.valueAlignment, "value-alignment", "", "value axis alignment (raw, zero)")
	flags.Float64Var(&opts.settleTime, "settle-time", 0, "time after the origin from which the signal must be steady [s]")
	flags.Float64Var(&opts.settleTolerance, "settle-tolerance", 0, "maximum standard deviation of a steady signal [V]")
	flags.Float64Var(&opts.peakTolerance, "peak-tolerance", 0, "minimum excursion of a step [V]")
	flags.Float64Var(&opts.plotMin, "plot-min", 0, "start of the plotted time window [s]")
	flags.Float64Var(&opts.plotMax, "plot-max", 0, "end of the plotted time window [s]")
	flags.StringVar(&opts.plotFormat, "plot-format", "", "chart image format (png, svg, pdf)")

	return cmd
}

// settings merges defaults, the config file, the environment and the flags, in that order.
func (o *analyzeOptions) settings(flags *pflag.FlagSet) (*config.Config, error) {
	err := config.LoadEnvFile(o.envFile, flags.Changed("env-file"))
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	if o.configFile != "" {
		cfg, err = config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
	}

	err = cfg.ApplyEnv()
	if err != nil {
		return nil, err
	}

	overrides := map[string]func(){
		"time-col":           func() { cfg.Data.TimeColumn = o.timeCol },
		"value-col":          func() { cfg.Data.ValueColumn = o.valueCol },
		"skip-rows":          func() { cfg.Data.SkipRows = o.skipRows },
		"smoothing-window":   func() { cfg.Analysis.SmoothingWindow = o.smoothingWindow },
		"policy":             func() { cfg.Analysis.Origin.Policy = o.policy },
		"baseline-tolerance": func() { cfg.Analysis.Origin.BaselineTolerance = o.baselineTolerance },
		"baseline-points":    func() { cfg.Analysis.Origin.BaselinePoints = o.baselinePoints },
		"rise-magnitude":     func() { cfg.Analysis.Origin.RiseMagnitude = o.riseMagnitude },
		"value-alignment":    func() { cfg.Analysis.ValueAlignment = o.valueAlignment },
		"settle-time":        func() { cfg.Analysis.SettleStartTime = o.settleTime },
		"settle-tolerance":   func() { cfg.Analysis.SettleTolerance = o.settleTolerance },
		"peak-tolerance":     func() { cfg.Analysis.PeakTolerance = o.peakTolerance },
		"plot-min":           func() { cfg.Plot.RangeMin = o.plotMin },
		"plot-max":           func() { cfg.Plot.RangeMax = o.plotMax },
		"plot-format":        func() { cfg.Plot.Format = o.plotFormat },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	return cfg, nil
}

func runAnalyze(ctx context.Context, opts *analyzeOptions, cfg *config.Config, files []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	acfg, err := cfg.AnalysisConfig()
	if err != nil {
		return err
	}
	lopts, err := cfg.LoaderOptions()
	if err != nil {
		return err
	}
	chartFormat, err := cfg.ChartFormat()
	if err != nil {
		return err
	}
	format := report.Format(opts.format)
	if format != report.FormatText && format != report.FormatYAML {
		return errors.Errorf("unknown report format %q", opts.format)
	}

	runID := uuid.NewString()
	msr := measure.NewDefaultMeasure()
	var dwr *drawer.DOTDrawer
	if opts.stageGraph != "" {
		dwr = drawer.NewDOTDrawer(opts.stageGraph)
	}

	analyseFile := func(_ context.Context, job fileJob) (report.Record, error) {
		logger := logrus.WithFields(logrus.Fields{"run_id": runID, "file": job.file})

		rec, err := analyseOne(job, lopts, acfg, opts, cfg, logger, runID, msr, dwr)
		if err != nil {
			if opts.failFast {
				return report.Record{}, errors.Wrapf(err, "file %s", job.file)
			}
			logger.WithError(err).Error("analysis failed")

			return report.FromError(runID, job.file, err), nil
		}

		return rec, nil
	}

	charts := chartFiles(files, opts.outDir, chartFormat)
	jobs := make([]fileJob, len(files))
	for i, file := range files {
		jobs[i] = fileJob{file: file, chart: charts[i]}
	}

	records, err := batch.Map(ctx, jobs, opts.concurrency, analyseFile)
	if err != nil {
		return err
	}

	if dwr != nil {
		err = dwr.AddMeasure(msr)
		if err != nil {
			return errors.Wrap(err, "unable to add measure to stage graph")
		}
		err = dwr.Draw()
		if err != nil {
			return errors.Wrap(err, "unable to draw stage graph")
		}
	}

	err = report.Write(out, format, records)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.Failed() {
			return errFilesFailed
		}
	}

	return nil
}

// chartFiles gives every input its own chart file in outDir. A stem already taken, compared
// without case, gets the first free "-N" suffix.
func chartFiles(files []string, outDir, format string) []string {
	taken := make(map[string]bool, len(files))
	res := make([]string, len(files))
	for i, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		name := stem
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d", stem, n)
		}
		taken[strings.ToLower(name)] = true
		res[i] = filepath.Join(outDir, name+"."+format)
	}

	return res
}

func analyseOne(
	job fileJob,
	lopts loader.Options,
	acfg analysis.Config,
	opts *analyzeOptions,
	cfg *config.Config,
	logger logrus.FieldLogger,
	runID string,
	msr measure.Measure,
	dwr *drawer.DOTDrawer,
) (report.Record, error) {
	samples, err := loader.Load(job.file, lopts)
	if err != nil {
		return report.Record{}, err
	}

	hooks := []model.AnalysisOption{measure.AnalysisMeasure(msr)}
	if dwr != nil {
		hooks = append(hooks, drawer.AnalysisGraph(dwr))
	}

	res, err := analysis.Analyze(samples, acfg, analysis.WithLogger(logger), analysis.WithHooks(hooks...))
	if err != nil {
		return report.Record{}, err
	}

	rec := report.FromResult(runID, job.file, res)
	if opts.noPlot {
		return rec, nil
	}

	verdict := "no step response"
	if res.Classification.IsStepResponse {
		verdict = "step response"
	}
	title := fmt.Sprintf("V-t Graph (%s, %g s to %g s): %s", filepath.Base(job.file), acfg.PlotRange.Min, acfg.PlotRange.Max, verdict)

	err = chart.New(chart.WithTitle(title), chart.WithSize(cfg.Plot.Width, cfg.Plot.Height)).
		Draw(job.chart, res.Aligned, acfg.PlotRange)
	if err != nil {
		return report.Record{}, err
	}
	rec.Chart = job.chart
	logger.WithField("chart", job.chart).Info("graph saved")

	return rec, nil
}
