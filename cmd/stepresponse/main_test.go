package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-stepresponse/internal/config"
	"github.com/askiada/go-stepresponse/internal/report"
	"github.com/askiada/go-stepresponse/pkg/analysis"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// writeRecording writes a data logger export sampled every 100ms, stepping from 0 V to 1 V at 2 s.
func writeRecording(t *testing.T, dir, name string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Date/Time,No.1,No.2\nunit,V,V\nrange,10,10\n")
	for i := range 60 {
		value := 0.0
		if i >= 20 {
			value = 1
		}
		fmt.Fprintf(&sb, "%.1f,5.0,%.1f\n", float64(i)/10, value)
	}

	require.NoError(t, os.MkdirAll(dir, 0o755))
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(sb.String()), 0o600))

	return file
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestAnalyzeYAML(t *testing.T) {
	dir := t.TempDir()
	file := writeRecording(t, dir, "step.csv")
	outDir := filepath.Join(dir, "save")
	dotFile := filepath.Join(dir, "stages.dot")

	out, err := execute(t, "analyze", file, "--out-dir", outDir, "--format", "yaml", "--stage-graph", dotFile, "--plot-format", "svg")
	require.NoError(t, err)

	var records []report.Record
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, file, rec.File)
	assert.NotEmpty(t, rec.RunID)
	assert.Equal(t, 60, rec.Samples)
	require.NotNil(t, rec.Origin)
	assert.Equal(t, 18, rec.Origin.Index)
	require.NotNil(t, rec.Classification)
	assert.True(t, rec.Classification.IsStepResponse)
	assert.Equal(t, model.ReasonSettled, rec.Classification.Reason)

	assert.Equal(t, filepath.Join(outDir, "step.svg"), rec.Chart)
	svg, err := os.ReadFile(rec.Chart)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "): step response")

	dot, err := os.ReadFile(dotFile)
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"smooth" -> "baseline"`)
	assert.Contains(t, string(dot), `"classify" -> "end"`)
}

func TestAnalyzeKeepsGoingAfterAFailedFile(t *testing.T) {
	dir := t.TempDir()
	good := writeRecording(t, dir, "good.csv")
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("time,value\n0,1\n"), 0o600))

	out, err := execute(t, "analyze", good, bad, "--no-plot", "-j", "2")
	require.ErrorIs(t, err, errFilesFailed)

	assert.Contains(t, out, "== "+good+"\n")
	assert.Contains(t, out, "[RESULT] STEP RESPONSE DETECTED")
	assert.Contains(t, out, "== "+bad+"\n[ERROR] ")
	assert.NotContains(t, out, "Graph saved")
	// records keep the order of the arguments
	assert.Less(t, strings.Index(out, good), strings.Index(out, bad))
}

func TestAnalyzeChartPerFile(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "save")
	first := writeRecording(t, filepath.Join(dir, "a"), "x.csv")
	second := writeRecording(t, filepath.Join(dir, "b"), "x.csv")

	out, err := execute(t, "analyze", first, second, "--out-dir", outDir, "--format", "yaml", "-j", "2")
	require.NoError(t, err)

	var records []report.Record
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, filepath.Join(outDir, "x.png"), records[0].Chart)
	assert.Equal(t, filepath.Join(outDir, "x-2.png"), records[1].Chart)

	for _, rec := range records {
		content, err := os.ReadFile(rec.Chart)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("\x89PNG")))
	}
}

func TestChartFiles(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		files    []string
		expected []string
	}{
		"distinct stems": {
			files:    []string{"a/x.csv", "a/y.csv"},
			expected: []string{"out/x.svg", "out/y.svg"},
		},
		"same stem in two directories": {
			files:    []string{"a/x.csv", "b/x.csv", "c/x.txt"},
			expected: []string{"out/x.svg", "out/x-2.svg", "out/x-3.svg"},
		},
		"suffix already used by an input": {
			files:    []string{"a/x.csv", "a/x-2.csv", "b/x.csv"},
			expected: []string{"out/x.svg", "out/x-2.svg", "out/x-3.svg"},
		},
		"stems differing by case": {
			files:    []string{"a/Run.csv", "b/run.csv"},
			expected: []string{"out/Run.svg", "out/run-2.svg"},
		},
		"same file twice": {
			files:    []string{"a/x.csv", "a/x.csv"},
			expected: []string{"out/x.svg", "out/x-2.svg"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			expected := make([]string, len(tc.expected))
			for i, e := range tc.expected {
				expected[i] = filepath.FromSlash(e)
			}
			assert.Equal(t, expected, chartFiles(tc.files, "out", "svg"))
		})
	}
}

func TestAnalyzeFailFast(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("time,value\n0,1\n"), 0o600))

	out, err := execute(t, "analyze", bad, "--no-plot", "--fail-fast")
	require.Error(t, err)
	assert.Equal(t, analysis.KindMalformedInput, analysis.KindOf(err))
	assert.Empty(t, out)
}

func TestAnalyzeFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "run.csv")
	require.NoError(t, os.WriteFile(file, []byte("t;v\n0;0\n1;0\n2;0\n3;5\n4;5\n5;5\n6;5\n"), 0o600))

	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("data:\n  delimiter: \";\"\n"), 0o600))

	out, err := execute(t, "analyze", file, "--no-plot", "--format", "yaml", "--config", configFile,
		"--time-col", "t", "--value-col", "v", "--skip-rows", "99",
		"-w", "1", "--baseline-tolerance", "0.1", "--peak-tolerance", "1", "--settle-time", "4", "--settle-tolerance", "0.5",
	)
	require.NoError(t, err)

	var records []report.Record
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Origin.Index)
	assert.Equal(t, model.ReasonNoSignificantExcursion, records[0].Classification.Reason)
}

func TestAnalyzeInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	file := writeRecording(t, dir, "step.csv")

	tcs := map[string][]string{
		"window":    {"-w", "0"},
		"policy":    {"--policy", "median"},
		"plot":      {"--plot-min", "9"},
		"env file":  {"--env-file", filepath.Join(dir, "missing.env")},
		"format":    {"--format", "xml"},
		"log level": {"--log-level", "loud"},
		"chart":     {"--plot-format", "bmp"},
	}

	for name, extra := range tcs {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, append([]string{"analyze", file, "--no-plot"}, extra...)...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestDefaults(t *testing.T) {
	out, err := execute(t, "defaults")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, config.Default(), &cfg)
}
