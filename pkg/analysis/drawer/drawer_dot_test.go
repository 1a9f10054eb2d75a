package drawer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stepresponse/pkg/analysis/drawer"
	"github.com/askiada/go-stepresponse/pkg/analysis/measure"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

func runStages(t *testing.T, hooks ...model.AnalysisOption) {
	t.Helper()

	for _, hook := range hooks {
		require.NoError(t, hook.New())
	}
	parent := &model.StageInfo{Name: model.StartStage}
	for i, name := range model.Stages {
		stage := &model.StageInfo{Name: name}
		for _, hook := range hooks {
			require.NoError(t, hook.PrepareStage(parent, stage))
		}
		for _, hook := range hooks {
			require.NoError(t, hook.OnStageOutput(parent, stage, time.Duration(i+1)*time.Millisecond))
		}
		parent = stage
	}
	for _, hook := range hooks {
		require.NoError(t, hook.Finish())
	}
}

func TestDOTDrawerStages(t *testing.T) {
	t.Parallel()

	dwr := drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "unused.dot"))
	require.NoError(t, dwr.AddStage("a"))
	require.NoError(t, dwr.AddStage("a"))
	require.NoError(t, dwr.AddStage("b"))
	require.NoError(t, dwr.AddLink("a", "b"))
	require.NoError(t, dwr.AddLink("a", "b"))
	assert.Error(t, dwr.AddLink("a", "missing"))

	var buf bytes.Buffer
	require.NoError(t, dwr.Write(&buf))
	assert.Equal(t, "strict digraph {\n"+
		"\trankdir=\"LR\";\n"+
		"\t\"a\" [];\n"+
		"\t\"a\" -> \"b\" [];\n"+
		"\t\"b\" [];\n"+
		"}\n", buf.String())
}

func TestAnalysisGraph(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	dwr := drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "stages.dot"))

	runStages(t, measure.AnalysisMeasure(msr), drawer.AnalysisGraph(dwr))
	runStages(t, measure.AnalysisMeasure(msr), drawer.AnalysisGraph(dwr))

	require.NoError(t, dwr.AddMeasure(msr))

	var buf bytes.Buffer
	require.NoError(t, dwr.Write(&buf))
	out := buf.String()

	for _, link := range []string{
		`"start" -> "smooth"`,
		`"smooth" -> "baseline"`,
		`"baseline" -> "origin"`,
		`"origin" -> "align"`,
		`"align" -> "classify"`,
		`"classify" -> "end"`,
	} {
		assert.Contains(t, out, link)
	}
	// two runs aggregate into one label per stage
	assert.Contains(t, out, `"baseline" [label=<baseline <BR /> <FONT POINT-SIZE="12">2ms (x2)</FONT>>];`)
	assert.Contains(t, out, "color=")

	var again bytes.Buffer
	require.NoError(t, dwr.Write(&again))
	assert.Equal(t, out, again.String())
}

func TestAnalysisDrawerWritesFile(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	file := filepath.Join(t.TempDir(), "stages.dot")
	dwr := drawer.NewDOTDrawer(file)

	runStages(t, measure.AnalysisMeasure(msr), drawer.AnalysisDrawer(dwr, msr))

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"classify" -> "end"`)
	assert.Contains(t, string(content), "end: ")
}
