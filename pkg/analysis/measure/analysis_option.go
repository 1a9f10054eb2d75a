package measure

import (
	"time"

	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

type analysisMeasure struct {
	Measure
	startTime  time.Time
	lastOutput time.Time
	lastStage  string
}

func (am *analysisMeasure) New() error {
	am.AddMetric(model.StartStage)
	am.AddMetric(model.EndStage)
	am.startTime = time.Now()
	am.lastOutput = am.startTime
	am.lastStage = model.StartStage

	return nil
}

func (am *analysisMeasure) PrepareStage(parentStage, stage *model.StageInfo) error {
	am.AddMetric(stage.Name)

	return nil
}

func (am *analysisMeasure) OnStageOutput(parentStage, stage *model.StageInfo, computationDuration time.Duration) error {
	now := time.Now()
	mt := am.GetMetric(stage.Name)
	mt.AddDuration(computationDuration)
	mt.AddTransportDuration(parentStage.Name, now.Sub(am.lastOutput))
	am.lastOutput = now
	am.lastStage = stage.Name

	return nil
}

func (am *analysisMeasure) Finish() error {
	end := am.GetMetric(model.EndStage)
	end.AddTransportDuration(am.lastStage, time.Since(am.lastOutput))
	end.SetTotalDuration(time.Since(am.startTime))

	return nil
}

// AnalysisMeasure returns a hook recording stage durations into msr.
// Use a new hook for every Analyze call; the measure itself can be shared.
func AnalysisMeasure(msr Measure) model.AnalysisOption {
	return &analysisMeasure{Measure: msr}
}
