package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-stepresponse/pkg/analysis/measure"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

type analysisDrawer struct {
	Drawer
	m         measure.Measure
	draw      bool
	startTime time.Time
	lastStage string
}

func (ad *analysisDrawer) New() error {
	err := ad.AddStage(model.StartStage)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}
	err = ad.AddStage(model.EndStage)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}
	ad.startTime = time.Now()
	ad.lastStage = model.StartStage

	return nil
}

func (ad *analysisDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := ad.AddStage(stage.Name)
	if err != nil {
		return err
	}

	return ad.AddLink(parentStage.Name, stage.Name)
}

func (ad *analysisDrawer) OnStageOutput(parentStage, stage *model.StageInfo, computationDuration time.Duration) error {
	ad.lastStage = stage.Name

	return nil
}

func (ad *analysisDrawer) Finish() error {
	err := ad.AddLink(ad.lastStage, model.EndStage)
	if err != nil {
		return err
	}

	if !ad.draw {
		return nil
	}

	if ad.m != nil {
		err := ad.SetTotalTime(model.EndStage, ad.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
		err = ad.AddMeasure(ad.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = ad.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw analysis stages")
	}

	return nil
}

// AnalysisDrawer returns a hook adding the stages of a run to drawer and drawing it when the
// run finishes. When measure is set, it must also be registered as a hook of the same run
// (before this one) so the graph carries the stage durations.
func AnalysisDrawer(drawer Drawer, measure measure.Measure) model.AnalysisOption {
	return &analysisDrawer{Drawer: drawer, m: measure, draw: true}
}

// AnalysisGraph returns a hook that only adds the stages of a run to drawer. It suits batches
// where many runs share one drawer, which the caller draws once at the end.
func AnalysisGraph(drawer Drawer) model.AnalysisOption {
	return &analysisDrawer{Drawer: drawer}
}
