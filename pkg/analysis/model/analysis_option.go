package model

import "time"

// AnalysisOption defines the interface for hooks observing an analysis run.
// Hooks see stage metadata and timings only, never the data, so they cannot change a result.
type AnalysisOption interface {
	// New initialises the option before the first stage.
	New() error
	// PrepareStage runs before the stage is executed.
	PrepareStage(parentStage, stage *StageInfo) error
	// OnStageOutput runs once the stage has produced its output.
	OnStageOutput(parentStage, stage *StageInfo, computationDuration time.Duration) error
	// Finish runs after the last stage, only when the run succeeded.
	Finish() error
}
