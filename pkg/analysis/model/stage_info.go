package model

// Names of the analysis stages, in execution order.
const (
	StartStage    = "start"
	SmoothStage   = "smooth"
	BaselineStage = "baseline"
	OriginStage   = "origin"
	AlignStage    = "align"
	ClassifyStage = "classify"
	EndStage      = "end"
)

// Stages lists the computing stages in the order the analysis runs them.
var Stages = []string{SmoothStage, BaselineStage, OriginStage, AlignStage, ClassifyStage}

// StageInfo describes one stage of an analysis run.
type StageInfo struct {
	Name    string
	Samples int
}
