package drawer

import (
	"io"
	"time"

	"github.com/askiada/go-stepresponse/pkg/analysis/measure"
)

// Drawer is an interface that defines the methods for drawing the stages of an analysis.
type Drawer interface {
	// AddStage adds a stage to the drawer. Adding an existing stage is a no-op.
	AddStage(stageName string) error
	// AddLink adds a link between parent and children stages. Adding an existing link is a no-op.
	AddLink(parentStageName, childrenStageName string) error
	// Draw creates a file with the stage graph.
	Draw() error
	// Write writes the stage graph to wrt.
	Write(wrt io.Writer) error
	// SetTotalTime sets the total time for the stage.
	SetTotalTime(stageName string, startTime time.Time) error
	// AddMeasure adds a measure to the drawer.
	AddMeasure(measure measure.Measure) error
}
