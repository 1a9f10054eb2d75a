package drawer

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-stepresponse/pkg/analysis/measure"
)

// DOTDrawer is a drawer that creates a Graphviz DOT file with the stage graph.
// It is safe for concurrent use, so several analysis runs can share it.
type DOTDrawer struct {
	mu          sync.Mutex
	graph       graph.Graph[string, string]
	dotFileName string
}

// NewDOTDrawer creates a new DOT drawer writing to dotFileName.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	return &DOTDrawer{
		dotFileName: dotFileName,
		graph:       graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddStage adds a stage to the graph.
func (d *DOTDrawer) AddStage(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.graph.AddVertex(name)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and children stages.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw creates the DOT file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	err = d.Write(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.dotFileName)
	}

	return nil
}

// Write renders the graph as DOT to wrt, left to right, with stages and links sorted by name.
func (d *DOTDrawer) Write(wrt io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	adjacencyMap, err := d.graph.AdjacencyMap()
	if err != nil {
		return errors.Wrap(err, "unable to get adjacency map")
	}

	var sb strings.Builder
	sb.WriteString("strict digraph {\n\trankdir=\"LR\";\n")
	for _, stage := range slices.Sorted(maps.Keys(adjacencyMap)) {
		_, properties, err := d.graph.VertexWithProperties(stage)
		if err != nil {
			return errors.Wrapf(err, "unable to get %s vertex properties", stage)
		}
		fmt.Fprintf(&sb, "\t%q [%s];\n", stage, stageAttributes(stage, properties.Attributes))

		for _, child := range slices.Sorted(maps.Keys(adjacencyMap[stage])) {
			edge := adjacencyMap[stage][child]
			fmt.Fprintf(&sb, "\t%q -> %q [%s];\n", stage, child, attributes(quoted(edge.Properties.Attributes)))
		}
	}
	sb.WriteString("}\n")

	_, err = io.WriteString(wrt, sb.String())
	if err != nil {
		return errors.Wrap(err, "unable to write dot graph")
	}

	return nil
}

// SetTotalTime sets the total time for the stage.
func (d *DOTDrawer) SetTotalTime(stageName string, startTime time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, properties, err := d.graph.VertexWithProperties(stageName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stageName)
	}

	properties.Attributes["xlabel"] = time.Since(startTime).String()

	return nil
}

const maxRGB = 240

// AddMeasure labels stages with their average duration and colours each link from blue
// (fastest hand-off) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	allChanElapsed := make(map[time.Duration]string)
	sortedAllChanElapsed := []time.Duration{}

	for _, stage := range msr.AllMetrics() {
		for _, info := range stage.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			if _, ok := allChanElapsed[info.Elapsed]; ok {
				continue
			}

			allChanElapsed[info.Elapsed] = ""

			sortedAllChanElapsed = append(sortedAllChanElapsed, info.Elapsed)
		}
	}

	if len(sortedAllChanElapsed) > 0 {
		sort.Slice(sortedAllChanElapsed, func(i, j int) bool {
			return sortedAllChanElapsed[i] > sortedAllChanElapsed[j]
		})

		maxValue := sortedAllChanElapsed[0]
		minValue := sortedAllChanElapsed[len(sortedAllChanElapsed)-1]

		for curr := range allChanElapsed {
			fraction := 1.0
			if maxValue > minValue {
				fraction = float64(curr-minValue) / float64(maxValue-minValue)
			}

			red := maxRGB * fraction
			blue := maxRGB - red

			colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
			if err != nil {
				return errors.Wrap(err, "unable to get colour")
			}

			allChanElapsed[curr] = colour.ToHEX().String()
		}
	}

	err := d.updateMetrics(msr, allChanElapsed)
	if err != nil {
		return errors.Wrap(err, "unable to update metrics")
	}

	return nil
}

func (d *DOTDrawer) updateMetrics(msr measure.Measure, allChanElapsed map[time.Duration]string) error {
	for name, stage := range msr.AllMetrics() {
		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		label := ""
		if stageAvg := stage.AVGDuration(); stageAvg != 0 {
			label = fmt.Sprintf("%s (x%d)", stageAvg, stage.Count())
		}

		if stage.GetTotalDuration() > 0 {
			label += ", end: " + stage.GetTotalDuration().String()
		}

		if label != "" {
			properties.Attributes["xlabel"] = label
		}

		for inputStage, info := range stage.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			err := d.graph.UpdateEdge(inputStage, name,
				graph.EdgeAttribute("label", info.Elapsed.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", allChanElapsed[info.Elapsed]), //nolint
			)
			if err != nil {
				return errors.Wrapf(err, "unable to update edge from %s to %s", inputStage, name)
			}
		}
	}

	return nil
}

// stageAttributes renders the vertex attributes, showing the xlabel under the stage name.
func stageAttributes(stage string, attrs map[string]string) string {
	res := quoted(attrs)
	if label, ok := attrs["xlabel"]; ok {
		delete(res, "xlabel")
		res["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, stage, label)
	}

	return attributes(res)
}

func quoted(attrs map[string]string) map[string]string {
	res := make(map[string]string, len(attrs))
	for k, v := range attrs {
		res[k] = strconv.Quote(v)
	}

	return res
}

func attributes(attrs map[string]string) string {
	parts := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		parts = append(parts, k+"="+attrs[k])
	}

	return strings.Join(parts, ", ")
}

var _ Drawer = (*DOTDrawer)(nil)
