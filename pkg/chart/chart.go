// Package chart renders aligned voltage-vs-time sequences as line charts.
package chart

import (
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

const (
	defaultWidth  = 1000
	defaultHeight = 500
	// resolution of the raster formats
	dpi = 96
)

var originColour = color.RGBA{R: 214, G: 39, B: 40, A: 255}

// Chart draws one trace against a time window.
type Chart struct {
	title       string
	xLabel      string
	yLabel      string
	width       int
	height      int
	traceColour color.RGBA
	originLine  bool
}

// Option configures a Chart.
type Option func(c *Chart)

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(c *Chart) {
		c.title = title
	}
}

// WithLabels sets the axis labels.
func WithLabels(xLabel, yLabel string) Option {
	return func(c *Chart) {
		c.xLabel = xLabel
		c.yLabel = yLabel
	}
}

// WithSize sets the image size in pixels at 96 dpi. Non-positive values keep the default.
func WithSize(width, height int) Option {
	return func(c *Chart) {
		if width > 0 {
			c.width = width
		}
		if height > 0 {
			c.height = height
		}
	}
}

// WithTraceColour sets the colour of the trace.
func WithTraceColour(red, green, blue uint8) Option {
	return func(c *Chart) {
		c.traceColour = color.RGBA{R: red, G: green, B: blue, A: 255}
	}
}

// WithoutOriginLine hides the vertical marker at t=0.
func WithoutOriginLine() Option {
	return func(c *Chart) {
		c.originLine = false
	}
}

// New creates a chart with the labels of a voltage measurement.
func New(opts ...Option) *Chart {
	c := &Chart{
		title:       "V-t Graph (Zeroed)",
		xLabel:      "Time [s]",
		yLabel:      "Voltage [V]",
		width:       defaultWidth,
		height:      defaultHeight,
		traceColour: color.RGBA{R: 31, G: 119, B: 180, A: 255},
		originLine:  true,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Clip keeps the samples whose time lies in window.
func Clip(samples []model.Sample, window model.Range) plotter.XYs {
	visible := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		if window.Contains(s.Time) {
			visible = append(visible, plotter.XY{X: s.Time, Y: s.Value})
		}
	}

	return visible
}

// Plot builds the plot of the samples whose time lies in window. The X axis spans the window.
func (c *Chart) Plot(samples []model.Sample, window model.Range) (*plot.Plot, error) {
	if window.Min > window.Max {
		return nil, errors.Errorf("invalid window [%v, %v]", window.Min, window.Max)
	}

	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = c.xLabel
	p.Y.Label.Text = c.yLabel
	p.Add(plotter.NewGrid())

	visible := Clip(samples, window)
	if len(visible) > 0 {
		trace, err := plotter.NewLine(visible)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create trace")
		}
		trace.Color = c.traceColour
		trace.Width = vg.Points(1.5)
		p.Add(trace)
	}

	if c.originLine && window.Contains(0) {
		lo, hi := p.Y.Min, p.Y.Max
		if len(visible) == 0 {
			lo, hi = 0, 0
		}
		if hi <= lo {
			lo, hi = lo-1, hi+1
		}

		marker, err := plotter.NewLine(plotter.XYs{{X: 0, Y: lo}, {X: 0, Y: hi}})
		if err != nil {
			return nil, errors.Wrap(err, "unable to create origin marker")
		}
		marker.Color = originColour
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(marker)
	}

	p.X.Min = window.Min
	p.X.Max = window.Max

	return p, nil
}

// Render writes the chart in format, one of the formats gonum/plot supports such as png, svg or pdf.
func (c *Chart) Render(wrt io.Writer, format string, samples []model.Sample, window model.Range) error {
	p, err := c.Plot(samples, window)
	if err != nil {
		return err
	}

	canvas, err := p.WriterTo(pixels(c.width), pixels(c.height), strings.ToLower(format))
	if err != nil {
		return errors.Wrapf(err, "unable to render %s chart", format)
	}

	_, err = canvas.WriteTo(wrt)
	if err != nil {
		return errors.Wrap(err, "unable to write chart")
	}

	return nil
}

// Draw renders the chart into fileName, creating its directory when needed. The file
// extension selects the format.
func (c *Chart) Draw(fileName string, samples []model.Sample, window model.Range) error {
	format := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if format == "" {
		return errors.Errorf("no image format in file name %s", fileName)
	}

	err := os.MkdirAll(filepath.Dir(fileName), 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", fileName)
	}

	file, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", fileName)
	}
	defer file.Close()

	err = c.Render(file, format, samples, window)
	if err != nil {
		return errors.Wrapf(err, "unable to draw chart %s", fileName)
	}

	return nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}
