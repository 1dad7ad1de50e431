package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/pivolan/hrv_tda_stats/dataset"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

const (
	boxHalfWidth = 0.4
	pointRadius  = 2.5
)

var (
	boxEdgeColor = drawing.ColorFromHex("3d3d3d")
	pointColor   = drawing.ColorBlack.WithAlpha(100)
)

// boxSeries draws a box per category with the raw observations jittered on top.
type boxSeries struct {
	name   string
	boxes  []*BoxStats
	points [][]float64
	jitter [][]float64
}

func (b boxSeries) GetName() string { return b.name }

func (b boxSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (b boxSeries) GetStyle() chart.Style { return chart.Style{} }

func (b boxSeries) Validate() error {
	if len(b.boxes) != len(b.points) || len(b.points) != len(b.jitter) {
		return fmt.Errorf("box series %q: inconsistent group count", b.name)
	}
	return nil
}

func (b boxSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	px := func(x float64) int { return canvasBox.Left + xrange.Translate(x) }
	py := func(y float64) int { return canvasBox.Bottom - yrange.Translate(y) }

	for i, box := range b.boxes {
		if box == nil {
			continue
		}
		center := float64(i + 1)
		left, right := px(center-boxHalfWidth), px(center+boxHalfWidth)
		capLeft, capRight := px(center-boxHalfWidth/2), px(center+boxHalfWidth/2)
		mid := px(center)

		r.SetStrokeColor(boxEdgeColor)
		r.SetStrokeWidth(1.2)

		// whiskers
		r.MoveTo(mid, py(box.Q1))
		r.LineTo(mid, py(box.LowWhisker))
		r.MoveTo(capLeft, py(box.LowWhisker))
		r.LineTo(capRight, py(box.LowWhisker))
		r.MoveTo(mid, py(box.Q3))
		r.LineTo(mid, py(box.HighWhisker))
		r.MoveTo(capLeft, py(box.HighWhisker))
		r.LineTo(capRight, py(box.HighWhisker))
		r.Stroke()

		r.SetFillColor(paletteColor(i))
		r.SetStrokeColor(boxEdgeColor)
		r.MoveTo(left, py(box.Q3))
		r.LineTo(right, py(box.Q3))
		r.LineTo(right, py(box.Q1))
		r.LineTo(left, py(box.Q1))
		r.LineTo(left, py(box.Q3))
		r.Close()
		r.FillStroke()

		r.SetStrokeColor(boxEdgeColor)
		r.SetStrokeWidth(2)
		r.MoveTo(left, py(box.Median))
		r.LineTo(right, py(box.Median))
		r.Stroke()

		// fliers
		r.SetStrokeColor(boxEdgeColor)
		r.SetStrokeWidth(1)
		r.SetFillColor(drawing.ColorWhite)
		for _, v := range box.Outliers {
			r.Circle(pointRadius+1, mid, py(v))
			r.FillStroke()
		}
	}

	r.SetFillColor(pointColor)
	r.SetStrokeColor(pointColor)
	r.SetStrokeWidth(0)
	for i, group := range b.points {
		for j, v := range group {
			r.Circle(pointRadius, px(float64(i+1)+b.jitter[i][j]), py(v))
			r.Fill()
		}
	}
}

func renderPanel(d dataForGraph) ([]byte, error) {
	xticks, xrange := d.generateXTicks()
	yticks, yrange := d.generateGrid()
	width, height := d.calculateChartDimensions()

	labels := make([]string, 0, len(xticks))
	for _, tick := range xticks {
		labels = append(labels, tick.Label)
	}

	graph := chart.Chart{
		Title:      d.GetNameGraph(),
		TitleStyle: chart.Style{FontSize: 14},
		Width:      width,
		Height:     height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: labelPadding(labels),
			},
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{
			Range: xrange,
			Ticks: xticks,
			Style: chart.Style{TextRotationDegrees: 45, FontSize: 10},
		},
		YAxis: chart.YAxis{
			Name:  d.getNameYAxis(),
			Range: yrange,
			Ticks: yticks,
			Style: chart.Style{FontSize: 10},
			GridMajorStyle: chart.Style{
				StrokeColor:     drawing.ColorFromHex("d0d0d0"),
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		},
		Series: []chart.Series{d.series()},
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render %s: %w", d.GetNameGraph(), err)
	}
	return buffer.Bytes(), nil
}

// RenderGroupBoxplots draws one box-and-strip panel per metric, grouped by
// groupColumn, and lays the panels out in a single row. Missing values are
// left out per metric; every panel shares the same group order.
func RenderGroupBoxplots(t *dataset.Table, metrics []string, groupColumn string) (*Figure, error) {
	if len(metrics) == 0 {
		return nil, ErrNoData
	}
	panels := make([][]byte, 0, len(metrics))
	for _, metric := range metrics {
		order, split, err := SplitByGroup(t, metric, groupColumn)
		if err != nil {
			return nil, err
		}
		panel, err := renderPanel(newDataGroupsForGraph(order, split, metric))
		if err != nil {
			return nil, err
		}
		panels = append(panels, panel)
	}
	return composeHorizontal("group_boxplots", panels)
}

// SplitByGroup returns the group labels in table order and the non-missing metric
// values for each of them. A group may come back empty.
func SplitByGroup(t *dataset.Table, metric, groupColumn string) ([]string, [][]float64, error) {
	groups, err := t.Labels(groupColumn)
	if err != nil {
		return nil, nil, err
	}
	values, err := t.Numeric(metric)
	if err != nil {
		return nil, nil, err
	}
	order, err := t.Groups(groupColumn)
	if err != nil {
		return nil, nil, err
	}
	if len(order) == 0 {
		return nil, nil, fmt.Errorf("%w: column %q has no group labels", ErrNoData, groupColumn)
	}
	index := indexOf(order)
	split := make([][]float64, len(order))
	for i, v := range values {
		if groups[i] == "" || math.IsNaN(v) {
			continue
		}
		k := index[groups[i]]
		split[k] = append(split[k], v)
	}
	return order, split, nil
}
