package plot

import (
	"math/rand"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	panelWidth  = 600
	panelHeight = 500
	jitterSeed  = 42
	jitterWidth = 0.1
)

// dataGroupsForGraph is one metric split by group label: a categorical x axis
// with a box and the raw points per category.
type dataGroupsForGraph struct {
	labels    []string
	values    [][]float64
	nameYAxis string
	nameGraph string
}

func newDataGroupsForGraph(labels []string, values [][]float64, metric string) dataGroupsForGraph {
	return dataGroupsForGraph{
		labels:    labels,
		values:    values,
		nameYAxis: metric,
		nameGraph: metric,
	}
}

func (d dataGroupsForGraph) GetNameGraph() string {
	return d.nameGraph
}

func (d dataGroupsForGraph) getNameYAxis() string {
	return d.nameYAxis
}

func (d dataGroupsForGraph) lenXValues() int {
	return len(d.labels)
}

func (d dataGroupsForGraph) calculateChartDimensions() (width, height int) {
	return panelWidth, panelHeight
}

func (d dataGroupsForGraph) generateGrid() ([]chart.Tick, *chart.ContinuousRange) {
	lo, hi, ok := valueBounds(d.values)
	if !ok {
		lo, hi = 0, 1
	}
	ticks, min, max := axisTicks(lo, hi)
	return ticks, &chart.ContinuousRange{Min: min, Max: max}
}

// generateXTicks places category i at x = i+1.
func (d dataGroupsForGraph) generateXTicks() ([]chart.Tick, *chart.ContinuousRange) {
	ticks := make([]chart.Tick, 0, d.lenXValues())
	for i, label := range d.labels {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: label})
	}
	return ticks, &chart.ContinuousRange{Min: 0.5, Max: float64(d.lenXValues()) + 0.5}
}

func (d dataGroupsForGraph) series() chart.Series {
	rng := rand.New(rand.NewSource(jitterSeed))
	s := boxSeries{
		name:   d.nameGraph,
		boxes:  make([]*BoxStats, len(d.values)),
		points: d.values,
		jitter: make([][]float64, len(d.values)),
	}
	for i, group := range d.values {
		s.boxes[i] = ComputeBox(group)
		s.jitter[i] = make([]float64, len(group))
		for j := range group {
			s.jitter[i][j] = (rng.Float64()*2 - 1) * jitterWidth
		}
	}
	return s
}
