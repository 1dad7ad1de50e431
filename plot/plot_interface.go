package plot

import "github.com/wcharczuk/go-chart/v2"

type dataForGraph interface {
	GetNameGraph() string
	getNameYAxis() string
	calculateChartDimensions() (int, int)
	generateGrid() ([]chart.Tick, *chart.ContinuousRange)
	generateXTicks() ([]chart.Tick, *chart.ContinuousRange)
	series() chart.Series
}
