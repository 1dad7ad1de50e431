package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pivolan/hrv_tda_stats/dataset"
	"github.com/pivolan/hrv_tda_stats/domain/models"
	"github.com/pivolan/hrv_tda_stats/plot"
)

var coolwarmStops = []string{"#3b4cc0", "#8db0fe", "#dddddd", "#f49a7b", "#b40426"}

// Report is the interactive HTML counterpart of the PNG figures.
type Report struct {
	Table       *dataset.Table
	GroupColumn string
	Metrics     []string
	GroupTests  []*models.GroupTestResult
	Correlation *models.CorrelationTable
}

// WriteHTML renders one box plot per metric and the correlation heatmap on a single page.
func (rep Report) WriteHTML(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = "HRV / TDA statistics"

	tests := make(map[string]*models.GroupTestResult, len(rep.GroupTests))
	for _, res := range rep.GroupTests {
		tests[res.Metric] = res
	}

	for _, metric := range rep.Metrics {
		box, err := rep.boxPlot(metric, tests[metric])
		if err != nil {
			return err
		}
		page.AddCharts(box)
	}

	if rep.Correlation != nil && len(rep.Correlation.Records) > 0 {
		heat, err := heatMap(rep.Correlation)
		if err != nil {
			return err
		}
		page.AddCharts(heat)
	}
	return page.Render(w)
}

func (rep Report) boxPlot(metric string, res *models.GroupTestResult) (*charts.BoxPlot, error) {
	order, split, err := plot.SplitByGroup(rep.Table, metric, rep.GroupColumn)
	if err != nil {
		return nil, err
	}
	data := make([]opts.BoxPlotData, 0, len(order))
	for _, values := range split {
		b := plot.ComputeBox(values)
		if b == nil {
			data = append(data, opts.BoxPlotData{Value: []float64{}})
			continue
		}
		data = append(data, opts.BoxPlotData{Value: []float64{b.LowWhisker, b.Q1, b.Median, b.Q3, b.HighWhisker}})
	}

	subtitle := ""
	if res != nil {
		subtitle = fmt.Sprintf("Kruskal–Wallis H=%.3f, p=%.5f", res.H, res.P)
	}
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: metric, Subtitle: subtitle}),
		charts.WithXAxisOpts(opts.XAxis{Name: rep.GroupColumn, Type: "category", Data: order}),
		charts.WithYAxisOpts(opts.YAxis{Name: metric, Type: "value"}),
	)
	box.SetXAxis(order).AddSeries(metric, data)
	return box, nil
}

func heatMap(tbl *models.CorrelationTable) (*charts.HeatMap, error) {
	g, err := plot.Pivot(tbl.Records)
	if err != nil {
		return nil, err
	}
	data := make([]opts.HeatMapData, 0, len(g.Rows)*len(g.Cols))
	for i, row := range g.Values {
		for j, v := range row {
			var cell interface{} = "-"
			if !math.IsNaN(v) {
				cell = math.Round(v*100) / 100
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, cell}})
		}
	}

	heat := charts.NewHeatMap()
	heat.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Correlation between TDA Descriptors and HRV Metrics"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: g.Cols}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: g.Rows}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     -1,
			Max:     1,
			Text:    []string{"Pearson r"},
			InRange: &opts.VisualMapInRange{Color: coolwarmStops},
		}),
	)
	heat.SetXAxis(g.Cols).AddSeries("Pearson r", data)
	return heat, nil
}
