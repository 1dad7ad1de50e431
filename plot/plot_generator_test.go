package plot

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pivolan/hrv_tda_stats/dataset"
	"github.com/pivolan/hrv_tda_stats/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func TestCalculateGridStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 0},
		{1, 0.2},
		{1.5, 0.5},
		{4, 1},
		{9, 2},
		{365, 100},
		{0.03, 0.01},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, calculateGridStep(tt.max), 1e-12, "max=%v", tt.max)
	}
}

func TestAxisTicksCoverRange(t *testing.T) {
	ticks, min, max := axisTicks(612.5, 1043)
	require.NotEmpty(t, ticks)
	assert.LessOrEqual(t, min, 612.5)
	assert.GreaterOrEqual(t, max, 1043.0)
	assert.Equal(t, min, ticks[0].Value)

	ticks, min, max = axisTicks(5, 5)
	assert.Less(t, min, 5.0)
	assert.Greater(t, max, 5.0)
	assert.NotEmpty(t, ticks)
}

func TestComputeBox(t *testing.T) {
	box := ComputeBox([]float64{9, 1, 2, 3, 4, 5, 6, 7, 8})
	require.NotNil(t, box)
	assert.Equal(t, 3.0, box.Q1)
	assert.Equal(t, 5.0, box.Median)
	assert.Equal(t, 7.0, box.Q3)
	assert.Equal(t, 1.0, box.LowWhisker)
	assert.Equal(t, 9.0, box.HighWhisker)
	assert.Empty(t, box.Outliers)

	box = ComputeBox([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100})
	assert.Equal(t, []float64{100}, box.Outliers)
	assert.Equal(t, 8.0, box.HighWhisker)

	assert.Nil(t, ComputeBox(nil))
}

func hrvTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl := dataset.New(9)
	require.NoError(t, tbl.AddLabels("Age_Group", []string{"old", "young", "mid", "old", "young", "mid", "old", "", "mid"}))
	require.NoError(t, tbl.AddNumeric("mean_RR", []float64{810, 920, 870, 790, 950, 860, 805, 900, math.NaN()}))
	require.NoError(t, tbl.AddNumeric("SDNN_RR", []float64{31, 58, 44, 28, 61, 40, 35, 50, 42}))
	return tbl
}

func decodeFigure(t *testing.T, f *Figure) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(f.PNG))
	require.NoError(t, err)
	assert.Equal(t, f.Width, cfg.Width)
	assert.Equal(t, f.Height, cfg.Height)
	return cfg.Width, cfg.Height
}

func TestRenderGroupBoxplots(t *testing.T) {
	tbl := hrvTable(t)

	one, err := RenderGroupBoxplots(tbl, []string{"mean_RR"}, "Age_Group")
	require.NoError(t, err)
	w1, h1 := decodeFigure(t, one)
	assert.Equal(t, panelWidth, w1)
	assert.Equal(t, panelHeight, h1)

	two, err := RenderGroupBoxplots(tbl, []string{"mean_RR", "SDNN_RR"}, "Age_Group")
	require.NoError(t, err)
	w2, h2 := decodeFigure(t, two)
	assert.Equal(t, 2*panelWidth, w2)
	assert.Equal(t, panelHeight, h2)
}

func TestRenderGroupBoxplotsErrors(t *testing.T) {
	tbl := hrvTable(t)

	_, err := RenderGroupBoxplots(tbl, nil, "Age_Group")
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = RenderGroupBoxplots(tbl, []string{"RMSSD_RR"}, "Age_Group")
	assert.True(t, errors.Is(err, dataset.ErrColumnNotFound))

	_, err = RenderGroupBoxplots(tbl, []string{"Age_Group"}, "Age_Group")
	assert.True(t, dataset.IsSchemaError(err))
}

func TestSplitByGroup(t *testing.T) {
	order, split, err := SplitByGroup(hrvTable(t), "mean_RR", "Age_Group")
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "old", "young"}, order)
	assert.Equal(t, [][]float64{{870, 860}, {810, 790, 805}, {920, 950}}, split)

	tbl := dataset.New(4)
	require.NoError(t, tbl.AddNumeric("stage", []float64{10, 9, 10, 9}))
	require.NoError(t, tbl.AddNumeric("mean_RR", []float64{1, 2, 3, 4}))
	order, split, err = SplitByGroup(tbl, "mean_RR", "stage")
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10"}, order)
	assert.Equal(t, [][]float64{{2, 4}, {1, 3}}, split)
}

func correlationTable() *models.CorrelationTable {
	return &models.CorrelationTable{Records: []models.CorrelationRecord{
		{Feature: "TP1", Metric: "mean_RR", R: 0.42, P: 0.01, N: 30},
		{Feature: "TP1", Metric: "SDNN_RR", R: -0.8, P: 0.001, N: 30},
		{Feature: "N1", Metric: "mean_RR", R: 0.1, P: 0.6, N: 30},
	}}
}

func TestPivot(t *testing.T) {
	g, err := Pivot(correlationTable().Records)
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "TP1"}, g.Rows)
	assert.Equal(t, []string{"SDNN_RR", "mean_RR"}, g.Cols)
	assert.True(t, math.IsNaN(g.Values[0][0]))
	assert.Equal(t, 0.1, g.Values[0][1])
	assert.Equal(t, -0.8, g.Values[1][0])
	assert.Equal(t, 0.8, g.Limit())
}

func TestRenderCorrelationHeatmap(t *testing.T) {
	fig, err := RenderCorrelationHeatmap(correlationTable())
	require.NoError(t, err)
	w, h := decodeFigure(t, fig)
	assert.Greater(t, w, 2*cellWidth)
	assert.Greater(t, h, 2*cellHeight)

	path := filepath.Join(t.TempDir(), "figures", fig.FileName())
	require.NoError(t, fig.Save(path))
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fig.PNG, saved)
}

func TestRenderCorrelationHeatmapErrors(t *testing.T) {
	dup := correlationTable()
	dup.Records = append(dup.Records, models.CorrelationRecord{Feature: "N1", Metric: "mean_RR", R: 0.2})
	_, err := RenderCorrelationHeatmap(dup)
	assert.True(t, errors.Is(err, ErrDuplicatePair))

	_, err = RenderCorrelationHeatmap(&models.CorrelationTable{})
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestCoolwarm(t *testing.T) {
	assert.Equal(t, coolwarm[0].c, coolwarmAt(-1))
	assert.Equal(t, drawing.Color{R: 221, G: 221, B: 221, A: 255}, coolwarmAt(0.5))
	assert.Equal(t, coolwarm[4].c, coolwarmAt(2))
	assert.Equal(t, drawing.ColorBlack, textColorOn(coolwarmAt(0.5)))
	assert.Equal(t, drawing.ColorWhite, textColorOn(coolwarmAt(0)))
}
