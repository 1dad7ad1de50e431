package plot

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pivolan/hrv_tda_stats/domain/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	heatmapTitle = "Correlation between TDA Descriptors and HRV Metrics"
	colorBarName = "Pearson r"

	cellWidth     = 110
	cellHeight    = 60
	heatmapTop    = 70
	heatmapBottom = 80
	colorBarGap   = 30
	colorBarWidth = 20
	colorBarSpace = 110
	charWidth     = 8
)

// heatmapLayout fixes pixel positions for a grid.
type heatmapLayout struct {
	left, top     int
	width, height int
	barLeft       int
}

func newHeatmapLayout(g *Grid) heatmapLayout {
	longest := 0
	for _, label := range g.Rows {
		if len(label) > longest {
			longest = len(label)
		}
	}
	l := heatmapLayout{left: longest*charWidth + 30, top: heatmapTop}
	gridRight := l.left + len(g.Cols)*cellWidth
	l.barLeft = gridRight + colorBarGap
	l.width = gridRight + colorBarSpace
	l.height = l.top + len(g.Rows)*cellHeight + heatmapBottom
	return l
}

func (l heatmapLayout) cell(i, j int) (x0, y0, x1, y1 int) {
	x0 = l.left + j*cellWidth
	y0 = l.top + i*cellHeight
	return x0, y0, x0 + cellWidth, y0 + cellHeight
}

// RenderCorrelationHeatmap draws r for every feature × metric cell on a
// diverging scale centred at zero, annotated with the value.
func RenderCorrelationHeatmap(tbl *models.CorrelationTable) (*Figure, error) {
	if tbl == nil {
		return nil, ErrNoData
	}
	g, err := Pivot(tbl.Records)
	if err != nil {
		return nil, err
	}
	layout := newHeatmapLayout(g)
	limit := g.Limit()

	r, err := chart.PNG(layout.width, layout.height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}
	r.SetFont(font)

	fillRect(r, 0, 0, layout.width, layout.height, drawing.ColorWhite)

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(14)
	title := r.MeasureText(heatmapTitle)
	r.Text(heatmapTitle, (layout.width-title.Width())/2, layout.top/2)

	r.SetFontSize(10)
	for i, row := range g.Values {
		for j, v := range row {
			x0, y0, x1, y1 := layout.cell(i, j)
			if math.IsNaN(v) {
				continue
			}
			bg := coolwarmAt((v + limit) / (2 * limit))
			fillRect(r, x0, y0, x1, y1, bg)

			label := fmt.Sprintf("%.2f", v)
			box := r.MeasureText(label)
			r.SetFontColor(textColorOn(bg))
			r.Text(label, x0+(cellWidth-box.Width())/2, y0+(cellHeight+box.Height())/2)
		}
	}

	r.SetFontColor(drawing.ColorBlack)
	for i, label := range g.Rows {
		_, y0, _, _ := layout.cell(i, 0)
		box := r.MeasureText(label)
		r.Text(label, layout.left-box.Width()-8, y0+(cellHeight+box.Height())/2)
	}
	for j, label := range g.Cols {
		x0, _, _, _ := layout.cell(len(g.Rows)-1, j)
		box := r.MeasureText(label)
		r.Text(label, x0+(cellWidth-box.Width())/2, layout.top+len(g.Rows)*cellHeight+box.Height()+10)
	}

	drawColorBar(r, layout, len(g.Rows)*cellHeight, limit)

	buffer := bytes.NewBuffer(nil)
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return &Figure{Name: "correlation_heatmap", Width: layout.width, Height: layout.height, PNG: buffer.Bytes()}, nil
}

func drawColorBar(r chart.Renderer, l heatmapLayout, height int, limit float64) {
	for y := 0; y < height; y++ {
		t := 1 - float64(y)/float64(height-1)
		fillRect(r, l.barLeft, l.top+y, l.barLeft+colorBarWidth, l.top+y+1, coolwarmAt(t))
	}

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(9)
	for _, v := range []float64{limit, 0, -limit} {
		y := l.top + int(math.Round((limit-v)/(2*limit)*float64(height-1)))
		label := fmt.Sprintf("%.2f", v)
		box := r.MeasureText(label)
		r.Text(label, l.barLeft+colorBarWidth+4, y+box.Height()/2)
	}

	r.SetFontSize(10)
	box := r.MeasureText(colorBarName)
	r.SetTextRotation(3 * math.Pi / 2)
	r.Text(colorBarName, l.barLeft+colorBarWidth+56, l.top+(height+box.Width())/2)
	r.ClearTextRotation()
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeWidth(0)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}
