package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	// Обработка очень маленьких чисел
	if maxValue < 1e-10 {
		return 1e-10
	}

	// Находим порядок величины максимального значения
	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}
	finalStep := step * magnitude

	// Округляем большие шаги до "красивых" чисел
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}
	return finalStep
}

// valueBounds returns min and max over all finite values.
func valueBounds(groups [][]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		for _, v := range g {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi, !math.IsInf(lo, 1)
}

// axisTicks returns grid ticks covering [lo, hi] and the padded range they span.
func axisTicks(lo, hi float64) (ticks []chart.Tick, min, max float64) {
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}
	step := calculateGridStep(hi - lo)
	min = math.Floor(lo/step) * step
	max = math.Ceil(hi/step) * step
	for i := 0; ; i++ {
		v := min + float64(i)*step
		if v > max+step/2 {
			break
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v, step)})
	}
	return ticks, min, max
}

func formatTick(v, step float64) string {
	if math.Abs(v) < step/1e6 {
		v = 0
	}
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step)))
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// labelPadding estimates the pixels a rotated label row needs below the axis.
func labelPadding(labels []string) int {
	count := 0
	for _, label := range labels {
		if len(label) > count {
			count = len(label)
		}
	}
	return count*6 + 30
}
