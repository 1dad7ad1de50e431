package plot

import (
	"math"
	"sort"
)

// BoxStats holds the five numbers of a Tukey box plus the points beyond the whiskers.
type BoxStats struct {
	Q1, Median, Q3 float64
	LowWhisker     float64
	HighWhisker    float64
	Outliers       []float64
}

// calculateQuantile вычисляет квантиль заданного уровня линейной интерполяцией
func calculateQuantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}

	pos := p * float64(len(sorted)-1)
	floor := math.Floor(pos)
	ceil := math.Ceil(pos)
	if floor == ceil {
		return sorted[int(pos)]
	}

	lower := sorted[int(floor)]
	upper := sorted[int(ceil)]
	return lower + (pos-floor)*(upper-lower)
}

// findOutliers находит выбросы на основе межквартильного размаха
func findOutliers(sorted []float64, q1, q3, iqr float64) []float64 {
	outliers := make([]float64, 0)
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr
	for _, num := range sorted {
		if num < lowerBound || num > upperBound {
			outliers = append(outliers, num)
		}
	}
	return outliers
}

// ComputeBox returns nil for an empty sample. Whiskers reach the most extreme
// observations still inside 1.5 IQR of the quartiles.
func ComputeBox(values []float64) *BoxStats {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := calculateQuantile(sorted, 0.25)
	q3 := calculateQuantile(sorted, 0.75)
	iqr := q3 - q1
	box := &BoxStats{
		Q1:          q1,
		Median:      calculateQuantile(sorted, 0.5),
		Q3:          q3,
		LowWhisker:  q1,
		HighWhisker: q3,
		Outliers:    findOutliers(sorted, q1, q3, iqr),
	}
	lowerBound, upperBound := q1-1.5*iqr, q3+1.5*iqr
	for _, v := range sorted {
		if v >= lowerBound {
			box.LowWhisker = math.Min(v, q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= upperBound {
			box.HighWhisker = math.Max(sorted[i], q3)
			break
		}
	}
	return box
}
