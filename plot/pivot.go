package plot

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pivolan/hrv_tda_stats/domain/models"
)

// ErrDuplicatePair is returned when one (feature, metric) pair appears twice.
var ErrDuplicatePair = errors.New("duplicate feature/metric pair")

// Grid is correlation records reshaped into features × metrics. Absent cells are NaN.
type Grid struct {
	Rows   []string
	Cols   []string
	Values [][]float64
}

// Pivot reshapes records into a Grid with sorted row and column labels.
func Pivot(records []models.CorrelationRecord) (*Grid, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}
	rowSet := make(map[string]bool)
	colSet := make(map[string]bool)
	seen := make(map[[2]string]bool, len(records))
	for _, rec := range records {
		key := [2]string{rec.Feature, rec.Metric}
		if seen[key] {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicatePair, rec.Feature, rec.Metric)
		}
		seen[key] = true
		rowSet[rec.Feature] = true
		colSet[rec.Metric] = true
	}

	g := &Grid{Rows: sortedKeys(rowSet), Cols: sortedKeys(colSet)}
	rowIndex := indexOf(g.Rows)
	colIndex := indexOf(g.Cols)
	g.Values = make([][]float64, len(g.Rows))
	for i := range g.Values {
		g.Values[i] = make([]float64, len(g.Cols))
		for j := range g.Values[i] {
			g.Values[i][j] = math.NaN()
		}
	}
	for _, rec := range records {
		g.Values[rowIndex[rec.Feature]][colIndex[rec.Metric]] = rec.R
	}
	return g, nil
}

// Limit is the largest finite |r| in the grid, the half-width of a colour scale centred at 0.
func (g *Grid) Limit() float64 {
	limit := 0.0
	for _, row := range g.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				limit = math.Max(limit, math.Abs(v))
			}
		}
	}
	if limit == 0 {
		return 1
	}
	return limit
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(labels []string) map[string]int {
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	return index
}
