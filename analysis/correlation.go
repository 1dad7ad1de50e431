package analysis

import (
	"fmt"
	"math"

	"github.com/pivolan/hrv_tda_stats/dataset"
	"github.com/pivolan/hrv_tda_stats/domain/models"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// MinPairedObservations is the smallest number of jointly present rows a pair needs.
const MinPairedObservations = 5

// ComputeCorrelations computes Pearson r and its two-sided p-value for every
// (feature, metric) pair, feature-outer and metric-inner in the order given.
// Pairs with fewer than MinPairedObservations complete rows produce no record
// and are listed in Skipped instead.
func ComputeCorrelations(t *dataset.Table, features, metrics []string) (*models.CorrelationTable, error) {
	columns := map[string][]float64{}
	for _, name := range append(append([]string{}, features...), metrics...) {
		if _, ok := columns[name]; ok {
			continue
		}
		values, err := t.Numeric(name)
		if err != nil {
			return nil, fmt.Errorf("correlations: %w", err)
		}
		columns[name] = values
	}

	table := &models.CorrelationTable{}
	for _, feature := range features {
		for _, metric := range metrics {
			x, y := pairwiseComplete(columns[feature], columns[metric])
			if len(x) < MinPairedObservations {
				table.Skipped = append(table.Skipped, models.SkippedPair{Feature: feature, Metric: metric, N: len(x)})
				logrus.WithFields(logrus.Fields{
					"feature": feature,
					"metric":  metric,
					"n":       len(x),
				}).Debug("pair skipped, not enough paired observations")
				continue
			}
			r := pearson(x, y)
			table.Records = append(table.Records, models.CorrelationRecord{
				Feature: feature,
				Metric:  metric,
				R:       r,
				P:       correlationPValue(r, len(x)),
				N:       len(x),
			})
		}
	}

	fmt.Fprintln(Console, "\n✅ Correlation analysis completed.")
	return table, nil
}

// pairwiseComplete keeps the rows where both columns hold a value.
func pairwiseComplete(a, b []float64) (x, y []float64) {
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}

// pearson returns NaN when either side is constant.
func pearson(x, y []float64) float64 {
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	return math.Max(-1, math.Min(1, r))
}
