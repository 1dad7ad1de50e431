package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/montanaflynn/stats"
	"github.com/pivolan/hrv_tda_stats/dataset"
	"github.com/pivolan/hrv_tda_stats/domain/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrTooFewGroups       = errors.New("need at least two groups with observations")
	ErrAllValuesIdentical = errors.New("all values are identical")
)

// Console receives the human readable progress lines.
var Console io.Writer = os.Stdout

type partition struct {
	labels []string
	values [][]float64
}

// partitionByGroup drops rows with a missing label or value and keeps groups in order.
// Labels left without any value are dropped.
func partitionByGroup(values []float64, labels, order []string) partition {
	byLabel := map[string][]float64{}
	for i, label := range labels {
		if label == "" || math.IsNaN(values[i]) {
			continue
		}
		byLabel[label] = append(byLabel[label], values[i])
	}
	p := partition{labels: make([]string, 0, len(byLabel))}
	for _, label := range order {
		if g, ok := byLabel[label]; ok {
			p.labels = append(p.labels, label)
			p.values = append(p.values, g)
		}
	}
	return p
}

// CompareGroups runs a Kruskal–Wallis test of valueColumn across the groups of groupColumn,
// followed by Dunn's pairwise test with Bonferroni correction. The post-hoc matrix is always
// computed; interpreting significance is left to the caller.
func CompareGroups(t *dataset.Table, valueColumn, groupColumn string) (*models.GroupTestResult, error) {
	values, err := t.Numeric(valueColumn)
	if err != nil {
		return nil, fmt.Errorf("compare groups: %w", err)
	}
	labels, err := t.Labels(groupColumn)
	if err != nil {
		return nil, fmt.Errorf("compare groups: %w", err)
	}

	order, err := t.Groups(groupColumn)
	if err != nil {
		return nil, fmt.Errorf("compare groups: %w", err)
	}
	groups := partitionByGroup(values, labels, order)
	k := len(groups.labels)
	if k < 2 {
		return nil, fmt.Errorf("%s by %s: %w (found %d)", valueColumn, groupColumn, ErrTooFewGroups, k)
	}

	var pooled []float64
	for _, g := range groups.values {
		pooled = append(pooled, g...)
	}
	n := len(pooled)
	ranks, tieTerm := averageRanks(pooled)
	nf := float64(n)
	tieCorrection := 1 - tieTerm/(nf*nf*nf-nf)
	if tieCorrection <= 0 {
		return nil, fmt.Errorf("%s by %s: %w", valueColumn, groupColumn, ErrAllValuesIdentical)
	}

	summaries := make([]models.GroupSummary, k)
	meanRanks := make([]float64, k)
	sizes := make([]int, k)
	sumTerm := 0.0
	offset := 0
	for i, g := range groups.values {
		rankSum := 0.0
		for _, r := range ranks[offset : offset+len(g)] {
			rankSum += r
		}
		offset += len(g)
		sizes[i] = len(g)
		meanRanks[i] = rankSum / float64(len(g))
		sumTerm += rankSum * rankSum / float64(len(g))

		median, _ := stats.Median(g)
		summaries[i] = models.GroupSummary{
			Label:    groups.labels[i],
			N:        len(g),
			Median:   median,
			MeanRank: meanRanks[i],
		}
	}

	h := (12/(nf*(nf+1))*sumTerm - 3*(nf+1)) / tieCorrection
	result := &models.GroupTestResult{
		Metric:      valueColumn,
		GroupColumn: groupColumn,
		H:           h,
		P:           chiSquareSurvival(h, k-1),
		DF:          k - 1,
		N:           n,
		Groups:      summaries,
		Dunn:        dunnBonferroni(groups.labels, meanRanks, sizes, n, tieTerm),
	}

	fmt.Fprintf(Console, "\n📊 %s: Kruskal–Wallis H=%.3f, p=%.5f\n", valueColumn, result.H, result.P)
	logrus.WithFields(logrus.Fields{
		"metric": valueColumn,
		"groups": k,
		"n":      n,
	}).Debug("kruskal-wallis done")
	return result, nil
}

// dunnBonferroni computes Dunn's z for every pair of groups from their mean ranks and
// multiplies the two-sided p-values by the number of comparisons, capped at 1.
func dunnBonferroni(labels []string, meanRanks []float64, sizes []int, n int, tieTerm float64) models.DunnMatrix {
	k := len(labels)
	nf := float64(n)
	ties := 0.0
	if tieTerm > 0 {
		ties = tieTerm / (12 * (nf - 1))
	}
	a := nf * (nf + 1) / 12
	comparisons := float64(k * (k - 1) / 2)

	p := make([][]float64, k)
	for i := range p {
		p[i] = make([]float64, k)
		p[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			diff := math.Abs(meanRanks[i] - meanRanks[j])
			b := 1/float64(sizes[i]) + 1/float64(sizes[j])
			z := diff / math.Sqrt((a-ties)*b)
			adjusted := math.Min(1, normalTwoSided(z)*comparisons)
			p[i][j] = adjusted
			p[j][i] = adjusted
		}
	}

	groups := make([]string, k)
	copy(groups, labels)
	return models.DunnMatrix{Groups: groups, P: p}
}
