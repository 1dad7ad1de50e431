package models

import "math"

// GroupSummary describes one group of a Kruskal–Wallis run.
type GroupSummary struct {
	Label    string
	N        int
	Median   float64
	MeanRank float64
}

// DunnMatrix holds Bonferroni-adjusted Dunn p-values; P[i][j] compares Groups[i] and Groups[j].
type DunnMatrix struct {
	Groups []string
	P      [][]float64
}

// Get returns the adjusted p-value for two group labels.
func (d DunnMatrix) Get(a, b string) (float64, bool) {
	i, j := d.index(a), d.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return d.P[i][j], true
}

func (d DunnMatrix) index(label string) int {
	for i, g := range d.Groups {
		if g == label {
			return i
		}
	}
	return -1
}

type GroupTestResult struct {
	Metric      string
	GroupColumn string
	H           float64
	P           float64
	DF          int
	N           int
	Groups      []GroupSummary
	Dunn        DunnMatrix
}

// Significant reports whether the omnibus p-value is below alpha.
func (r *GroupTestResult) Significant(alpha float64) bool {
	return r.P < alpha
}

type CorrelationRecord struct {
	Feature string
	Metric  string
	R       float64
	P       float64
	N       int
}

// SkippedPair is a (feature, metric) combination with too few paired observations.
type SkippedPair struct {
	Feature string
	Metric  string
	N       int
}

type CorrelationTable struct {
	Records []CorrelationRecord
	Skipped []SkippedPair
}
