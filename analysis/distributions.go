package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// chiSquareSurvival is P(X ≥ x) for a χ² distribution with df degrees of freedom.
func chiSquareSurvival(x float64, df int) float64 {
	if df <= 0 || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	return clampProbability(distuv.ChiSquared{K: float64(df)}.Survival(x))
}

// normalTwoSided is the two-sided p-value of a standard normal z score.
func normalTwoSided(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	return clampProbability(2 * distuv.UnitNormal.Survival(math.Abs(z)))
}

// correlationPValue transforms r to a t statistic with n-2 degrees of freedom.
func correlationPValue(r float64, n int) float64 {
	if math.IsNaN(r) || n < 3 {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clampProbability(2 * tDist.Survival(math.Abs(t)))
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return p
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
