package analysis

import "sort"

// averageRanks converts values to 1-based ranks, ties share the mean of their positions.
// tieTerm is Σ(t³ − t) over all tie groups.
func averageRanks(data []float64) (ranks []float64, tieTerm float64) {
	n := len(data)
	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks = make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		if groupSize > 1 {
			t := float64(groupSize)
			tieTerm += t*t*t - t
		}
		i = j
	}
	return ranks, tieTerm
}
