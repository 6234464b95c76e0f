package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Pearson computes the Pearson correlation of two equal-length numeric
// columns using pairwise-complete observations: rows where either value is
// NaN are dropped before the correlation is taken. Returns NaN when fewer
// than two complete pairs remain or when either side is constant.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}

	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	return stat.Correlation(xs, ys, nil)
}
