package metrics

import (
	"math"
	"sort"
)

// KthNearestDistances computes, for every query row, the Euclidean distance
// to its k-th nearest reference row. k is clamped to the reference size.
// Returns nil when either matrix is empty.
func KthNearestDistances(reference, queries [][]float64, k int) []float64 {
	if len(reference) == 0 || len(queries) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > len(reference) {
		k = len(reference)
	}

	out := make([]float64, len(queries))
	dists := make([]float64, len(reference))
	for qi, q := range queries {
		for ri, r := range reference {
			dists[ri] = euclidean(q, r)
		}
		sort.Float64s(dists)
		out[qi] = dists[k-1]
	}
	return out
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
