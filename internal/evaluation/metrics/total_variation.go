package metrics

import "math"

// TotalVariation computes the total variation distance between two discrete
// probability distributions: half the sum of absolute probability
// differences over the union of their supports. A category absent from one
// distribution carries probability 0 there. The result is symmetric and lies
// in [0, 1] for normalized inputs.
func TotalVariation(p, q map[string]float64) float64 {
	sum := 0.0
	for v, pv := range p {
		sum += math.Abs(pv - q[v])
	}
	for v, qv := range q {
		if _, seen := p[v]; !seen {
			sum += math.Abs(qv)
		}
	}
	return 0.5 * sum
}
