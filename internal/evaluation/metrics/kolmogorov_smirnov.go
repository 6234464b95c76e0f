package metrics

import (
	"math"
	"sort"

	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/errors"
)

// TwoSampleKS computes the two-sample Kolmogorov-Smirnov statistic: the
// maximum absolute difference between the empirical CDFs of the two samples.
// The statistic lies in [0, 1]. It is undefined (an error) when either side
// has MinKSSamples or fewer observations.
func TwoSampleKS(sample1, sample2 []float64) (float64, error) {
	if len(sample1) <= constants.MinKSSamples || len(sample2) <= constants.MinKSSamples {
		return math.NaN(), errors.NewEvaluationError(errors.CodeInsufficientData,
			"Kolmogorov-Smirnov statistic requires more than 5 observations in each sample")
	}

	n1, n2 := len(sample1), len(sample2)
	sorted1 := make([]float64, n1)
	sorted2 := make([]float64, n2)
	copy(sorted1, sample1)
	copy(sorted2, sample2)
	sort.Float64s(sorted1)
	sort.Float64s(sorted2)

	// Walk both sorted samples, evaluating both empirical CDFs at every
	// observed point.
	var maxDiff float64
	i1, i2 := 0, 0
	for i1 < n1 || i2 < n2 {
		var x float64
		switch {
		case i1 >= n1:
			x = sorted2[i2]
		case i2 >= n2:
			x = sorted1[i1]
		default:
			x = math.Min(sorted1[i1], sorted2[i2])
		}

		for i1 < n1 && sorted1[i1] <= x {
			i1++
		}
		for i2 < n2 && sorted2[i2] <= x {
			i2++
		}

		cdf1 := float64(i1) / float64(n1)
		cdf2 := float64(i2) / float64(n2)
		if diff := math.Abs(cdf1 - cdf2); diff > maxDiff {
			maxDiff = diff
		}
	}

	return maxDiff, nil
}
