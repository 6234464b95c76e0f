package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Median returns the median of data, or NaN when data is empty.
func Median(data []float64) float64 {
	m, err := stats.Median(data)
	if err != nil {
		return math.NaN()
	}
	return m
}

// Percentile returns the p-th percentile of data, or NaN when data is empty.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 1 {
		return data[0]
	}
	v, err := stats.Percentile(data, p)
	if err != nil {
		return math.NaN()
	}
	return v
}
