package utils

import "gonum.org/v1/gonum/floats"

// Utilization returns sum(used)/sum(capacity), zero when there is no capacity.
func Utilization(used, capacity []float64) float64 {
	total := floats.Sum(capacity)
	if total <= 0 {
		return 0
	}

	return floats.Sum(used) / total
}
