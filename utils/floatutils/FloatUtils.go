// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// AllFinite returns whether no value is NaN or ±Inf
func AllFinite(values ...float64) bool {
	if floats.HasNaN(values) {
		return false
	}
	for _, val := range values {
		if math.IsInf(val, 0) {
			return false
		}
	}
	return true
}
