package transport

import (
	"math"
)

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
