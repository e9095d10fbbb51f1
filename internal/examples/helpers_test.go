package examples

import "math"

func mathCos(x float64) float32 {
	return float32(math.Cos(x))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
