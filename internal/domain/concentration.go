package domain

import "math"

// Concentration estimates the ground-level Gaussian plume concentration for an
// emission rate q and wind speed u at downwind distance x and crosswind offset
// y. Upwind points, calm or negative wind, zero spread and results that do not
// fit in a float64 return 0.
func Concentration(q, u, downwind, crosswind float64, class StabilityClass) float64 {
	if !(downwind > 0) || !(u > 0) {
		return 0
	}
	sy := SigmaY(downwind, class)
	if sy <= 0 {
		return 0
	}

	c := q / (u * math.Sqrt(2*math.Pi) * sy) * math.Exp(-(crosswind*crosswind)/(2*sy*sy))
	if !(c > 0) || math.IsInf(c, 1) {
		return 0
	}
	return c
}
