package domain

import "math"

// spreadCoefficients are the lateral dispersion coefficients per class.
var spreadCoefficients = map[StabilityClass]float64{
	StabilityA: 0.22,
	StabilityB: 0.16,
	StabilityC: 0.11,
	StabilityD: 0.08,
	StabilityE: 0.06,
	StabilityF: 0.04,
}

// SigmaY returns the lateral dispersion parameter in meters at the given
// downwind distance. Negative or NaN distances clamp to 0. Unknown classes use
// the D coefficient.
//
// The damping term (1 + 0.0001 xKm)^-0.5 stays above 0.997 out to 50 km, so
// sigma-y grows monotonically with distance across the practical domain.
func SigmaY(distanceMeters float64, class StabilityClass) float64 {
	if !(distanceMeters > 0) {
		return 0
	}
	coefficient, ok := spreadCoefficients[class]
	if !ok {
		coefficient = spreadCoefficients[StabilityD]
	}
	xKm := distanceMeters / 1000
	return coefficient * xKm * math.Pow(1+0.0001*xKm, -0.5) * 1000
}
