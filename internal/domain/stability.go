package domain

import "math"

// StabilityClass is a Pasquill-Gifford atmospheric stability class.
type StabilityClass string

const (
	StabilityA StabilityClass = "A"
	StabilityB StabilityClass = "B"
	StabilityC StabilityClass = "C"
	StabilityD StabilityClass = "D"
	StabilityE StabilityClass = "E"
	StabilityF StabilityClass = "F"
)

// StabilityClasses lists every class from most unstable to most stable.
var StabilityClasses = []StabilityClass{StabilityA, StabilityB, StabilityC, StabilityD, StabilityE, StabilityF}

// Classify selects the stability class for a weather snapshot. It is total:
// nil weather, a missing wind speed, or a NaN wind speed all yield D.
func Classify(w *WeatherObservation) StabilityClass {
	if w == nil || w.WindSpeed == nil || math.IsNaN(*w.WindSpeed) {
		return StabilityD
	}

	u := *w.WindSpeed
	switch {
	case u < 2:
		if w.Temperature > 25 {
			return StabilityA
		}
		return StabilityB
	case u < 5:
		return StabilityC
	case u < 8:
		return StabilityD
	case u < 10:
		return StabilityE
	default:
		return StabilityF
	}
}
