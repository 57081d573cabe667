package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigmaY_ZeroAtSource(t *testing.T) {
	for _, c := range StabilityClasses {
		assert.Zero(t, SigmaY(0, c), "class %s", c)
	}
}

func TestSigmaY_NegativeAndNaNClampToZero(t *testing.T) {
	assert.Zero(t, SigmaY(-100, StabilityA))
	assert.Zero(t, SigmaY(math.NaN(), StabilityA))
}

func TestSigmaY_DecreasesWithStability(t *testing.T) {
	for _, d := range []float64{1, 250, 1000, 4000, 20000} {
		for i := 1; i < len(StabilityClasses); i++ {
			prev, cur := StabilityClasses[i-1], StabilityClasses[i]
			assert.Greater(t, SigmaY(d, prev), SigmaY(d, cur), "d=%v %s vs %s", d, prev, cur)
		}
	}
}

func TestSigmaY_NonDecreasingWithDistance(t *testing.T) {
	for _, c := range StabilityClasses {
		prev := 0.0
		for d := 100.0; d <= 50000; d += 100 {
			s := SigmaY(d, c)
			assert.GreaterOrEqual(t, s, prev, "class %s at %v m", c, d)
			prev = s
		}
	}
}

func TestSigmaY_KnownValue(t *testing.T) {
	// C at 1 km: 0.11 * 1 * (1.0001)^-0.5 * 1000
	assert.InDelta(t, 109.9945, SigmaY(1000, StabilityC), 1e-3)
}

func TestSigmaY_UnknownClassFallsBackToD(t *testing.T) {
	assert.Equal(t, SigmaY(1500, StabilityD), SigmaY(1500, StabilityClass("Z")))
}

func TestSigmaY_UnstableVersusStable(t *testing.T) {
	unstable := Classify(&WeatherObservation{WindSpeed: ptr(0.5), Temperature: 30})
	stable := Classify(&WeatherObservation{WindSpeed: ptr(12), Temperature: 30})
	assert.Equal(t, StabilityA, unstable)
	assert.Equal(t, StabilityF, stable)

	ratio := SigmaY(1000, unstable) / SigmaY(1000, stable)
	assert.InDelta(t, 0.22/0.04, ratio, 1e-9)
}
