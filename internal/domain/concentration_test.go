package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcentration_PeaksOnAxis(t *testing.T) {
	onAxis := Concentration(10, 3, 1000, 0, StabilityC)
	assert.Positive(t, onAxis)

	prev := onAxis
	for y := 10.0; y <= 500; y += 10 {
		c := Concentration(10, 3, 1000, y, StabilityC)
		assert.Less(t, c, prev, "y=%v", y)
		prev = c
	}
}

func TestConcentration_SymmetricInCrosswind(t *testing.T) {
	for _, y := range []float64{1, 50, 137.5, 400} {
		assert.Equal(t,
			Concentration(5, 4, 2000, y, StabilityD),
			Concentration(5, 4, 2000, -y, StabilityD))
	}
}

func TestConcentration_DecreasesWithWindSpeed(t *testing.T) {
	prev := math.Inf(1)
	for _, u := range []float64{0.5, 1, 2, 5, 10, 20} {
		c := Concentration(10, u, 1500, 30, StabilityB)
		assert.Less(t, c, prev, "u=%v", u)
		prev = c
	}
}

func TestConcentration_Guards(t *testing.T) {
	tests := []struct {
		name       string
		q, u, x, y float64
	}{
		{"at the source", 10, 3, 0, 0},
		{"upwind", 10, 3, -500, 0},
		{"calm", 10, 0, 1000, 0},
		{"negative wind", 10, -1, 1000, 0},
		{"NaN distance", 10, 3, math.NaN(), 0},
		{"far off axis underflows", 10, 3, 10, 1e6},
		{"negative emission", -5, 3, 1000, 0},
		{"overflowing emission", 1e308, 1e-300, 1000, 0},
		{"subnormal wind", 1, 5e-324, 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Concentration(tt.q, tt.u, tt.x, tt.y, StabilityA)
			assert.Zero(t, c)
			assert.False(t, math.IsNaN(c))
			assert.False(t, math.IsInf(c, 0))
		})
	}
}

func TestConcentration_KnownValue(t *testing.T) {
	sy := SigmaY(1000, StabilityD)
	want := 1 / (2 * math.Sqrt(2*math.Pi) * sy)
	assert.InDelta(t, want, Concentration(1, 2, 1000, 0, StabilityD), 1e-15)
}
