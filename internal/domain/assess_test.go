package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	t.Cleanup(func() { SetClock(nil) })
}

func scenarioRequest() ReleaseRequest {
	return ReleaseRequest{
		ID:       "rel-1",
		Revision: 2,
		Source:   houstonSource(),
		Weather:  easterly(3),
		Receptors: []Receptor{
			receptorAt("north", 0, 800),
			receptorAt("west", -1000, 0),
			receptorAt("far-west", -3000, 60),
		},
	}
}

func TestAssessor_Assess(t *testing.T) {
	freezeClock(t)
	a := NewAssessor(nil, 0, nil)

	got := a.Assess(scenarioRequest())

	require.NotNil(t, got.Plume)
	assert.Equal(t, "rel-1", got.RequestID)
	assert.Equal(t, int64(2), got.Revision)
	assert.Equal(t, AssessmentID("rel-1", 2), got.ID)
	assert.Equal(t, fixedTime, got.ProcessedAt)
	assert.Equal(t, DefaultPlumeLengthMeters, got.Plume.LengthMeters)

	require.Len(t, got.Impacts, 2)
	assert.Equal(t, "west", got.Impacts[0].ID)
	assert.Equal(t, "far-west", got.Impacts[1].ID)

	assert.Equal(t, StabilityC, got.Summary.Stability)
	assert.Equal(t, 2, got.Summary.ImpactedCount)
	assert.Equal(t, 10.0, got.Summary.EmissionRate)
	assert.Equal(t, got.Impacts[0].EstimatedConcentration, got.Summary.MaxConcentration)
	assert.InDelta(t, got.Plume.AreaSquareMeters(), got.Summary.PlumeAreaSquareMeters, 1e-9)
}

func TestAssessor_Deterministic(t *testing.T) {
	freezeClock(t)
	a := NewAssessor(NewGaussianBuilder(25, 3), 3500, nil)

	first := a.Assess(scenarioRequest())
	second := a.Assess(scenarioRequest())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("assessment mismatch (-first +second):\n%s", diff)
	}
}

func TestAssessor_MissingWindDirection(t *testing.T) {
	freezeClock(t)
	req := scenarioRequest()
	req.Weather = &WeatherObservation{WindSpeed: ptr(3), Temperature: 20}

	got := NewAssessor(nil, 0, nil).Assess(req)

	assert.Nil(t, got.Plume)
	assert.NotNil(t, got.Impacts)
	assert.Empty(t, got.Impacts)
	assert.Equal(t, StabilityC, got.Summary.Stability)
	assert.Zero(t, got.Summary.PlumeAreaSquareMeters)
}

func TestAssessor_MissingSource(t *testing.T) {
	got := NewAssessor(nil, 0, nil).Assess(ReleaseRequest{ID: "empty"})
	assert.Nil(t, got.Plume)
	assert.Empty(t, got.Impacts)
	assert.Equal(t, StabilityD, got.Summary.Stability)
	assert.Zero(t, got.Summary.EmissionRate)
}

func TestAssessor_RequestLengthOverridesDefault(t *testing.T) {
	req := scenarioRequest()
	req.PlumeLengthMeters = 1500

	got := NewAssessor(WedgeBuilder{}, 4000, nil).Assess(req)
	require.NotNil(t, got.Plume)
	assert.Equal(t, 1500.0, got.Plume.LengthMeters)
	require.Len(t, got.Impacts, 1)
	assert.Equal(t, "west", got.Impacts[0].ID)
}

func TestAssessor_DerivesEmissionRate(t *testing.T) {
	req := scenarioRequest()
	req.Source.EmissionRate = 0
	req.Release = &ReleaseScenario{Model: "tank"}

	got := NewAssessor(nil, 0, nil).Assess(req)
	assert.InDelta(t, TankDischargeRate(DefaultChemicalProperties()), got.Summary.EmissionRate, 1e-12)
	require.NotEmpty(t, got.Impacts)
	assert.Positive(t, got.Impacts[0].EstimatedConcentration)
}

func TestAssessmentID(t *testing.T) {
	assert.Equal(t, AssessmentID("a", 1), AssessmentID("a", 1))
	assert.NotEqual(t, AssessmentID("a", 1), AssessmentID("a", 2))
	assert.NotEqual(t, AssessmentID("a", 1), AssessmentID("b", 1))
	assert.Len(t, AssessmentID("a", 1), 36)
}

func TestAssessor_PlumeLength(t *testing.T) {
	a := NewAssessor(nil, 10000, nil)
	assert.Equal(t, 10000.0, a.PlumeLength(ReleaseRequest{}))
	assert.Equal(t, 1500.0, a.PlumeLength(ReleaseRequest{PlumeLengthMeters: 1500}))
	assert.Equal(t, MaxPlumeLengthMeters, a.PlumeLength(ReleaseRequest{PlumeLengthMeters: 1e200}))
	assert.Equal(t, DefaultPlumeLengthMeters, NewAssessor(nil, 0, nil).PlumeLength(ReleaseRequest{}))
}

func TestAssessor_ExtremeInputsStayFinite(t *testing.T) {
	req := scenarioRequest()
	req.Source.EmissionRate = 1e308
	req.Weather = &WeatherObservation{WindSpeed: ptr(5e-324), WindDirection: ptr(90), Temperature: 20}
	req.PlumeLengthMeters = 1e200

	got := NewAssessor(nil, 0, nil).Assess(req)
	require.NotNil(t, got.Plume)
	assert.Equal(t, MaxPlumeLengthMeters, got.Plume.LengthMeters)
	assert.False(t, math.IsInf(got.Summary.MaxConcentration, 0))
	assert.False(t, math.IsInf(got.Summary.PlumeAreaSquareMeters, 0))
	for _, imp := range got.Impacts {
		assert.False(t, math.IsInf(imp.EstimatedConcentration, 0), imp.ID)
	}

	_, err := json.Marshal(got)
	require.NoError(t, err)
}
