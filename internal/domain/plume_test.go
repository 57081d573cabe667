package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	houstonLat = 29.76
	houstonLon = -95.37
)

func houstonSource() *ReleaseSource {
	return &ReleaseSource{Latitude: houstonLat, Longitude: houstonLon, EmissionRate: 10, Kind: SourceGas}
}

func easterly(speed float64) *WeatherObservation {
	return &WeatherObservation{WindSpeed: ptr(speed), WindDirection: ptr(90), Temperature: 20}
}

func TestGaussianBuilder_ClosedRing(t *testing.T) {
	builders := map[string]PlumeBuilder{
		"gaussian": NewGaussianBuilder(0, 0),
		"wedge":    WedgeBuilder{},
	}
	for name, b := range builders {
		t.Run(name, func(t *testing.T) {
			for _, speed := range []float64{0.5, 3, 6, 9, 15} {
				p := b.BuildPlume(houstonSource(), easterly(speed), 4000)
				require.NotNil(t, p)
				require.GreaterOrEqual(t, len(p.Ring), 4)
				assert.Equal(t, p.Ring[0], p.Ring[len(p.Ring)-1])
				assert.Positive(t, p.AreaSquareMeters())
			}
		})
	}
}

func TestGaussianBuilder_RingLayout(t *testing.T) {
	b := NewGaussianBuilder(10, 3)
	p := b.BuildPlume(houstonSource(), easterly(3), 2000)
	require.NotNil(t, p)

	assert.Len(t, p.Ring, 2*10+2)
	assert.Equal(t, houstonLon, p.Ring[0].X)
	assert.Equal(t, houstonLat, p.Ring[0].Y)
	assert.Equal(t, StabilityC, p.Stability)
	assert.InDelta(t, 270, p.AxisBearing, 1e-9)
	assert.Equal(t, 2000.0, p.LengthMeters)
}

func TestGaussianBuilder_ExtendsDownwind(t *testing.T) {
	p := NewGaussianBuilder(20, 3).BuildPlume(houstonSource(), easterly(3), 4000)
	require.NotNil(t, p)

	// Easterly wind carries the plume west.
	for _, pt := range p.Ring[1 : len(p.Ring)-1] {
		assert.Less(t, pt.X, houstonLon)
	}
}

func TestGaussianBuilder_WidthGrowsAlongAxis(t *testing.T) {
	n := 20
	p := NewGaussianBuilder(n, 3).BuildPlume(houstonSource(), &WeatherObservation{WindSpeed: ptr(3), WindDirection: ptr(180)}, 4000)
	require.NotNil(t, p)

	frame := newLocalFrame(houstonLat, houstonLon)
	prevHalf := 0.0
	for i := 1; i <= n; i++ {
		left := p.Ring[i]
		right := p.Ring[2*n+1-i]
		le, ln := frame.project(left.Y, left.X)
		re, rn := frame.project(right.Y, right.X)
		leftAlong, leftCross := axisComponents(le, ln, p.AxisBearing)
		rightAlong, rightCross := axisComponents(re, rn, p.AxisBearing)

		assert.InDelta(t, leftAlong, rightAlong, 1e-6)
		assert.Negative(t, leftCross)
		assert.Positive(t, rightCross)
		assert.InDelta(t, -leftCross, rightCross, 1e-6)
		assert.Greater(t, rightCross, prevHalf)
		prevHalf = rightCross
	}
	assert.InDelta(t, SigmaY(4000, StabilityC)*3/2, prevHalf, 1e-6)
}

func TestBuildPlume_MissingInputs(t *testing.T) {
	builders := []PlumeBuilder{NewGaussianBuilder(0, 0), WedgeBuilder{}}
	for _, b := range builders {
		assert.Nil(t, b.BuildPlume(nil, easterly(3), 4000))
		assert.Nil(t, b.BuildPlume(houstonSource(), nil, 4000))
		assert.Nil(t, b.BuildPlume(houstonSource(), &WeatherObservation{WindSpeed: ptr(3)}, 4000))
	}
}

func TestBuildPlume_DefaultLength(t *testing.T) {
	p := NewGaussianBuilder(0, 0).BuildPlume(houstonSource(), easterly(3), 0)
	require.NotNil(t, p)
	assert.Equal(t, DefaultPlumeLengthMeters, p.LengthMeters)
}

func TestBuildPlume_MissingWindSpeedUsesD(t *testing.T) {
	p := NewGaussianBuilder(0, 0).BuildPlume(houstonSource(), &WeatherObservation{WindDirection: ptr(0)}, 1000)
	require.NotNil(t, p)
	assert.Equal(t, StabilityD, p.Stability)
}

func TestWedgeBuilder_HalfAngle(t *testing.T) {
	p := WedgeBuilder{ArcSamples: 8}.BuildPlume(houstonSource(), &WeatherObservation{WindSpeed: ptr(6), WindDirection: ptr(180)}, 3000)
	require.NotNil(t, p)
	assert.Len(t, p.Ring, 8+3)
	assert.Equal(t, StabilityD, p.Stability)

	frame := newLocalFrame(houstonLat, houstonLon)
	first := p.Ring[1]
	e, n := frame.project(first.Y, first.X)
	along, cross := axisComponents(e, n, p.AxisBearing)
	assert.InDelta(t, 3000*0.9659258, along, 1e-3) // cos 15°
	assert.InDelta(t, -3000*0.2588190, cross, 1e-3)
}

func TestWedgeHalfAngle(t *testing.T) {
	assert.Equal(t, 30.0, WedgeHalfAngle(StabilityA))
	assert.Equal(t, 7.5, WedgeHalfAngle(StabilityF))
	assert.Equal(t, 15.0, WedgeHalfAngle(StabilityClass("")))
}

func TestPlume_Contains(t *testing.T) {
	p := NewGaussianBuilder(20, 3).BuildPlume(houstonSource(), easterly(3), 4000)
	require.NotNil(t, p)
	frame := newLocalFrame(houstonLat, houstonLon)

	west := frame.toPoint(-1000, 0)
	east := frame.toPoint(1000, 0)
	north := frame.toPoint(0, 800)

	assert.True(t, p.Contains(west.Y, west.X))
	assert.True(t, p.Contains(houstonLat, houstonLon), "source vertex is on the boundary")
	assert.False(t, p.Contains(east.Y, east.X))
	assert.False(t, p.Contains(north.Y, north.X))
}

func TestPlume_GeoJSONRoundTrip(t *testing.T) {
	p := NewGaussianBuilder(12, 3).BuildPlume(houstonSource(), easterly(4), 2500)
	require.NotNil(t, p)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var doc struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Polygon", doc.Type)
	require.Len(t, doc.Coordinates, 1)
	assert.Equal(t, []float64{houstonLon, houstonLat}, doc.Coordinates[0][0])

	var decoded Plume
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p.Ring, decoded.Ring)
}

func TestPlume_UnmarshalRejectsOtherGeometry(t *testing.T) {
	var p Plume
	err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[1,2]}`), &p)
	assert.Error(t, err)
}

func TestNewPlumeBuilder(t *testing.T) {
	b, err := NewPlumeBuilder(GeometryGaussian, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, GaussianBuilder{Samples: 10, WidthMultiplier: 2}, b)

	b, err = NewPlumeBuilder("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, NewGaussianBuilder(DefaultPlumeSamples, DefaultWidthMultiplier), b)

	b, err = NewPlumeBuilder(GeometryWedge, 0, 0)
	require.NoError(t, err)
	assert.IsType(t, WedgeBuilder{}, b)

	_, err = NewPlumeBuilder("cone", 0, 0)
	assert.Error(t, err)
}

// weatherForClass returns a snapshot that classifies as class.
func weatherForClass(class StabilityClass, direction float64) *WeatherObservation {
	w := &WeatherObservation{WindDirection: ptr(direction), Temperature: 20}
	switch class {
	case StabilityA:
		w.WindSpeed, w.Temperature = ptr(1), 30
	case StabilityB:
		w.WindSpeed = ptr(1)
	case StabilityC:
		w.WindSpeed = ptr(3)
	case StabilityD:
		w.WindSpeed = ptr(6)
	case StabilityE:
		w.WindSpeed = ptr(9)
	default:
		w.WindSpeed = ptr(12)
	}
	return w
}

func TestBuildPlume_RingIsSimple(t *testing.T) {
	builders := map[string]PlumeBuilder{
		"gaussian min samples": NewGaussianBuilder(2, 3),
		"gaussian default":     NewGaussianBuilder(0, 0),
		"gaussian max samples": NewGaussianBuilder(200, 3),
		"gaussian wide":        NewGaussianBuilder(20, 6),
		"wedge":                WedgeBuilder{},
		"wedge coarse arc":     WedgeBuilder{ArcSamples: 1},
	}
	for name, b := range builders {
		for _, class := range StabilityClasses {
			for _, dir := range []float64{0, 45, 90, 222.5, 359} {
				p := b.BuildPlume(houstonSource(), weatherForClass(class, dir), 4000)
				require.NotNil(t, p)
				require.Equal(t, class, p.Stability)
				assertSimpleRing(t, p, fmt.Sprintf("%s class=%s dir=%v", name, class, dir))
			}
		}
	}
}

// assertSimpleRing fails when any two non-adjacent ring edges touch or cross.
func assertSimpleRing(t *testing.T, p *Plume, label string) {
	t.Helper()
	frame := newLocalFrame(p.Ring[0].Y, p.Ring[0].X)
	pts := make([][2]float64, len(p.Ring))
	for i, pt := range p.Ring {
		e, n := frame.project(pt.Y, pt.X)
		pts[i] = [2]float64{e, n}
	}

	edges := len(pts) - 1
	for i := 0; i < edges; i++ {
		for j := i + 2; j < edges; j++ {
			if i == 0 && j == edges-1 {
				continue // both touch the closing vertex
			}
			if segmentsIntersect(pts[i], pts[i+1], pts[j], pts[j+1]) {
				assert.Failf(t, "ring edges intersect", "%s: edges %d and %d", label, i, j)
				return
			}
		}
	}
}

func segmentsIntersect(p1, p2, q1, q2 [2]float64) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func orientation(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, c [2]float64) bool {
	return math.Min(a[0], b[0]) <= c[0] && c[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= c[1] && c[1] <= math.Max(a[1], b[1])
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, segmentsIntersect([2]float64{0, 0}, [2]float64{2, 2}, [2]float64{0, 2}, [2]float64{2, 0}))
	assert.True(t, segmentsIntersect([2]float64{0, 0}, [2]float64{2, 0}, [2]float64{1, 0}, [2]float64{1, 5}))
	assert.False(t, segmentsIntersect([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1}, [2]float64{1, 1}))
}

func TestBuildPlume_LengthIsCapped(t *testing.T) {
	for _, b := range []PlumeBuilder{NewGaussianBuilder(0, 0), WedgeBuilder{}} {
		p := b.BuildPlume(houstonSource(), easterly(3), 1e200)
		require.NotNil(t, p)
		assert.Equal(t, MaxPlumeLengthMeters, p.LengthMeters)
		area := p.AreaSquareMeters()
		assert.Positive(t, area)
		assert.False(t, math.IsInf(area, 0))
	}
}
