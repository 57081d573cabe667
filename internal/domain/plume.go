package domain

import (
	"encoding/json"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// Plume geometry defaults.
const (
	DefaultPlumeLengthMeters = 4000.0
	MaxPlumeLengthMeters     = 100000.0
	DefaultPlumeSamples      = 20
	DefaultWidthMultiplier   = 3.0
	DefaultWedgeArcSamples   = 16
)

// Plume is a closed downwind hazard ring in (lon, lat) order: X is longitude,
// Y is latitude, and the first point equals the last.
type Plume struct {
	Ring         []geom.Point
	Stability    StabilityClass
	AxisBearing  float64 // degrees the plume travels toward
	LengthMeters float64
}

// Plume geometry strategy names.
const (
	GeometryGaussian = "gaussian"
	GeometryWedge    = "wedge"
)

// PlumeBuilder is a plume geometry strategy. Implementations return nil when
// the source, the weather, or the wind direction is missing.
type PlumeBuilder interface {
	BuildPlume(source *ReleaseSource, weather *WeatherObservation, lengthMeters float64) *Plume
}

// Polygon returns the plume as a single-ring polygon.
func (p *Plume) Polygon() geom.Polygon {
	return geom.Polygon{p.Ring}
}

// Contains reports whether a location lies inside the plume. Points on the
// boundary, including the source vertex, count as inside.
func (p *Plume) Contains(lat, lon float64) bool {
	return geom.Point{X: lon, Y: lat}.Within(p.Polygon()) != geom.Outside
}

// AreaSquareMeters returns the plume footprint area using the same local
// projection the ring was built with.
func (p *Plume) AreaSquareMeters() float64 {
	if len(p.Ring) < 4 {
		return 0
	}
	frame := newLocalFrame(p.Ring[0].Y, p.Ring[0].X)
	projected := make([]geom.Point, len(p.Ring))
	for i, pt := range p.Ring {
		east, north := frame.project(pt.Y, pt.X)
		projected[i] = geom.Point{X: east, Y: north}
	}
	return geom.Polygon{projected}.Area()
}

// GeoJSON encodes the plume as a GeoJSON Polygon geometry.
func (p *Plume) GeoJSON() ([]byte, error) {
	return geojson.Encode(p.Polygon())
}

// MarshalJSON renders the plume as a GeoJSON Polygon geometry.
func (p *Plume) MarshalJSON() ([]byte, error) {
	return p.GeoJSON()
}

// UnmarshalJSON reads a GeoJSON Polygon geometry. Only the outer ring is kept.
func (p *Plume) UnmarshalJSON(data []byte) error {
	var g geojson.Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("decode plume geometry: %w", err)
	}
	decoded, err := geojson.FromGeoJSON(&g)
	if err != nil {
		return fmt.Errorf("decode plume geometry: %w", err)
	}
	poly, ok := decoded.(geom.Polygon)
	if !ok || len(poly) == 0 {
		return fmt.Errorf("decode plume geometry: expected Polygon, got %s", g.Type)
	}
	p.Ring = poly[0]
	return nil
}

// GaussianBuilder builds the sigma-y plume: a linear sweep of Samples points
// along the downwind axis, each widened to WidthMultiplier*sigma-y.
type GaussianBuilder struct {
	Samples         int
	WidthMultiplier float64
}

// NewGaussianBuilder returns a GaussianBuilder, substituting defaults for
// non-positive arguments.
func NewGaussianBuilder(samples int, widthMultiplier float64) GaussianBuilder {
	if samples <= 0 {
		samples = DefaultPlumeSamples
	}
	if !(widthMultiplier > 0) {
		widthMultiplier = DefaultWidthMultiplier
	}
	return GaussianBuilder{Samples: samples, WidthMultiplier: widthMultiplier}
}

// BuildPlume assembles source -> left edge (near to far) -> right edge
// (far to near) -> source.
func (b GaussianBuilder) BuildPlume(source *ReleaseSource, weather *WeatherObservation, lengthMeters float64) *Plume {
	if source == nil || weather == nil || weather.WindDirection == nil {
		return nil
	}
	b = NewGaussianBuilder(b.Samples, b.WidthMultiplier)
	length := plumeLength(lengthMeters)
	class := Classify(weather)
	bearing := DownwindBearing(*weather.WindDirection)
	frame := newLocalFrame(source.Latitude, source.Longitude)

	n := b.Samples
	left := make([]geom.Point, n)
	right := make([]geom.Point, n)
	for i := 1; i <= n; i++ {
		dist := length * float64(i) / float64(n)
		half := SigmaY(dist, class) * b.WidthMultiplier / 2
		left[i-1] = frame.axisPoint(dist, -half, bearing)
		right[i-1] = frame.axisPoint(dist, half, bearing)
	}

	ring := make([]geom.Point, 0, 2*n+2)
	ring = append(ring, frame.origin())
	ring = append(ring, left...)
	for i := n - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	ring = append(ring, frame.origin())

	return &Plume{Ring: ring, Stability: class, AxisBearing: bearing, LengthMeters: length}
}

// wedgeHalfAngles are the angular wedge half-widths in degrees per class.
var wedgeHalfAngles = map[StabilityClass]float64{
	StabilityA: 30,
	StabilityB: 25,
	StabilityC: 20,
	StabilityD: 15,
	StabilityE: 10,
	StabilityF: 7.5,
}

// WedgeHalfAngle returns the wedge half-angle in degrees for a class. Unknown
// classes use D.
func WedgeHalfAngle(class StabilityClass) float64 {
	if a, ok := wedgeHalfAngles[class]; ok {
		return a
	}
	return wedgeHalfAngles[StabilityD]
}

// WedgeBuilder builds a simplified angular wedge: a circular sector at the
// plume length whose half-angle tightens with stability.
type WedgeBuilder struct {
	ArcSamples int
}

// BuildPlume assembles source -> arc from the left edge to the right edge ->
// source.
func (b WedgeBuilder) BuildPlume(source *ReleaseSource, weather *WeatherObservation, lengthMeters float64) *Plume {
	if source == nil || weather == nil || weather.WindDirection == nil {
		return nil
	}
	arc := b.ArcSamples
	if arc <= 0 {
		arc = DefaultWedgeArcSamples
	}
	length := plumeLength(lengthMeters)
	class := Classify(weather)
	bearing := DownwindBearing(*weather.WindDirection)
	half := WedgeHalfAngle(class)
	frame := newLocalFrame(source.Latitude, source.Longitude)

	ring := make([]geom.Point, 0, arc+3)
	ring = append(ring, frame.origin())
	for j := 0; j <= arc; j++ {
		angle := bearing - half + 2*half*float64(j)/float64(arc)
		ring = append(ring, frame.axisPoint(length, 0, angle))
	}
	ring = append(ring, frame.origin())

	return &Plume{Ring: ring, Stability: class, AxisBearing: bearing, LengthMeters: length}
}

// NewPlumeBuilder returns the builder for a geometry strategy name. An empty
// name selects the sigma-y geometry.
func NewPlumeBuilder(geometry string, samples int, widthMultiplier float64) (PlumeBuilder, error) {
	switch geometry {
	case GeometryGaussian, "":
		return NewGaussianBuilder(samples, widthMultiplier), nil
	case GeometryWedge:
		return WedgeBuilder{ArcSamples: DefaultWedgeArcSamples}, nil
	default:
		return nil, fmt.Errorf("unknown plume geometry %q", geometry)
	}
}

// plumeLength substitutes the default for a missing length and caps it at
// MaxPlumeLengthMeters.
func plumeLength(lengthMeters float64) float64 {
	if !(lengthMeters > 0) {
		return DefaultPlumeLengthMeters
	}
	return min(lengthMeters, MaxPlumeLengthMeters)
}
