package domain

import (
	"math"

	"github.com/ctessum/geom"
)

// metersPerDegreeLat is the equirectangular scale used for every local
// projection in this package.
const metersPerDegreeLat = 111320.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func normalizeBearing(deg float64) float64 {
	b := math.Mod(deg, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// DownwindBearing converts a meteorological wind direction (blowing from) into
// the bearing the plume travels toward.
func DownwindBearing(windFromDeg float64) float64 {
	return normalizeBearing(windFromDeg + 180)
}

// localFrame is an equirectangular east/north meter grid anchored at a source.
type localFrame struct {
	lat0, lon0 float64
	cosLat     float64
}

func newLocalFrame(lat, lon float64) localFrame {
	return localFrame{lat0: lat, lon0: lon, cosLat: math.Cos(toRadians(lat))}
}

func (f localFrame) origin() geom.Point {
	return geom.Point{X: f.lon0, Y: f.lat0}
}

// toPoint converts east/north meters to a (lon, lat) point.
func (f localFrame) toPoint(east, north float64) geom.Point {
	return geom.Point{
		X: f.lon0 + east/(metersPerDegreeLat*f.cosLat),
		Y: f.lat0 + north/metersPerDegreeLat,
	}
}

// project converts a latitude/longitude to east/north meters.
func (f localFrame) project(lat, lon float64) (east, north float64) {
	east = (lon - f.lon0) * metersPerDegreeLat * f.cosLat
	north = (lat - f.lat0) * metersPerDegreeLat
	return east, north
}

// axisPoint places a point `along` meters down an axis with the given bearing
// and `cross` meters to its right.
func (f localFrame) axisPoint(along, cross, bearingDeg float64) geom.Point {
	s, c := math.Sincos(toRadians(bearingDeg))
	return f.toPoint(along*s+cross*c, along*c-cross*s)
}

// axisComponents decomposes an east/north offset into along-axis and
// right-of-axis components for the given bearing.
func axisComponents(east, north, bearingDeg float64) (along, cross float64) {
	s, c := math.Sincos(toRadians(bearingDeg))
	return east*s + north*c, east*c - north*s
}
