// Package domain models chemical release dispersion and receptor impact.
//
// # Pipeline
//
// A [ReleaseRequest] describes a point release (source location, emission
// rate, release kind), an optional weather snapshot, an optional candidate
// receptor set, and an optional plume length. [Assessor.Assess] turns one
// request into one [Assessment]: the downwind hazard polygon and the
// receptors inside it, computed together from the same inputs so consumers
// never observe a plume without its matching impact list.
//
// # Wind Convention
//
// Wind direction is meteorological: the bearing the wind blows FROM, in
// degrees clockwise from true north. The plume travels toward the opposite
// bearing, so a 90° (easterly) wind carries the plume west. Both the plume
// geometry and the receptor along-wind/cross-wind decomposition use the same
// axis, see [DownwindBearing].
//
// # Stability
//
// Pasquill-Gifford classes A (most unstable) through F (most stable) are
// selected from wind speed and temperature:
//
//	U < 2 m/s:      A if T > 25°C, else B
//	2 <= U < 5:     C
//	5 <= U < 8:     D
//	8 <= U < 10:    E
//	U >= 10:        F
//
// Missing weather or wind speed yields D.
//
// # Lateral Spread
//
// sigma-y(x) = c * xKm * (1 + 0.0001 xKm)^-0.5 * 1000 meters, with the class
// coefficient c from {A 0.22, B 0.16, C 0.11, D 0.08, E 0.06, F 0.04}.
//
// # Plume Geometry
//
// The default [GaussianBuilder] samples N points on a linear sweep along the
// downwind axis and offsets each one by ±k*sigma-y/2 perpendicular to the axis
// (k = 3 by default). Points are projected with an equirectangular local
// approximation anchored at the source latitude (1 m north = 1/111320 degrees).
// The approximation holds for plumes of a few tens of kilometers at
// mid-latitudes; it is not valid near the poles.
//
// [WedgeBuilder] is the alternative angular wedge with a stability-dependent
// half-angle. Either strategy yields a closed (lon, lat) ring suitable for a
// GeoJSON Polygon.
//
// # Impact
//
// A receptor is impacted when it lies inside the plume polygon. Points on the
// polygon boundary count as inside. The concentration estimate is the
// ground-level Gaussian plume
//
//	C = Q / (U sqrt(2π) sigma-y) * exp(-y² / (2 sigma-y²))
//
// evaluated at the receptor's along-wind distance x and cross-wind offset y.
// x is the projection of the source-to-receptor offset onto the plume axis,
// not the straight-line distance, and y is the signed perpendicular offset
// (positive to the right of the axis). The straight-line distance is reported
// separately as [ImpactedReceptor.Distance]. Measuring x along the axis keeps
// the concentration peak on the centreline the polygon is built around.
// Upwind receptors, calm wind, zero spread and overflowing results all yield
// 0, never NaN or Inf. Plume lengths are capped at [MaxPlumeLengthMeters].
package domain
