package domain

import "math"

// fallbackWindSpeed is used for concentration estimates when the weather
// snapshot has no wind speed.
const fallbackWindSpeed = 1.0

// Analyze returns the receptors that fall inside the plume, in input order,
// each with its along-wind and cross-wind position and an estimated
// concentration for emission rate q. A nil plume, no receptors, or missing
// weather/source yields an empty result. Analyze keeps no state between calls.
func Analyze(plume *Plume, receptors []Receptor, source *ReleaseSource, weather *WeatherObservation, q float64) []ImpactedReceptor {
	impacts := []ImpactedReceptor{}
	if plume == nil || len(receptors) == 0 || weather == nil || source == nil || weather.WindDirection == nil {
		return impacts
	}

	class := Classify(weather)
	bearing := DownwindBearing(*weather.WindDirection)
	u := fallbackWindSpeed
	if weather.WindSpeed != nil {
		u = *weather.WindSpeed
	}
	frame := newLocalFrame(source.Latitude, source.Longitude)

	for _, r := range receptors {
		if !plume.Contains(r.Latitude, r.Longitude) {
			continue
		}
		east, north := frame.project(r.Latitude, r.Longitude)
		along, cross := axisComponents(east, north, bearing)
		impacts = append(impacts, ImpactedReceptor{
			Receptor:               r,
			DownwindDistance:       along,
			CrosswindDistance:      cross,
			Distance:               math.Hypot(east, north),
			EstimatedConcentration: Concentration(q, u, along, cross, class),
		})
	}
	return impacts
}
