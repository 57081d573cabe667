package domain

import "context"

// WeatherProvider supplies the current weather at a location.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (WeatherObservation, error)
}

// ReceptorFinder lists points of interest within radiusMeters of a location.
type ReceptorFinder interface {
	FindReceptors(ctx context.Context, lat, lon, radiusMeters float64) ([]Receptor, error)
}
