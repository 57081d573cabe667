package domain

import (
	"context"
	"log/slog"
)

// EnrichWithWeather fills in the weather snapshot from provider when the
// request carries none. A nil provider or a failed lookup leaves the weather
// empty and records the outcome in WeatherSource (graceful degradation).
func EnrichWithWeather(ctx context.Context, req ReleaseRequest, provider WeatherProvider, logger *slog.Logger) ReleaseRequest {
	if req.Weather != nil {
		req.WeatherSource = EnrichmentRequest
		return req
	}
	if provider == nil || req.Source == nil {
		req.WeatherSource = EnrichmentNone
		return req
	}

	obs, err := provider.CurrentWeather(ctx, req.Source.Latitude, req.Source.Longitude)
	if err != nil {
		logger.Warn("weather lookup failed",
			"request_id", req.ID,
			"lat", req.Source.Latitude,
			"lon", req.Source.Longitude,
			"error", err,
		)
		req.WeatherSource = EnrichmentFailed
		return req
	}
	req.Weather = &obs
	req.WeatherSource = EnrichmentProvider
	return req
}

// EnrichWithReceptors fills in receptors from finder when the request carries
// none. The search radius defaults to the plume length.
func EnrichWithReceptors(ctx context.Context, req ReleaseRequest, finder ReceptorFinder, radiusMeters float64, logger *slog.Logger) ReleaseRequest {
	if len(req.Receptors) > 0 {
		req.ReceptorSource = EnrichmentRequest
		return req
	}
	if finder == nil || req.Source == nil {
		req.ReceptorSource = EnrichmentNone
		return req
	}
	if !(radiusMeters > 0) {
		radiusMeters = plumeLength(req.PlumeLengthMeters)
	}

	receptors, err := finder.FindReceptors(ctx, req.Source.Latitude, req.Source.Longitude, radiusMeters)
	if err != nil {
		logger.Warn("receptor lookup failed",
			"request_id", req.ID,
			"radius_m", radiusMeters,
			"error", err,
		)
		req.ReceptorSource = EnrichmentFailed
		return req
	}
	req.Receptors = receptors
	req.ReceptorSource = EnrichmentProvider
	return req
}
