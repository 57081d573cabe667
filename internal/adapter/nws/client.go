// Package nws implements domain.WeatherProvider against the National Weather
// Service API (api.weather.gov).
package nws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/couchcryptid/plume-impact-service/internal/observability"
)

const provider = "nws"

// ErrNoStation is returned when the points endpoint lists no observation station.
var ErrNoStation = errors.New("nws: no observation station for location")

// Client resolves the nearest observation station for a location and returns
// its latest observation.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a weather.gov client. The API rejects requests without a
// User-Agent, so userAgent should identify the operator.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// CurrentWeather returns the latest observation from the station nearest to
// (lat, lon).
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	start := time.Now()
	obs, err := c.currentWeather(ctx, lat, lon)
	c.metrics.LookupAPIDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.LookupRequests.WithLabelValues(provider, "error").Inc()
	case obs.WindDirection == nil:
		c.metrics.LookupRequests.WithLabelValues(provider, "empty").Inc()
	default:
		c.metrics.LookupRequests.WithLabelValues(provider, "success").Inc()
	}
	return obs, err
}

func (c *Client) currentWeather(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	var point pointResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon), &point); err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("resolve point: %w", err)
	}
	if point.Properties.ObservationStations == "" {
		return domain.WeatherObservation{}, ErrNoStation
	}

	var stations stationsResponse
	if err := c.getJSON(ctx, point.Properties.ObservationStations, &stations); err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("list stations: %w", err)
	}
	if len(stations.Features) == 0 || stations.Features[0].Properties.StationIdentifier == "" {
		return domain.WeatherObservation{}, ErrNoStation
	}
	station := stations.Features[0].Properties.StationIdentifier

	var latest observationResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/stations/%s/observations/latest", c.baseURL, station), &latest); err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("latest observation for %s: %w", station, err)
	}

	c.logger.Debug("nws observation fetched", "station", station, "lat", lat, "lon", lon)
	return latest.Properties.toDomain(), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nws request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("nws API error: status %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// weather.gov response types.

type pointResponse struct {
	Properties struct {
		ObservationStations string `json:"observationStations"`
	} `json:"properties"`
}

type stationsResponse struct {
	Features []struct {
		Properties struct {
			StationIdentifier string `json:"stationIdentifier"`
		} `json:"properties"`
	} `json:"features"`
}

type observationResponse struct {
	Properties observation `json:"properties"`
}

type quantity struct {
	Value    *float64 `json:"value"`
	UnitCode string   `json:"unitCode"`
}

type observation struct {
	TextDescription  string   `json:"textDescription"`
	Temperature      quantity `json:"temperature"`
	WindDirection    quantity `json:"windDirection"`
	WindSpeed        quantity `json:"windSpeed"`
	RelativeHumidity quantity `json:"relativeHumidity"`
}

func (o observation) toDomain() domain.WeatherObservation {
	obs := domain.WeatherObservation{
		WindDirection: o.WindDirection.Value,
		Humidity:      o.RelativeHumidity.Value,
		Condition:     o.TextDescription,
	}
	if o.WindSpeed.Value != nil {
		speed := toMetersPerSecond(*o.WindSpeed.Value, o.WindSpeed.UnitCode)
		obs.WindSpeed = &speed
	}
	if o.Temperature.Value != nil {
		obs.Temperature = toCelsius(*o.Temperature.Value, o.Temperature.UnitCode)
	}
	return obs
}

func toMetersPerSecond(v float64, unit string) float64 {
	switch {
	case strings.HasSuffix(unit, "m_s-1"):
		return v
	case strings.HasSuffix(unit, "kt"):
		return v * 0.514444
	default: // wmoUnit:km_h-1
		return v / 3.6
	}
}

func toCelsius(v float64, unit string) float64 {
	if strings.HasSuffix(unit, "degF") {
		return (v - 32) * 5 / 9
	}
	return v
}
