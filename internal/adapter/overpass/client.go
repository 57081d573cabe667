// Package overpass implements domain.ReceptorFinder with the OpenStreetMap
// Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/couchcryptid/plume-impact-service/internal/observability"
)

const provider = "overpass"

// amenityKinds are the OSM amenity values treated as sensitive receptors.
var amenityKinds = []string{"school", "kindergarten", "hospital", "clinic", "nursing_home", "place_of_worship"}

// Client queries Overpass for sensitive points of interest around a location.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Overpass client for the interpreter endpoint.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// FindReceptors returns schools, care facilities, places of worship and parks
// within radiusMeters of (lat, lon). Ways are reported at their center.
func (c *Client) FindReceptors(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.Receptor, error) {
	start := time.Now()
	receptors, err := c.findReceptors(ctx, lat, lon, radiusMeters)
	c.metrics.LookupAPIDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.LookupRequests.WithLabelValues(provider, "error").Inc()
	case len(receptors) == 0:
		c.metrics.LookupRequests.WithLabelValues(provider, "empty").Inc()
	default:
		c.metrics.LookupRequests.WithLabelValues(provider, "success").Inc()
	}
	return receptors, err
}

func (c *Client) findReceptors(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.Receptor, error) {
	form := url.Values{"data": {buildQuery(lat, lon, radiusMeters)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	receptors := toReceptors(result.Elements)
	c.logger.Debug("overpass receptors fetched", "lat", lat, "lon", lon, "radius_m", radiusMeters, "count", len(receptors))
	return receptors, nil
}

func buildQuery(lat, lon, radiusMeters float64) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", radiusMeters, lat, lon)
	amenity := fmt.Sprintf(`["amenity"~"^(%s)$"]`, strings.Join(amenityKinds, "|"))

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, kind := range []string{"node", "way"} {
		b.WriteString(kind + around + amenity + ";")
		b.WriteString(kind + around + `["leisure"="park"];`)
	}
	b.WriteString(");out center tags;")
	return b.String()
}

func toReceptors(elements []element) []domain.Receptor {
	receptors := make([]domain.Receptor, 0, len(elements))
	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		lat, lon, ok := el.position()
		if !ok {
			continue
		}
		id := fmt.Sprintf("%s/%d", el.Type, el.ID)
		if seen[id] {
			continue
		}
		seen[id] = true

		kind := el.Tags["amenity"]
		if kind == "" {
			kind = el.Tags["leisure"]
		}
		name := el.Tags["name"]
		if name == "" {
			name = "Unnamed " + strings.ReplaceAll(kind, "_", " ")
		}
		receptors = append(receptors, domain.Receptor{ID: id, Name: name, Kind: kind, Latitude: lat, Longitude: lon})
	}
	return receptors
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (e element) position() (lat, lon float64, ok bool) {
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}
