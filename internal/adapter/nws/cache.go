package nws

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/plume-impact-service/internal/cache"
	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/couchcryptid/plume-impact-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedProvider wraps a WeatherProvider with an expiring LRU keyed on a
// ~1 km grid cell.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *cache.LRU[domain.WeatherObservation]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a weather provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   cache.New[domain.WeatherObservation](maxEntries, ttl, clock),
		metrics: metrics,
	}
}

// CurrentWeather returns the cached observation for the grid cell of (lat, lon),
// falling through to the inner provider on a miss or an expired entry.
func (c *CachedProvider) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)
	if obs, ok := c.cache.Get(key); ok {
		c.metrics.LookupCache.WithLabelValues(provider, "hit").Inc()
		return obs, nil
	}
	c.metrics.LookupCache.WithLabelValues(provider, "miss").Inc()

	obs, err := c.inner.CurrentWeather(ctx, lat, lon)
	if err != nil {
		return obs, err
	}
	// Observations without a direction are not cached so the next request retries.
	if obs.WindDirection != nil {
		c.cache.Put(key, obs)
	}
	return obs, nil
}
