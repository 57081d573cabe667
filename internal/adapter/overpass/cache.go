package overpass

import (
	"context"
	"fmt"

	"github.com/couchcryptid/plume-impact-service/internal/cache"
	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/couchcryptid/plume-impact-service/internal/observability"
)

// CachedFinder wraps a ReceptorFinder with an LRU keyed on a ~100 m grid cell
// and the search radius. Points of interest change rarely, so entries do not
// expire.
type CachedFinder struct {
	inner   domain.ReceptorFinder
	cache   *cache.LRU[[]domain.Receptor]
	metrics *observability.Metrics
}

// NewCachedFinder creates a cache decorator around a receptor finder.
func NewCachedFinder(inner domain.ReceptorFinder, maxEntries int, metrics *observability.Metrics) *CachedFinder {
	return &CachedFinder{
		inner:   inner,
		cache:   cache.New[[]domain.Receptor](maxEntries, 0, nil),
		metrics: metrics,
	}
}

// FindReceptors returns the cached receptors for the grid cell and radius,
// falling through to the inner finder on a miss.
func (c *CachedFinder) FindReceptors(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.Receptor, error) {
	key := fmt.Sprintf("%.3f,%.3f|%.0f", lat, lon, radiusMeters)
	if receptors, ok := c.cache.Get(key); ok {
		c.metrics.LookupCache.WithLabelValues(provider, "hit").Inc()
		return receptors, nil
	}
	c.metrics.LookupCache.WithLabelValues(provider, "miss").Inc()

	receptors, err := c.inner.FindReceptors(ctx, lat, lon, radiusMeters)
	if err != nil {
		return nil, err
	}
	// Empty results are not cached so a transient empty answer can be retried.
	if len(receptors) > 0 {
		c.cache.Put(key, receptors)
	}
	return receptors, nil
}
