//go:build live

package overpass

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/plume-impact-service/internal/observability"
)

// These tests hit the public Overpass API, which rate limits aggressively.
// Run with: go test -tags=live ./internal/adapter/overpass/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	return NewClient("https://overpass-api.de/api/interpreter", 30*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_FindReceptors(t *testing.T) {
	c := smokeClient(t)

	// Central London has schools and places of worship within 1 km.
	receptors, err := c.FindReceptors(context.Background(), 51.5, -0.12, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, receptors)

	seen := map[string]bool{}
	for _, r := range receptors {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Kind)
		assert.InDelta(t, 51.5, r.Latitude, 0.05)
		assert.InDelta(t, -0.12, r.Longitude, 0.05)
		assert.False(t, seen[r.ID], "duplicate receptor %s", r.ID)
		seen[r.ID] = true
	}
}

func TestSmoke_CachedFinder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedFinder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.FindReceptors(context.Background(), 40.71, -74.0, 500)
	require.NoError(t, err)

	r2, err := cached.FindReceptors(context.Background(), 40.71, -74.0, 500)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
