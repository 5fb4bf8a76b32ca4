package cache

import (
	"context"
	"freightflow/internal/domain"
	"freightflow/internal/platform/db"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestConn(t *testing.T) *db.Conn {
	t.Helper()

	conn, err := db.Open(context.Background(), "", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn))
	// Idempotent.
	require.NoError(t, InitSchema(context.Background(), conn))
	return conn
}

var (
	origin      = domain.Coordinates{Lon: 151.2093, Lat: -33.8688}
	destination = domain.Coordinates{Lon: 151.0036, Lat: -33.8150}
)

func TestDirectionsCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSQLDirectionsCache(openTestConn(t), 15*time.Minute, zap.NewNop())

	_, ok, err := c.Get(ctx, origin, destination)
	require.NoError(t, err)
	assert.False(t, ok)

	routes := []domain.CandidateRoute{
		{Geometry: "abc", DistanceMeters: 20000, DurationSeconds: 1800},
		{Geometry: "def", DistanceMeters: 21500.5, DurationSeconds: 1700},
	}
	require.NoError(t, c.Put(ctx, origin, destination, routes))

	got, ok, err := c.Get(ctx, origin, destination)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, routes, got)

	// A second put replaces rather than appends.
	require.NoError(t, c.Put(ctx, origin, destination, routes[:1]))
	got, ok, err = c.Get(ctx, origin, destination)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, routes[:1], got)

	_, ok, err = c.Get(ctx, destination, origin)
	require.NoError(t, err)
	assert.False(t, ok, "pairs are directional")
}

func TestDirectionsCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewSQLDirectionsCache(openTestConn(t), time.Minute, zap.NewNop())

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	require.NoError(t, c.Put(ctx, origin, destination, []domain.CandidateRoute{{Geometry: "abc", DistanceMeters: 1, DurationSeconds: 1}}))

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	_, ok, err := c.Get(ctx, origin, destination)
	require.NoError(t, err)
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok, err = c.Get(ctx, origin, destination)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSQLGeocodeCache(openTestConn(t), zap.NewNop())

	places := []domain.Place{
		{Name: "Parramatta NSW, Australia", Coordinates: destination},
		{Name: "Parramatta Park, NSW", Coordinates: domain.Coordinates{Lon: 150.99, Lat: -33.81}},
	}
	require.NoError(t, c.Put(ctx, "  Parramatta  ", places))

	got, ok, err := c.Get(ctx, "parramatta")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, places, got)

	_, ok, err = c.Get(ctx, "penrith")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Get(ctx, "   ")
	require.Error(t, err)
}

func TestNilConnErrors(t *testing.T) {
	_, _, err := NewSQLDirectionsCache(nil, 0, nil).Get(context.Background(), origin, destination)
	require.Error(t, err)
	require.Error(t, NewSQLGeocodeCache(nil, nil).Put(context.Background(), "x", []domain.Place{{Name: "x"}}))
}
