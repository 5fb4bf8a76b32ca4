package directions

import (
	"context"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/httpx"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sydney     = domain.Coordinates{Lon: 151.2093, Lat: -33.8688}
	parramatta = domain.Coordinates{Lon: 151.0036, Lat: -33.815}
)

type memRouteCache struct {
	m map[string][]domain.CandidateRoute
}

func (c *memRouteCache) Get(ctx context.Context, o, d domain.Coordinates) ([]domain.CandidateRoute, bool, error) {
	r, ok := c.m[o.Key()+"|"+d.Key()]
	return r, ok, nil
}

func (c *memRouteCache) Put(ctx context.Context, o, d domain.Coordinates, routes []domain.CandidateRoute) error {
	c.m[o.Key()+"|"+d.Key()] = routes
	return nil
}

func newTestProvider(t *testing.T, h http.HandlerFunc, routes RouteCache) *MapboxProvider {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := httpx.New(5*time.Second, 0)
	client.Backoff = time.Millisecond

	p, err := NewMapboxProvider(MapboxConfig{
		Token:   "pk.test",
		BaseURL: srv.URL,
		Client:  client,
		Routes:  routes,
	})
	require.NoError(t, err)
	return p
}

func TestMapboxRoutes(t *testing.T) {
	var calls atomic.Int32
	h := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/directions/v5/mapbox/driving/151.2093,-33.8688;151.0036,-33.815", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("alternatives"))
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "polyline", r.URL.Query().Get("geometries"))
		assert.Equal(t, "pk.test", r.URL.Query().Get("access_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":"Ok","routes":[
			{"geometry":"a","distance":20000,"duration":1800},
			{"geometry":"b","distance":21000,"duration":1700},
			{"geometry":"c","distance":25000,"duration":1600},
			{"geometry":"d","distance":26000,"duration":1500}
		]}`)
	}

	cache := &memRouteCache{m: map[string][]domain.CandidateRoute{}}
	p := newTestProvider(t, h, cache)

	got, err := p.Routes(context.Background(), sydney, parramatta)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.CandidateRoute{Geometry: "a", DistanceMeters: 20000, DurationSeconds: 1800}, got[0])
	assert.Equal(t, "c", got[2].Geometry)

	// Second call is served from cache.
	again, err := p.Routes(context.Background(), sydney, parramatta)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMapboxRoutesNoRoute(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"NoRoute","routes":[]}`)
	}, nil)

	got, err := p.Routes(context.Background(), sydney, parramatta)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMapboxRoutesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"code":"Ok","routes":[{"geometry":"a","distance":1,"duration":1}]}`)
	}, nil)

	got, err := p.Routes(context.Background(), sydney, parramatta)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestMapboxRoutesUnauthorized(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Authorized - Invalid Token"}`, http.StatusUnauthorized)
	}, nil)

	_, err := p.Routes(context.Background(), sydney, parramatta)
	require.Error(t, err)

	var se *httpx.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
}

func TestMapboxSearch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/geocoding/v5/mapbox.places/"))
		assert.Equal(t, NSWBoundingBox, r.URL.Query().Get("bbox"))
		assert.Equal(t, "6", r.URL.Query().Get("limit"))
		assert.Equal(t, "au", r.URL.Query().Get("country"))
		fmt.Fprint(w, `{"features":[
			{"place_name":"Parramatta, New South Wales, Australia","center":[151.0036,-33.815]}
		]}`)
	}, nil)

	got, err := p.Search(context.Background(), "Parramatta")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Parramatta, New South Wales, Australia", got[0].Name)
	assert.Equal(t, parramatta, got[0].Coordinates)
}

func TestMapboxSearchShortQuery(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("short queries must not reach the upstream")
	}, nil)

	got, err := p.Search(context.Background(), " pa ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewMapboxProviderRequiresToken(t *testing.T) {
	_, err := NewMapboxProvider(MapboxConfig{})
	require.Error(t, err)
}
