package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/httpx"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.mapbox.com"

// RouteCache persists provider results per origin/destination pair.
type RouteCache interface {
	Get(ctx context.Context, origin, destination domain.Coordinates) ([]domain.CandidateRoute, bool, error)
	Put(ctx context.Context, origin, destination domain.Coordinates, routes []domain.CandidateRoute) error
}

// PlaceCache persists geocoder hits per query.
type PlaceCache interface {
	Get(ctx context.Context, query string) ([]domain.Place, bool, error)
	Put(ctx context.Context, query string, places []domain.Place) error
}

type MapboxConfig struct {
	Token   string
	BaseURL string
	Client  *httpx.Client
	Routes  RouteCache
	Places  PlaceCache
	Logger  *zap.Logger
}

// MapboxProvider implements DirectionsProvider and Geocoder using the Mapbox
// Directions and Geocoding APIs.
//
// It coordinates:
//   - Persistent route and place caching
//   - External API calls with rate limiting and retry/backoff
//
// The provider is safe for concurrent use.
type MapboxProvider struct {
	client  *httpx.Client
	token   string
	baseURL string
	profile string
	routes  RouteCache
	places  PlaceCache
	logger  *zap.Logger
}

func NewMapboxProvider(cfg MapboxConfig) (*MapboxProvider, error) {
	if cfg.Token == "" {
		return nil, errors.New("mapbox token is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = httpx.New(20*time.Second, 5)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &MapboxProvider{
		client:  cfg.Client,
		token:   cfg.Token,
		baseURL: cfg.BaseURL,
		profile: "driving",
		routes:  cfg.Routes,
		places:  cfg.Places,
		logger:  cfg.Logger,
	}, nil
}

type directionsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string  `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Routes returns up to MaxAlternatives driving routes in provider order.
func (m *MapboxProvider) Routes(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (_ []domain.CandidateRoute, err error) {
	defer obs.Time(ctx, m.logger, "mapbox.Routes")(&err)

	if !origin.Valid() || !destination.Valid() {
		return nil, errors.New("mapbox routes: coordinates out of range")
	}

	if m.routes != nil {
		cached, ok, err := m.routes.Get(ctx, origin, destination)
		if err != nil {
			return nil, fmt.Errorf("mapbox routes: read cache: %w", err)
		}
		if ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/%s/%s;%s",
		m.baseURL, m.profile, lonLat(origin), lonLat(destination))

	resp, err := m.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("alternatives", "true")
		q.Set("overview", "full")
		q.Set("geometries", "polyline")
		q.Set("access_token", m.token)
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("mapbox routes: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("mapbox routes: decode response: %w", err)
	}

	// NoRoute comes back as 200 with an empty list.
	switch decoded.Code {
	case "", "Ok", "NoRoute":
	default:
		return nil, fmt.Errorf("mapbox routes: code %s: %s", decoded.Code, decoded.Message)
	}

	n := min(len(decoded.Routes), ports.MaxAlternatives)
	out := make([]domain.CandidateRoute, 0, n)
	for _, r := range decoded.Routes[:n] {
		if r.Geometry == "" {
			return nil, errors.New("mapbox routes: route without geometry")
		}
		out = append(out, domain.CandidateRoute{
			Geometry:        r.Geometry,
			DistanceMeters:  r.Distance,
			DurationSeconds: r.Duration,
		})
	}

	if m.routes != nil && len(out) > 0 {
		if err := m.routes.Put(ctx, origin, destination, out); err != nil {
			m.logger.Warn("directions cache write failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		}
	}

	return out, nil
}

func lonLat(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
