package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/obs"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// NSWBoundingBox limits place search to New South Wales (minLon,minLat,maxLon,maxLat).
const NSWBoundingBox = "139.965,-38.03,155.258,-27.839"

// MinQueryLen is the shortest query sent upstream; shorter input yields no hits.
const MinQueryLen = 3

const placeLimit = 6

type geocodeResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"`
	} `json:"features"`
}

// Search resolves free text to places inside NSW.
func (m *MapboxProvider) Search(ctx context.Context, query string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, m.logger, "mapbox.Search")(&err)

	query = strings.TrimSpace(query)
	if len(query) < MinQueryLen {
		return []domain.Place{}, nil
	}

	if m.places != nil {
		cached, ok, err := m.places.Get(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("mapbox search: read cache: %w", err)
		}
		if ok {
			return cached, nil
		}
	}

	endpoint := m.baseURL + "/geocoding/v5/mapbox.places/" + url.PathEscape(query) + ".json"

	resp, err := m.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("access_token", m.token)
		q.Set("autocomplete", "true")
		q.Set("country", "au")
		q.Set("bbox", NSWBoundingBox)
		q.Set("limit", fmt.Sprint(placeLimit))
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("mapbox search: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("mapbox search: decode response: %w", err)
	}

	out := make([]domain.Place, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		if len(f.Center) != 2 {
			return nil, fmt.Errorf("mapbox search: invalid coordinate format for %q", f.PlaceName)
		}
		out = append(out, domain.Place{
			Name:        f.PlaceName,
			Coordinates: domain.Coordinates{Lon: f.Center[0], Lat: f.Center[1]},
		})
	}

	if m.places != nil && len(out) > 0 {
		if err := m.places.Put(ctx, query, out); err != nil {
			m.logger.Warn("geocode cache write failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		}
	}

	return out, nil
}
