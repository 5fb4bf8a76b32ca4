package toll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/httpx"
	"freightflow/internal/platform/obs"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultURL = "https://api.transport.nsw.gov.au/v1/toll-calculator/price"

// ErrNoAPIKey is returned by Price when no TfNSW key is configured.
var ErrNoAPIKey = errors.New("TFNSW_API_KEY not set")

// TfNSWProvider prices a route with the Transport for NSW toll calculator.
type TfNSWProvider struct {
	client *httpx.Client
	apiKey string
	url    string
	logger *zap.Logger
}

func NewTfNSWProvider(apiKey, url string, client *httpx.Client, logger *zap.Logger) *TfNSWProvider {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = httpx.New(10*time.Second, 5)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TfNSWProvider{client: client, apiKey: apiKey, url: url, logger: logger}
}

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type priceRequest struct {
	Start       point   `json:"start"`
	End         point   `json:"end"`
	VehicleType string  `json:"vehicleType"`
	Waypoints   []point `json:"waypoints,omitempty"`
}

type priceResponse struct {
	TotalToll *float64 `json:"totalToll"`
}

// Price returns the total toll in AUD. A response without totalToll prices at zero.
func (p *TfNSWProvider) Price(
	ctx context.Context,
	origin, destination domain.Coordinates,
	vehicleType string,
	waypoints []domain.Coordinates,
) (_ float64, err error) {
	defer obs.Time(ctx, p.logger, "tfnsw.Price")(&err)

	if p.apiKey == "" {
		return 0, ErrNoAPIKey
	}

	payload := priceRequest{
		Start:       point{Lat: origin.Lat, Lon: origin.Lon},
		End:         point{Lat: destination.Lat, Lon: destination.Lon},
		VehicleType: vehicleType,
	}
	for _, w := range waypoints {
		payload.Waypoints = append(payload.Waypoints, point{Lat: w.Lat, Lon: w.Lon})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("toll price: encode request: %w", err)
	}

	resp, err := p.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "apikey "+p.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return 0, fmt.Errorf("toll price: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("toll price: decode response: %w", err)
	}

	if decoded.TotalToll == nil {
		return 0, nil
	}
	return *decoded.TotalToll, nil
}
