package hazards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freightflow/internal/platform/httpx"
	"freightflow/internal/platform/obs"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultFeedURL = "https://api.transport.nsw.gov.au/v1/live/hazards/incident/open"

// Fetcher returns the current upstream features.
type Fetcher interface {
	Fetch(ctx context.Context) ([]json.RawMessage, error)
}

// Feed reads the TfNSW live hazard feed.
type Feed struct {
	client *httpx.Client
	apiKey string
	url    string
	logger *zap.Logger
}

func NewFeed(apiKey, url string, client *httpx.Client, logger *zap.Logger) *Feed {
	if url == "" {
		url = DefaultFeedURL
	}
	if client == nil {
		client = httpx.New(20*time.Second, 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{client: client, apiKey: apiKey, url: url, logger: logger}
}

func (f *Feed) Fetch(ctx context.Context) (_ []json.RawMessage, err error) {
	defer obs.Time(ctx, f.logger, "tfnsw.FetchHazards")(&err)

	if f.apiKey == "" {
		return nil, errors.New("fetch hazards: TFNSW_API_KEY not set")
	}

	resp, err := f.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "apikey "+f.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch hazards: execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch hazards: read body: %w", err)
	}

	features, err := DecodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("fetch hazards: %w", err)
	}
	return features, nil
}
