package toll

import (
	"context"
	"encoding/json"
	"fmt"
	"freightflow/internal/domain"
	"freightflow/internal/platform/httpx"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blacktown = domain.Coordinates{Lon: 150.9083, Lat: -33.7667}
	mascot    = domain.Coordinates{Lon: 151.1799, Lat: -33.9399}
)

func newTestProvider(t *testing.T, key string, h http.HandlerFunc) *TfNSWProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := httpx.New(5*time.Second, 0)
	client.Backoff = time.Millisecond
	return NewTfNSWProvider(key, srv.URL, client, nil)
}

func TestTfNSWPrice(t *testing.T) {
	p := newTestProvider(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "apikey secret", r.Header.Get("Authorization"))

		var req priceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, point{Lat: -33.7667, Lon: 150.9083}, req.Start)
		assert.Equal(t, point{Lat: -33.9399, Lon: 151.1799}, req.End)
		assert.Equal(t, "car", req.VehicleType)
		assert.Len(t, req.Waypoints, 2)

		fmt.Fprint(w, `{"totalToll": 12.47}`)
	})

	price, err := p.Price(context.Background(), blacktown, mascot, "car", []domain.Coordinates{blacktown, mascot})
	require.NoError(t, err)
	assert.InDelta(t, 12.47, price, 1e-9)
}

func TestTfNSWPriceMissingTotal(t *testing.T) {
	p := newTestProvider(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	price, err := p.Price(context.Background(), blacktown, mascot, "car", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, price)
}

func TestTfNSWPriceErrors(t *testing.T) {
	p := newTestProvider(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a key")
	})
	_, err := p.Price(context.Background(), blacktown, mascot, "car", nil)
	require.ErrorIs(t, err, ErrNoAPIKey)

	p = newTestProvider(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad vehicle", http.StatusBadRequest)
	})
	_, err = p.Price(context.Background(), blacktown, mascot, "spaceship", nil)
	var se *httpx.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
}
