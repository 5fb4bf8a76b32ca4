package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	c := New(2*time.Second, 0)
	c.Backoff = time.Millisecond
	return c
}

func getter(ctx context.Context, url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDoWithRetryRecoversFromTransientStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx := context.Background()
	resp, err := newTestClient().DoWithRetry(ctx, getter(ctx, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoWithRetryDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	ctx := context.Background()
	_, err := newTestClient().DoWithRetry(ctx, getter(ctx, srv.URL))
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "bad token", se.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient()
	ctx := context.Background()
	_, err := c.DoWithRetry(ctx, getter(ctx, srv.URL))
	require.Error(t, err)
	assert.Equal(t, int32(c.MaxAttempts), atomic.LoadInt32(&calls))
}

func TestDoWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().DoWithRetry(ctx, getter(ctx, "http://127.0.0.1:1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&StatusError{Code: 502}))
	assert.False(t, Retryable(&StatusError{Code: 404}))
	assert.False(t, Retryable(errors.New("plain")))
	assert.False(t, Retryable(context.DeadlineExceeded))
}
