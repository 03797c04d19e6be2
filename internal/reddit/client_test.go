package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tickerscout/tickerscout/internal/metrics"
)

func newTestClient(cooldown time.Duration) *Client {
	metrics.Init()
	return NewClient(ClientConfig{
		UserAgent:  "tickerscout-test/1.0",
		Timeout:    5 * time.Second,
		Cooldown:   cooldown,
		MaxRetries: 1,
	}, zap.NewNop())
}

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tickerscout-test/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"kind":"Listing"}`))
	}))
	defer srv.Close()

	body, err := newTestClient(time.Millisecond).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.JSONEq(t, `{"kind":"Listing"}`, string(body))
}

func TestFetchRetriesOnceAfterRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	body, err := newTestClient(time.Millisecond).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.EqualValues(t, 2, calls.Load())
}

func TestFetchGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(time.Millisecond).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrRateLimited)
	require.EqualValues(t, 2, calls.Load(), "one initial call plus one retry")
}

func TestFetchZeroRetriesFailsOnFirstRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	metrics.Init()
	client := NewClient(ClientConfig{
		UserAgent:  "tickerscout-test/1.0",
		Timeout:    5 * time.Second,
		Cooldown:   time.Hour,
		MaxRetries: 0,
	}, zap.NewNop())

	start := time.Now()
	_, err := client.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrRateLimited)
	require.EqualValues(t, 1, calls.Load(), "retries disabled: the first 429 is final")
	require.Less(t, time.Since(start), time.Second, "no cooldown wait without a retry")
}

func TestFetchWrapsHardFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(time.Millisecond).Fetch(context.Background(), srv.URL)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	require.Contains(t, httpErr.Body, "gone")
}

func TestFetchCooldownRespectsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(time.Hour).Fetch(ctx, srv.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))
	require.Less(t, time.Since(start), time.Second, "cooldown wait must end with the context")
}
