package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backendStub answers every request with whatever status is currently set.
type backendStub struct {
	status atomic.Int32
	calls  atomic.Int32
	srv    *httptest.Server
}

func newBackendStub(t *testing.T, status int) *backendStub {
	t.Helper()
	b := &backendStub{}
	b.status.Store(int32(status))
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		b.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(b.status.Load()))
		_, _ = w.Write([]byte(`{"error":{"code":"X","message":"cart store offline"}}`))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

// newBreaker builds a breaker that trips after three consecutive failures and
// probes again after openFor.
func newBreaker(openFor time.Duration) *CircuitBreakerClient {
	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	return NewCircuitBreakerClient(New(cfg), CircuitBreakerConfig{
		Name:         "backend",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      openFor,
		FailureRatio: 1,
		MinRequests:  3,
	}, testLogger())
}

func getCart(t *testing.T, cb *CircuitBreakerClient, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url+"/cart", http.NoBody)
	require.NoError(t, err)
	resp, err := cb.Do(context.Background(), req)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	b := newBackendStub(t, http.StatusOK)
	cb := newBreaker(time.Minute)

	resp, err := getCart(t, cb, b.srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ServerErrorIsTyped(t *testing.T) {
	tests := []struct {
		status int
		kind   apperrors.Kind
	}{
		{http.StatusServiceUnavailable, apperrors.KindUnavailable},
		{http.StatusInternalServerError, apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			b := newBackendStub(t, tt.status)
			resp, err := getCart(t, newBreaker(time.Minute), b.srv.URL)

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), "cart store offline")
		})
	}
}

func TestCircuitBreaker_OpensAndRejectsWithoutCalling(t *testing.T) {
	b := newBackendStub(t, http.StatusBadGateway)
	cb := newBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		_, err := getCart(t, cb, b.srv.URL)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := getCart(t, cb, b.srv.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "backend is temporarily unavailable")
	assert.Equal(t, int32(3), b.calls.Load(), "open breaker must not reach the backend")
}

func TestCircuitBreaker_HalfOpenProbeCloses(t *testing.T) {
	b := newBackendStub(t, http.StatusServiceUnavailable)
	cb := newBreaker(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_, _ = getCart(t, cb, b.srv.URL)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	b.status.Store(http.StatusOK)
	require.Eventually(t, func() bool {
		return cb.State() == gobreaker.StateHalfOpen
	}, time.Second, 10*time.Millisecond)

	resp, err := getCart(t, cb, b.srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusUnprocessableEntity} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			b := newBackendStub(t, status)
			cb := newBreaker(time.Minute)

			for i := 0; i < 5; i++ {
				resp, err := getCart(t, cb, b.srv.URL)
				require.NoError(t, err)
				assert.Equal(t, status, resp.StatusCode)
			}
			assert.Equal(t, gobreaker.StateClosed, cb.State())
		})
	}
}

func TestCircuitBreaker_CallerCancellationDoesNotTrip(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	cb := newBreaker(time.Minute)
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/products", http.NoBody)
		require.NoError(t, err)

		stop := time.AfterFunc(10*time.Millisecond, cancel)
		_, err = cb.Do(ctx, req)
		stop.Stop()
		cancel()
		require.ErrorIs(t, err, context.Canceled)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("backend")

	assert.Equal(t, "backend", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.InDelta(t, 0.5, cfg.FailureRatio, 1e-9)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}
