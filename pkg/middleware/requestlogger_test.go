package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/logger"
)

// logLine runs one request through RequestLogger and returns the single JSON
// line the handler logged.
func logLine(t *testing.T, req *http.Request) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	base := logger.NewWithWriter("storefront", "info", &buf)

	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("cart loaded")
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRequestLogger_UsesBaseLogger(t *testing.T) {
	out := logLine(t, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, "cart loaded", out["msg"])
	assert.Equal(t, "storefront", out["service"])
	assert.NotContains(t, out, "user_id")
}

func TestRequestLogger_CorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil).WithContext(ctx)

	out := logLine(t, req)

	assert.Equal(t, "corr-42", out["correlation_id"])
}

func TestRequestLogger_UserIDFromVerifiedClaims(t *testing.T) {
	ctx := WithClaims(context.Background(), &Claims{UserID: "u-1", Role: RoleUser})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil).WithContext(ctx)

	out := logLine(t, req)

	assert.Equal(t, "u-1", out["user_id"])
}

func TestRequestLogger_IgnoresUserIDHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "spoofed")

	out := logLine(t, req)

	assert.NotContains(t, out, "user_id")
}

func TestRequestLogger_TraceFields(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil).WithContext(ctx)

	out := logLine(t, req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}
