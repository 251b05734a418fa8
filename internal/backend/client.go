// Package backend is the typed client of the storefront's backend HTTP API.
// Every accessor forwards the caller's identity, unwraps the response
// envelope and turns non-2xx responses into typed application errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ServiceName qualifies backend error messages.
const ServiceName = "backend"

// Identity headers understood by the backend.
const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client calls the backend API.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, doer HTTPDoer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		logger:  logger,
	}
}

// do sends body as JSON and decodes the response into out when both are set.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	forwardIdentity(ctx, req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return c.transportError(ctx, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, ServiceName)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, method, path string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) || ctx.Err() != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		c.logger.WarnContext(ctx, "backend unreachable",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return apperrors.Unavailable("backend is unreachable", err)
	}
	return fmt.Errorf("%s %s: %w", method, path, err)
}

func forwardIdentity(ctx context.Context, req *http.Request) {
	if claims, ok := middleware.ClaimsFromContext(ctx); ok {
		req.Header.Set(HeaderUserID, claims.UserID)
		req.Header.Set(HeaderRole, claims.Role)
		if claims.Token != "" {
			req.Header.Set("Authorization", "Bearer "+claims.Token)
		}
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.CorrelationHeader, id)
	}
}

// call performs the request and returns the envelope member named field.
func call[T any](ctx context.Context, c *Client, method, path string, body any, field string) (T, error) {
	var zero T
	var envelope map[string]json.RawMessage
	if err := c.do(ctx, method, path, body, &envelope); err != nil {
		return zero, err
	}

	raw, ok := envelope[field]
	if !ok {
		return zero, fmt.Errorf("%s %s: response has no %q member", method, path, field)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, fmt.Errorf("decode %q from %s %s: %w", field, method, path, err)
	}
	return v, nil
}

// present turns a null envelope member into a NOT_FOUND error.
func present[T any](v *T, err error, resource, id string) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperrors.NotFound(resource, id)
	}
	return v, nil
}

// returned rejects a null envelope member on a mutation. The backend answered
// 2xx, so the change may have been applied; the caller gets INTERNAL.
func returned[T any](v *T, err error, resource string) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperrors.Internal(fmt.Errorf("backend returned no %s", resource))
	}
	return v, nil
}

func seg(id string) string { return url.PathEscape(id) }

// Ping checks that the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}
