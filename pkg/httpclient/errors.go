package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// downstreamError accepts the error shapes the backend is known to return:
// {"error":{"code":..,"message":..}}, {"error":"..."} and {"message":"..."}.
type downstreamError struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type structuredError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads a non-2xx response and translates it into an
// AppError whose kind follows the status code. The backend's message is kept
// (qualified with serviceName) so callers can show it. The body is consumed
// and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	code, message := extractMessage(body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return mapDownstreamError(resp.StatusCode, code, message, serviceName)
}

func extractMessage(body []byte) (code, message string) {
	var d downstreamError
	if json.Unmarshal(body, &d) != nil {
		return "", strings.TrimSpace(string(body))
	}

	var se structuredError
	if len(d.Error) > 0 && json.Unmarshal(d.Error, &se) == nil && se.Message != "" {
		return se.Code, se.Message
	}
	var s string
	if len(d.Error) > 0 && json.Unmarshal(d.Error, &s) == nil && s != "" {
		return "", s
	}
	return "", d.Message
}

func mapDownstreamError(status int, code, message, serviceName string) error {
	qualified := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    string(apperrors.KindNotFound),
			Message: qualified,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return apperrors.Unavailable(qualified, nil)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	default:
		if code == "" {
			code = fmt.Sprintf("HTTP_%d", status)
		}
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
