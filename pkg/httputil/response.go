package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Response is the standard JSON response envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
// Redirect is only set for UNAUTHORIZED errors: clients show the message,
// wait RedirectAfterMs, then navigate.
type ErrorResponse struct {
	Code            string            `json:"code"`
	Message         string            `json:"message"`
	Fields          map[string]string `json:"fields,omitempty"`
	RequestID       string            `json:"request_id,omitempty"`
	Redirect        string            `json:"redirect,omitempty"`
	RedirectAfterMs int64             `json:"redirect_after_ms,omitempty"`
}

type loginRedirect struct {
	path  string
	after time.Duration
}

var redirect atomic.Pointer[loginRedirect]

func init() {
	SetLoginRedirect("/login", 3*time.Second)
}

// SetLoginRedirect configures where UNAUTHORIZED responses send the client.
func SetLoginRedirect(path string, after time.Duration) {
	redirect.Store(&loginRedirect{path: path, after: after})
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps v in the data envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError classifies err by kind and writes the matching envelope.
// AppError messages are passed through to the client as-is; bare internal
// errors are masked and logged with the request-scoped logger when present.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(err)
	body := &ErrorResponse{
		Code:      string(kind),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		body.Code = appErr.Code
		body.Message = appErr.Message
	case kind == apperrors.KindInternal:
		body.Message = "an internal error occurred"
	default:
		body.Message = err.Error()
	}

	if kind == apperrors.KindUnauthorized {
		rd := redirect.Load()
		body.Redirect = rd.path
		body.RedirectAfterMs = rd.after.Milliseconds()
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}

// WriteValidationError writes a 400 for request decoding or validation failures.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: string(apperrors.KindInvalidInput), Message: err.Error()},
	})
}

// RequireParam returns the trimmed value or writes a 400 naming the parameter
// and returns false, signaling the caller to return early.
func RequireParam(w http.ResponseWriter, name, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "missing path parameter: " + name,
			},
		})
		return "", false
	}
	return value, true
}
