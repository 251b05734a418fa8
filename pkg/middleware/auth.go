package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

type contextKeyType string

const claimsKey contextKeyType = "claims"

// Roles recognized by RequireRole.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims is the session identity carried by a bearer token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Image  string `json:"image,omitempty"`

	// Token is the raw bearer token, forwarded to the backend on the caller's behalf.
	Token string `json:"-"`
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Claims) IsAdmin() bool { return c != nil && c.Role == RoleAdmin }

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

var errMissingSubject = errors.New("token carries no user_id")

// HS256Validator returns a validator for HMAC-signed session tokens. Expired
// tokens are rejected by the jwt parser.
func HS256Validator(secret string) TokenValidator {
	key := []byte(secret)
	return func(tokenString string) (*Claims, error) {
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}

		mc, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, errors.New("unexpected claims type")
		}

		c := &Claims{
			UserID: stringClaim(mc, "user_id"),
			Email:  stringClaim(mc, "email"),
			Role:   stringClaim(mc, "role"),
			Image:  stringClaim(mc, "image"),
			Token:  tokenString,
		}
		if c.UserID == "" {
			c.UserID = stringClaim(mc, "sub")
		}
		if c.UserID == "" {
			return nil, errMissingSubject
		}
		if c.Role == "" {
			c.Role = RoleUser
		}
		return c, nil
	}
}

func stringClaim(mc jwt.MapClaims, name string) string {
	switch v := mc[name].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

// Auth rejects requests without a valid bearer token. Rejections are
// UNAUTHORIZED errors, so clients receive the login redirect hint.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				httputil.WriteError(w, r, apperrors.Unauthorized(err.Error()), nil)
				return
			}

			claims, err := validate(token)
			if err != nil {
				logger.FromContext(r.Context()).DebugContext(r.Context(), "token rejected",
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, err := bearerToken(r); err == nil {
				if claims, err := validate(token); err == nil {
					r = r.WithContext(withIdentity(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
				return
			}
			if _, ok := roleSet[claims.Role]; !ok {
				httputil.WriteError(w, r, apperrors.Forbidden("insufficient permissions"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

func withIdentity(ctx context.Context, c *Claims) context.Context {
	ctx = WithClaims(ctx, c)
	ctx = logger.WithUserID(ctx, c.UserID)
	ctx = logger.WithRole(ctx, c.Role)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("enduser.id", c.UserID),
		attribute.String("enduser.role", c.Role),
	)
	l := logger.FromContext(ctx).With(
		slog.String("user_id", c.UserID),
		slog.String("role", c.Role),
	)
	return logger.NewContext(ctx, l)
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the caller's claims, if authenticated.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok {
		return c.UserID
	}
	return ""
}

// RoleFromContext extracts the user role from the request context.
func RoleFromContext(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok {
		return c.Role
	}
	return ""
}
