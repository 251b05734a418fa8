package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/httputil"
)

const testSecret = "test-secret-key-for-jwt-signing"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// claimsEcho writes the caller's claims as JSON, or 204 when anonymous.
func claimsEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"user_id": c.UserID, "role": c.Role, "email": c.Email, "image": c.Image, "token": c.Token,
		})
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

// --- HS256Validator ---

func TestHS256Validator_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "user-123",
		"role":    "admin",
		"email":   "ada@example.com",
		"image":   "https://cdn.example.com/ada.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	c, err := HS256Validator(testSecret)(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", c.UserID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, "https://cdn.example.com/ada.png", c.Image)
	assert.Equal(t, token, c.Token)
	assert.True(t, c.IsAdmin())
}

func TestHS256Validator_SubFallbackAndDefaultRole(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-9"})

	c, err := HS256Validator(testSecret)(token)

	require.NoError(t, err)
	assert.Equal(t, "user-9", c.UserID)
	assert.Equal(t, RoleUser, c.Role)
	assert.False(t, c.IsAdmin())
}

func TestHS256Validator_NumericUserID(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"user_id": 42})

	c, err := HS256Validator(testSecret)(token)

	require.NoError(t, err)
	assert.Equal(t, "42", c.UserID)
}

func TestHS256Validator_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"user_id": "u"})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{"user_id": "u", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"no subject", signToken(t, testSecret, jwt.MapClaims{"role": "user"})},
		{"garbage", "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HS256Validator(testSecret)(tt.token)
			assert.Error(t, err)
		})
	}
}

// --- Auth ---

func TestAuth_ValidToken_StoresClaims(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"user_id": "user-123", "role": "user"})
	h := Auth(HS256Validator(testSecret))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "user-123", got["user_id"])
	assert.Equal(t, token, got["token"])
}

func TestAuth_MissingHeader_UnauthorizedWithRedirect(t *testing.T) {
	h := Auth(HS256Validator(testSecret))(claimsEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "UNAUTHORIZED", e.Code)
	assert.Equal(t, "missing authorization header", e.Message)
	assert.Equal(t, "/login", e.Redirect)
	assert.Equal(t, int64(3000), e.RedirectAfterMs)
}

func TestAuth_BadScheme(t *testing.T) {
	h := Auth(HS256Validator(testSecret))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid authorization header format", decodeError(t, rec).Message)
}

func TestAuth_InvalidToken(t *testing.T) {
	h := Auth(HS256Validator(testSecret))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong", jwt.MapClaims{"user_id": "u"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired token", decodeError(t, rec).Message)
}

// --- OptionalAuth ---

func TestOptionalAuth_Anonymous(t *testing.T) {
	h := OptionalAuth(HS256Validator(testSecret))(claimsEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOptionalAuth_InvalidTokenFallsBackToAnonymous(t *testing.T) {
	h := OptionalAuth(HS256Validator(testSecret))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	h := OptionalAuth(HS256Validator(testSecret))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"user_id": "u-1"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- RequireRole ---

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		claims *Claims
		status int
	}{
		{"admin allowed", &Claims{UserID: "a", Role: RoleAdmin}, http.StatusOK},
		{"user forbidden", &Claims{UserID: "u", Role: RoleUser}, http.StatusForbidden},
		{"anonymous unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestContextAccessors_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserIDFromContext(req.Context()))
	assert.Empty(t, RoleFromContext(req.Context()))
}
