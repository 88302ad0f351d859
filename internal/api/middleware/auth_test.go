package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/checkout/internal/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	hash, err := auth.HashAPIKey("sk_test_0123456789abcdef")
	require.NoError(t, err)
	handler := APIKeyMiddleware(hash)(okHandler())

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"valid key", "sk_test_0123456789abcdef", http.StatusOK},
		{"wrong key", "sk_test_fedcba9876543210", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	svc := auth.NewJWTService("test-secret-key-that-is-long-enough", time.Hour)
	token, _, err := svc.GenerateToken("ops-1", auth.RoleAdmin)
	require.NoError(t, err)

	var gotClaims *auth.Claims
	handler := JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, auth.RoleAdmin, gotClaims.Role)
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	svc := auth.NewJWTService("test-secret-key-that-is-long-enough", time.Hour)
	handler := JWTMiddleware(svc)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	svc := auth.NewJWTService("test-secret-key-that-is-long-enough", time.Hour)
	handler := JWTMiddleware(svc)(RequireRole(auth.RoleAdmin)(okHandler()))

	adminToken, _, err := svc.GenerateToken("ops-1", auth.RoleAdmin)
	require.NoError(t, err)
	viewerToken, _, err := svc.GenerateToken("ops-2", "viewer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+viewerToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
