package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"innkeep/internal/config"

	"github.com/stretchr/testify/assert"
)

func authConfig() config.APIConfig {
	return config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: "desk-key", Name: "front-desk"},
				{Key: "site-key", Name: "booking-site", Permissions: []string{"read:rooms", "read:availability", "write:reservations"}},
			},
		},
	}
}

func authRequest(auth *HTTPAuth, method, path, apiKey string) *httptest.ResponseRecorder {
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthMissingKey(t *testing.T) {
	auth := NewHTTPAuth(authConfig())
	rec := authRequest(auth, http.MethodGet, "/api/v1/rooms", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidKey(t *testing.T) {
	auth := NewHTTPAuth(authConfig())
	rec := authRequest(auth, http.MethodGet, "/api/v1/rooms", "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidKey(t *testing.T) {
	auth := NewHTTPAuth(authConfig())
	rec := authRequest(auth, http.MethodGet, "/api/v1/rooms", "site-key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHealthStaysOpen(t *testing.T) {
	auth := NewHTTPAuth(authConfig())
	rec := authRequest(auth, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthPermissions(t *testing.T) {
	auth := NewHTTPAuth(authConfig())

	// The site key may create reservations but not check guests out.
	rec := authRequest(auth, http.MethodPost, "/api/v1/reservations", "site-key")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = authRequest(auth, http.MethodPost, "/api/v1/reservations/3/checkout", "site-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = authRequest(auth, http.MethodGet, "/api/v1/history", "site-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An empty permissions list is allow-all.
	rec = authRequest(auth, http.MethodPost, "/api/v1/reservations/3/checkout", "desk-key")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = authRequest(auth, http.MethodGet, "/api/v1/history", "desk-key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthDisabledSkipsKeyCheck(t *testing.T) {
	cfg := authConfig()
	cfg.Auth.Enabled = false
	auth := NewHTTPAuth(cfg)

	rec := authRequest(auth, http.MethodGet, "/api/v1/rooms", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitPerKey(t *testing.T) {
	cfg := authConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}
	auth := NewHTTPAuth(cfg)

	// Burst allows the first two, the third is rejected.
	for i := 0; i < 2; i++ {
		rec := authRequest(auth, http.MethodGet, "/api/v1/rooms", "desk-key")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
	rec := authRequest(auth, http.MethodGet, "/api/v1/rooms", "desk-key")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Another key has its own limiter.
	rec = authRequest(auth, http.MethodGet, "/api/v1/rooms", "site-key")
	assert.Equal(t, http.StatusOK, rec.Code)
}
