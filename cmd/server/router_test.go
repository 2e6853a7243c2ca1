package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge-app/taskforge-api/internal/config"
	"github.com/taskforge-app/taskforge-api/internal/service/auth"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Auth: config.AuthConfig{
			JWTSecret:            "router-test-secret-key-32-characters",
			TokenLifetimeMinutes: 60,
		},
		Storage: config.StorageConfig{
			Backend:    "local",
			LocalDir:   t.TempDir(),
			PublicPath: "/uploads",
		},
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	app := &application{
		config:     cfg,
		logger:     slog.Default(),
		jwtService: jwtService,
		uploadsDir: cfg.Storage.LocalDir,
	}
	return app
}

func TestRouterHealth(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterTasksRequireAuth(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodPut, "/tasks/9e9c44b3-23f4-4b44-bd22-2c4f5c6f9f30"},
		{http.MethodDelete, "/tasks/9e9c44b3-23f4-4b44-bd22-2c4f5c6f9f30"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code,
			"%s %s should require authentication", route.method, route.path)
	}
}

func TestRouterAuthEndpointsArePublic(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	// No body: the handler rejects the request, but not with a 401 or 404.
	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
