package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                     config.Test,
		ServerHost:              "localhost",
		ServerPort:              "8080",
		SessionSecret:           "test-secret",
		SessionTTL:              time.Hour,
		SessionCookieName:       "recetario_session",
		CORSAllowedOrigins:      []string{"http://localhost:3000"},
		BcryptCost:              4,
		RateLimitLogin:          10,
		RateLimitRecipeCreation: 10,
	}
}

func TestNew(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	mr, rdb := testhelpers.SetupRedis(t)

	srv := New(testConfig(), db, rdb, nil, testhelpers.Logger())
	require.NotNil(t, srv)

	t.Run("health reports every dependency", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Status       string            `json:"status"`
				Dependencies map[string]string `json:"dependencies"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "healthy", body.Data.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, body.Data.Dependencies)
	})

	t.Run("allowed origin gets credentialed CORS headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unsupported method", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/recipes", nil)
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http_requests_total")
	})

	t.Run("health degrades when redis is down", func(t *testing.T) {
		mr.Close()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
	})
}

func TestShutdownBeforeStart(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	_, rdb := testhelpers.SetupRedis(t)

	srv := New(testConfig(), db, rdb, nil, testhelpers.Logger())
	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, srv.Start(), "a server shut down before it started does not listen")
}

func TestShutdownWhileServing(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	_, rdb := testhelpers.SetupRedis(t)
	cfg := testConfig()
	cfg.ServerPort = "0"

	srv := New(cfg, db, rdb, nil, testhelpers.Logger())
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
