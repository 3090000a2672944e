package api_gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/api_gateway/middleware"
	"github.com/library-lending-engine/internal/config"
	"github.com/stretchr/testify/assert"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server:      config.ServerConfig{Port: 0, WriteTimeout: time.Second},
	}
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, Services{})
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	t.Run("Health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		srv.Handler().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, rr.Header().Get(middleware.CorrelationIDHeader))
	})

	t.Run("InvalidIDNeverReachesServices", func(t *testing.T) {
		for _, path := range []string{
			"/api/v1/items/x",
			"/api/v1/members/x",
			"/api/v1/members/x/loans",
			"/api/v1/members/x/history",
			"/api/v1/transactions/x",
			"/api/v1/fines/x",
		} {
			rr := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, path, nil)
			srv.Handler().ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		}
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts/"+uuid.NewString(), nil)
		srv.Handler().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv := newTestServer()
	assert.NoError(t, srv.Stop(context.Background()))
}
