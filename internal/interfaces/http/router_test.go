package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/internal/interfaces/http/handlers"
	"github.com/clearfreight/tariffscope/internal/interfaces/http/middleware"
)

func TestRouterHealthAndRequestID(t *testing.T) {
	r := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil, "test", logging.NewNopLogger()),
		Mode:          gin.TestMode,
		Logger:        logging.NewNopLogger(),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get(middleware.RequestIDHeader))
}

func TestRouterEchoesCallerRequestID(t *testing.T) {
	r := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil, "test", logging.NewNopLogger()),
		Mode:          gin.TestMode,
		Logger:        logging.NewNopLogger(),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "caller-id-42")
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	assert.Equal(t, "caller-id-42", recorder.Header().Get(middleware.RequestIDHeader))
}

func TestRouterCORSPreflight(t *testing.T) {
	r := NewRouter(RouterConfig{
		Mode:           gin.TestMode,
		Logger:         logging.NewNopLogger(),
		AllowedOrigins: []string{"https://portal.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/classify", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://portal.example.com",
		recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: gin.TestMode, Logger: logging.NewNopLogger()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
