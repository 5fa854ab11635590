// Package http assembles the gin route tree and the server lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/prometheus"
	"github.com/clearfreight/tariffscope/internal/interfaces/http/handlers"
	"github.com/clearfreight/tariffscope/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies for the
// route tree.
type RouterConfig struct {
	ClassifyHandler *handlers.ClassifyHandler
	DutyHandler     *handlers.DutyHandler
	CatalogHandler  *handlers.CatalogHandler
	HealthHandler   *handlers.HealthHandler

	// MetricsHandler serves the exposition endpoint; nil disables it.
	MetricsHandler http.Handler

	// Metrics records per-request observations; nil disables them.
	Metrics *prometheus.AppMetrics

	AllowedOrigins []string
	Mode           string
	Logger         logging.Logger
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	{
		if cfg.ClassifyHandler != nil {
			api.POST("/classify", cfg.ClassifyHandler.Classify)
		}
		if cfg.DutyHandler != nil {
			api.POST("/duty", cfg.DutyHandler.Calculate)
		}
		if cfg.CatalogHandler != nil {
			api.GET("/codes/:code", cfg.CatalogHandler.GetCode)
			api.GET("/codes/:code/children", cfg.CatalogHandler.GetChildren)
		}
	}

	return r
}
