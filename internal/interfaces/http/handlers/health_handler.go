package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

const readinessTimeout = 3 * time.Second

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.  Liveness always
// succeeds while the process runs; readiness pings the required
// dependencies.
type HealthHandler struct {
	checkers map[string]HealthChecker
	version  string
	logger   logging.Logger
}

// NewHealthHandler constructs a health handler over named dependency checks.
func NewHealthHandler(checkers map[string]HealthChecker, version string, logger logging.Logger) *HealthHandler {
	return &HealthHandler{checkers: checkers, version: version, logger: logger.Named("health-handler")}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Readiness handles GET /readyz.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", logging.String("dependency", name), logging.Err(err))
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := gin.H{"status": "ready", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
