package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clearfreight/tariffscope/internal/application/classification"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// ClassifyHandler serves classification requests.
type ClassifyHandler struct {
	service classification.Service
	logger  logging.Logger
}

// NewClassifyHandler constructs a classify handler.
func NewClassifyHandler(service classification.Service, logger logging.Logger) *ClassifyHandler {
	return &ClassifyHandler{service: service, logger: logger.Named("classify-handler")}
}

// Classify handles POST /api/v1/classify.  A no-candidates outcome is a 200
// with success=false; only malformed requests and infrastructure failures
// produce error statuses.
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var input classification.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	includeTrace := c.Query("trace") == "true"

	result, err := h.service.Classify(c.Request.Context(), &input)
	if err != nil {
		h.logger.Error("Classification failed", logging.Err(err))
		respondError(c, err)
		return
	}

	if !includeTrace {
		result.Trace = nil
	}
	c.JSON(http.StatusOK, result)
}
