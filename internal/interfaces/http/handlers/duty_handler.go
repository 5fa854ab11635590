package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// DutyRequest is the calculation request body.  BaseRate is optional; when
// omitted it is resolved from the catalog.
type DutyRequest struct {
	Code            string  `json:"code" binding:"required"`
	BaseRate        string  `json:"baseRate"`
	CountryOfOrigin string  `json:"countryOfOrigin"`
	UnitValue       float64 `json:"unitValue"`
}

// DutyHandler serves standalone duty calculations.
type DutyHandler struct {
	service duty.Service
	catalog catalog.Repository
	logger  logging.Logger
}

// NewDutyHandler constructs a duty handler.
func NewDutyHandler(service duty.Service, repo catalog.Repository, logger logging.Logger) *DutyHandler {
	return &DutyHandler{service: service, catalog: repo, logger: logger.Named("duty-handler")}
}

// Calculate handles POST /api/v1/duty.
func (h *DutyHandler) Calculate(c *gin.Context) {
	var req DutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	baseRate := req.BaseRate
	if baseRate == "" {
		resolved, err := h.resolveBaseRate(c.Request.Context(), req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		baseRate = resolved
	}

	breakdown, err := h.service.Calculate(c.Request.Context(), &duty.Input{
		Code:            req.Code,
		BaseRate:        baseRate,
		CountryOfOrigin: req.CountryOfOrigin,
		UnitValue:       req.UnitValue,
	})
	if err != nil {
		h.logger.Error("Duty calculation failed", logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// resolveBaseRate walks from the requested code up to the nearest ancestor
// carrying a published rate; statistical entries usually inherit the
// tariff-line rate.
func (h *DutyHandler) resolveBaseRate(ctx context.Context, code string) (string, error) {
	entry, err := h.catalog.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if entry.BaseRate != "" {
		return entry.BaseRate, nil
	}

	for parent := catalog.ParentCode(entry.Code); parent != ""; parent = catalog.ParentCode(parent) {
		ancestor, err := h.catalog.GetByCode(ctx, parent)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return "", err
		}
		if ancestor.BaseRate != "" {
			return ancestor.BaseRate, nil
		}
	}
	return "", nil
}
