package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

// CodeResponse is the catalog lookup body: the entry, its ancestry, and its
// immediate children.
type CodeResponse struct {
	Code            string               `json:"code"`
	DisplayCode     string               `json:"displayCode"`
	Level           catalog.Level        `json:"level"`
	Description     string               `json:"description"`
	FullDescription string               `json:"fullDescription"`
	BaseRate        string               `json:"baseRate,omitempty"`
	UnitOfQuantity  []string             `json:"unitOfQuantity,omitempty"`
	Ancestors       []*catalog.CodeEntry `json:"ancestors,omitempty"`
	Children        []*catalog.CodeEntry `json:"children,omitempty"`
}

// CatalogHandler serves direct catalog lookups.
type CatalogHandler struct {
	catalog catalog.Repository
	logger  logging.Logger
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(repo catalog.Repository, logger logging.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: repo, logger: logger.Named("catalog-handler")}
}

// GetCode handles GET /api/v1/codes/:code.
func (h *CatalogHandler) GetCode(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	entry, err := h.catalog.GetByCode(ctx, code)
	if err != nil {
		respondError(c, err)
		return
	}

	// Ancestry and children are presentation extras; their failures don't
	// block the lookup.
	ancestors, err := h.catalog.GetAncestors(ctx, entry.Code)
	if err != nil {
		h.logger.Warn("Ancestor lookup failed", logging.String("code", entry.Code), logging.Err(err))
		ancestors = nil
	}
	children, err := h.catalog.GetChildren(ctx, entry.Code)
	if err != nil {
		h.logger.Warn("Children lookup failed", logging.String("code", entry.Code), logging.Err(err))
		children = nil
	}

	c.JSON(http.StatusOK, &CodeResponse{
		Code:            entry.Code,
		DisplayCode:     catalog.Format(entry.Code),
		Level:           entry.Level,
		Description:     entry.Description,
		FullDescription: entry.FullDescription(ancestors),
		BaseRate:        entry.BaseRate,
		UnitOfQuantity:  entry.UnitOfQuantity,
		Ancestors:       ancestors,
		Children:        children,
	})
}

// GetChildren handles GET /api/v1/codes/:code/children.
func (h *CatalogHandler) GetChildren(c *gin.Context) {
	children, err := h.catalog.GetChildren(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	if children == nil {
		children = []*catalog.CodeEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"children": children})
}
