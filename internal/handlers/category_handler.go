package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

type CategoryHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

func NewCategoryHandler(catalog CatalogService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// GET /v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, categories)
}

// GET /v1/categories/:slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, category)
}

// POST /v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var category models.Category
	if err := bindJSON(c, &category); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.catalog.CreateCategory(c.Request.Context(), &category); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, category)
}
