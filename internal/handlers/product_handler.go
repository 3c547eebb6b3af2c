package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
)

// CatalogService es lo que los handlers de productos y categorías usan del catálogo
type CatalogService interface {
	Pager() catalog.Pager
	ListProducts(ctx context.Context, params catalog.Params, page, pageSize int) (*catalog.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

type ProductHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

func NewProductHandler(catalog CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// GET /v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, pageSize := paginationParams(c, h.catalog.Pager())

	result, err := h.catalog.ListProducts(c.Request.Context(), params, page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// GET /v1/products/featured
func (h *ProductHandler) FeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.catalog.FeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, products)
}

// GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, product)
}

// POST /v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := bindJSON(c, &product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.catalog.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, product)
}

// PATCH /v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var update models.ProductUpdate
	if err := bindJSON(c, &update); err != nil {
		respondError(c, h.logger, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, product)
}

// DELETE /v1/products/:id (soft delete)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Métodos auxiliares ---

// listParams lee los filtros del listado; un precio que no es número es un error de validación
func listParams(c *gin.Context) (catalog.Params, error) {
	params := catalog.Params{
		Search:     c.Query("search"),
		CategoryID: strings.TrimSpace(c.Query("category")),
		Sort:       c.Query("sort"),
	}

	var err error
	if params.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return params, err
	}
	if params.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return params, err
	}
	return params, nil
}

func priceParam(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperr.Validation(name, "must be a number")
	}
	return &v, nil
}

// paginationParams lee page y limit; valores que no son números usan los defaults
// y el Pager se encarga de acotarlos
func paginationParams(c *gin.Context, pager catalog.Pager) (page, pageSize int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.Query("limit"))
	if err != nil {
		pageSize = pager.DefaultSize()
	}
	return page, pageSize
}
