package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/orders"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, req orders.PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, userID, id string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error)
}

type PlaceOrderResponse struct {
	OrderID string        `json:"orderId"`
	Order   *models.Order `json:"order"`
}

type OrderPage struct {
	Orders []models.Order `json:"orders"`
	catalog.PageInfo
}

type OrderHandler struct {
	orders  OrderService
	pager   catalog.Pager
	metrics *metrics.ServerMetrics
	logger  *slog.Logger
}

// NewOrderHandler arma el handler; m puede ser nil
func NewOrderHandler(orders OrderService, pager catalog.Pager, m *metrics.ServerMetrics, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		pager:   pager,
		metrics: m,
		logger:  logger,
	}
}

// POST /v1/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req orders.PlaceOrderRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Orders.Inc()
	}

	respondOK(c, http.StatusCreated, PlaceOrderResponse{OrderID: order.ID.Hex(), Order: order})
}

// GET /v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page := h.pager.Page(paginationParams(c, h.pager))

	items, total, err := h.orders.ListOrders(c.Request.Context(), userID(c), page.Skip(), page.Limit())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, OrderPage{Orders: items, PageInfo: page.Info(total)})
}

// GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}
