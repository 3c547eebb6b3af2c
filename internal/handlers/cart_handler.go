package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type CartService interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error)
	Clear(ctx context.Context, userID string) (*models.Cart, error)
	ApplyCoupon(ctx context.Context, userID, code string) (*models.Cart, error)
	RemoveCoupon(ctx context.Context, userID string) (*models.Cart, error)
	SaveCoupon(ctx context.Context, coupon *models.Coupon) error
}

type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type CartHandler struct {
	carts  CartService
	logger *slog.Logger
}

func NewCartHandler(carts CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// GET /v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	h.respond(c)(h.carts.Get(c.Request.Context(), userID(c)))
}

// POST /v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	h.respond(c)(h.carts.AddItem(c.Request.Context(), userID(c), req.ProductID, qty))
}

// PATCH /v1/cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if req.Quantity == nil {
		respondError(c, h.logger, apperr.Validation("quantity", "is required"))
		return
	}

	h.respond(c)(h.carts.UpdateItem(c.Request.Context(), userID(c), c.Param("productId"), *req.Quantity))
}

// DELETE /v1/cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.respond(c)(h.carts.RemoveItem(c.Request.Context(), userID(c), c.Param("productId")))
}

// DELETE /v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.respond(c)(h.carts.Clear(c.Request.Context(), userID(c)))
}

// POST /v1/cart/coupon
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respond(c)(h.carts.ApplyCoupon(c.Request.Context(), userID(c), req.Code))
}

// DELETE /v1/cart/coupon
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	h.respond(c)(h.carts.RemoveCoupon(c.Request.Context(), userID(c)))
}

// PUT /v1/coupons
func (h *CartHandler) SaveCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := bindJSON(c, &coupon); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.carts.SaveCoupon(c.Request.Context(), &coupon); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, coupon)
}

// respond escribe el carrito recalculado o el error
func (h *CartHandler) respond(c *gin.Context) func(*models.Cart, error) {
	return func(cart *models.Cart, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		respondOK(c, http.StatusOK, cart)
	}
}
