package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
)

// Pinger verifica que el store responda
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping   Pinger
	logger *slog.Logger
}

func NewHealthHandler(ping Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, logger: logger}
}

// GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		respondError(c, h.logger, apperr.StoreUnavailable(err))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}
