package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
)

const retryAfterSeconds = "5"

// SuccessResponse es el sobre de toda respuesta exitosa
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

// respondError traduce err a su status HTTP. Los errores internos se registran
// completos y al cliente solo le llega un mensaje genérico.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	body := ErrorBody{Code: string(apperr.KindOf(err)), Message: "internal server error"}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		body.Message = appErr.Message
		body.Field = appErr.Field
	}

	status := statusFor(apperr.KindOf(err))
	switch status {
	case http.StatusServiceUnavailable:
		c.Header("Retry-After", retryAfterSeconds)
		logger.Warn("store unavailable", "path", c.FullPath(), "request_id", requestID(c), "error", err)
	case http.StatusInternalServerError:
		logger.Error("request failed", "path", c.FullPath(), "request_id", requestID(c), "error", err)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: body})
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Success: false,
		Error:   ErrorBody{Code: "unauthorized", Message: message},
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodifica el cuerpo; un JSON inválido es un error de validación
func bindJSON(c *gin.Context, target any) error {
	if err := c.ShouldBindJSON(target); err != nil {
		return apperr.Validation("body", "invalid JSON body")
	}
	return nil
}
