package repository

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/apperr"
)

// classify traduce un error del driver al error de la aplicación.
// Lo que no es un error del servidor se trata como store no disponible.
func classify(err error, resource string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound(resource)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Conflict("%s already exists", resource)
	case mongo.IsTimeout(err),
		mongo.IsNetworkError(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperr.StoreUnavailable(err)
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return apperr.Internal(resource+" query failed", err)
	}
	return apperr.StoreUnavailable(err)
}
