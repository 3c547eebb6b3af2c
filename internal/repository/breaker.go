package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"storefront/internal/apperr"
)

// Breaker corta las llamadas a MongoDB después de fallas consecutivas de disponibilidad.
// NotFound, Conflict, errores de validación y requests cancelados por el cliente
// no cuentan como fallas.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

type BreakerSettings struct {
	Name             string
	MaxFailures      uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "mongodb",
		MaxFailures:      5,
		OpenTimeout:      10 * time.Second,
		HalfOpenRequests: 1,
	}
}

func NewBreaker(settings BreakerSettings, logger *slog.Logger) *Breaker {
	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.HalfOpenRequests,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return !apperr.Retryable(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](st)}
}

// execute corre fn dentro del breaker; un breaker nil la ejecuta directo.
// fn debe devolver errores ya clasificados.
func execute[T any](b *Breaker, resource string, fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}
	v, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, classify(err, resource)
	}
	return v.(T), nil
}

// exec es execute para operaciones sin resultado
func exec(b *Breaker, resource string, fn func() error) error {
	_, err := execute(b, resource, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
