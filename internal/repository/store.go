package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store agrupa los repositorios de una base de datos
type Store struct {
	Products   *ProductRepository
	Categories *CategoryRepository
	Carts      *CartRepository
	Orders     *OrderRepository
	Coupons    *CouponRepository
}

func NewStore(db *mongo.Database, breaker *Breaker) *Store {
	return &Store{
		Products:   NewProductRepository(db.Collection("products"), breaker),
		Categories: NewCategoryRepository(db.Collection("categories"), breaker),
		Carts:      NewCartRepository(db.Collection("carts"), breaker),
		Orders:     NewOrderRepository(db.Collection("orders"), breaker),
		Coupons:    NewCouponRepository(db.Collection("coupons"), breaker),
	}
}

// EnsureIndexes crea los índices de todas las colecciones
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		s.Products.EnsureIndexes,
		s.Categories.EnsureIndexes,
		s.Carts.EnsureIndexes,
		s.Orders.EnsureIndexes,
		s.Coupons.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}
