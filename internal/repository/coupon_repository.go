package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const couponResource = "coupon"

type CouponRepository struct {
	collection *mongo.Collection
	breaker    *Breaker
}

func NewCouponRepository(collection *mongo.Collection, breaker *Breaker) *CouponRepository {
	return &CouponRepository{
		collection: collection,
		breaker:    breaker,
	}
}

func (r *CouponRepository) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}
	return nil
}

// FindByCode busca un cupón sin distinguir mayúsculas; los códigos se guardan en mayúsculas
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{"code": strings.ToUpper(strings.TrimSpace(code))}

	return execute(r.breaker, couponResource, func() (*models.Coupon, error) {
		var coupon models.Coupon
		if err := r.collection.FindOne(ctx, filter).Decode(&coupon); err != nil {
			return nil, classify(err, couponResource)
		}
		return &coupon, nil
	})
}

// Upsert crea o reemplaza un cupón por código
func (r *CouponRepository) Upsert(ctx context.Context, coupon *models.Coupon) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	opts := options.Replace().SetUpsert(true)

	return exec(r.breaker, couponResource, func() error {
		_, err := r.collection.ReplaceOne(ctx, bson.M{"code": coupon.Code}, coupon, opts)
		return classify(err, couponResource)
	})
}
