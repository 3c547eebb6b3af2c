package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const cartResource = "cart"

type CartRepository struct {
	collection *mongo.Collection
	breaker    *Breaker
}

func NewCartRepository(collection *mongo.Collection, breaker *Breaker) *CartRepository {
	return &CartRepository{
		collection: collection,
		breaker:    breaker,
	}
}

// EnsureIndexes garantiza un carrito por usuario y expira los abandonados
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 días
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}

// GetOrCreate devuelve el carrito del usuario y lo crea vacío en el primer acceso
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"user_id":    userID,
			"items":      bson.A{},
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	cart, err := execute(r.breaker, cartResource, func() (*models.Cart, error) {
		var cart models.Cart
		err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart)
		// dos upserts simultáneos del mismo usuario: uno gana el índice único, el otro relee
		if mongo.IsDuplicateKeyError(err) {
			err = r.collection.FindOne(ctx, filter).Decode(&cart)
		}
		if err != nil {
			return nil, classify(err, cartResource)
		}
		return &cart, nil
	})
	if err != nil {
		return nil, err
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// Save reemplaza el documento completo del carrito; la última escritura gana
func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	opts := options.Replace().SetUpsert(true)

	return exec(r.breaker, cartResource, func() error {
		_, err := r.collection.ReplaceOne(ctx, bson.M{"user_id": cart.UserID}, cart, opts)
		return classify(err, cartResource)
	})
}

// Clear vacía el carrito y quita el cupón aplicado
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"items": bson.A{}, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"coupon": ""},
	}

	return exec(r.breaker, cartResource, func() error {
		_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
		return classify(err, cartResource)
	})
}
