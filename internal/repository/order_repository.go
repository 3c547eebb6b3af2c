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

const orderResource = "order"

type OrderRepository struct {
	collection *mongo.Collection
	breaker    *Breaker
}

func NewOrderRepository(collection *mongo.Collection, breaker *Breaker) *OrderRepository {
	return &OrderRepository{
		collection: collection,
		breaker:    breaker,
	}
}

func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// Create inserta una orden nueva
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return exec(r.breaker, orderResource, func() error {
		_, err := r.collection.InsertOne(ctx, order)
		return classify(err, orderResource)
	})
}

// FindByID busca una orden del usuario; las órdenes de otros usuarios no existen para él
func (r *OrderRepository) FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "user_id": userID}

	return execute(r.breaker, orderResource, func() (*models.Order, error) {
		var order models.Order
		if err := r.collection.FindOne(ctx, filter).Decode(&order); err != nil {
			return nil, classify(err, orderResource)
		}
		return &order, nil
	})
}

// ListByUser devuelve las órdenes del usuario, más nuevas primero
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"user_id": userID}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	type result struct {
		orders []models.Order
		total  int64
	}

	res, err := execute(r.breaker, orderResource, func() (result, error) {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return result{}, classify(err, orderResource)
		}

		cursor, err := r.collection.Find(ctx, filter, findOptions)
		if err != nil {
			return result{}, classify(err, orderResource)
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			return result{}, classify(err, orderResource)
		}
		return result{orders: orders, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return res.orders, res.total, nil
}
