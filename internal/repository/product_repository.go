package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

const productResource = "product"

// notDeleted filtra los productos con borrado lógico
var notDeleted = bson.M{"$ne": true}

type ProductRepository struct {
	collection *mongo.Collection
	breaker    *Breaker
}

func NewProductRepository(collection *mongo.Collection, breaker *Breaker) *ProductRepository {
	return &ProductRepository{
		collection: collection,
		breaker:    breaker,
	}
}

// EnsureIndexes crea los índices usados por los filtros y ordenamientos del listado
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "rating.average", Value: -1}}},
		{Keys: bson.D{{Key: "featured", Value: 1}, {Key: "in_stock", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// Create inserta un producto; el ID y los timestamps los asigna el llamador
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return exec(r.breaker, productResource, func() error {
		_, err := r.collection.InsertOne(ctx, product)
		return classify(err, productResource)
	})
}

// FindByID obtiene un producto por ID
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":        id,
		"is_deleted": notDeleted,
	}

	return execute(r.breaker, productResource, func() (*models.Product, error) {
		var product models.Product
		if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
			return nil, classify(err, productResource)
		}
		return &product, nil
	})
}

// Find lista productos con filtro, orden y paginación. El conteo corre en paralelo
// con la búsqueda, así que no es una lectura atómica frente a escrituras concurrentes.
func (r *ProductRepository) Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	type result struct {
		products []models.Product
		total    int64
	}

	res, err := execute(r.breaker, productResource, func() (result, error) {
		var out result
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			total, err := r.collection.CountDocuments(gctx, filter)
			if err != nil {
				return err
			}
			out.total = total
			return nil
		})

		g.Go(func() error {
			findOptions := options.Find().
				SetSort(sort).
				SetSkip(skip).
				SetLimit(limit)

			cursor, err := r.collection.Find(gctx, filter, findOptions)
			if err != nil {
				return err
			}
			defer cursor.Close(gctx)

			return cursor.All(gctx, &out.products)
		})

		if err := g.Wait(); err != nil {
			return result{}, classify(err, productResource)
		}
		return out, nil
	})
	if err != nil {
		return nil, 0, err
	}

	if res.products == nil {
		res.products = []models.Product{}
	}
	return res.products, res.total, nil
}

// FindFeatured devuelve los destacados con stock, más nuevos primero
func (r *ProductRepository) FindFeatured(ctx context.Context, limit int64) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"featured":   true,
		"in_stock":   true,
		"is_deleted": notDeleted,
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	return execute(r.breaker, productResource, func() ([]models.Product, error) {
		cursor, err := r.collection.Find(ctx, filter, findOptions)
		if err != nil {
			return nil, classify(err, productResource)
		}
		defer cursor.Close(ctx)

		products := []models.Product{}
		if err := cursor.All(ctx, &products); err != nil {
			return nil, classify(err, productResource)
		}
		return products, nil
	})
}

// Update aplica un $set parcial; updated_at lo agrega el servicio
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":        id,
		"is_deleted": notDeleted,
	}

	return exec(r.breaker, productResource, func() error {
		result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": fields})
		if err != nil {
			return classify(err, productResource)
		}
		if result.MatchedCount == 0 {
			return apperr.NotFound(productResource)
		}
		return nil
	})
}

// SoftDelete marca un producto como eliminado
func (r *ProductRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":        id,
		"is_deleted": notDeleted,
	}

	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
		},
	}

	return exec(r.breaker, productResource, func() error {
		result, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return classify(err, productResource)
		}
		if result.MatchedCount == 0 {
			return apperr.NotFound(productResource)
		}
		return nil
	})
}

// ReserveStock descuenta qty del stock solo si alcanza; si no, devuelve Conflict.
// in_stock se recalcula en la misma actualización.
func (r *ProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	if qty < 1 {
		return apperr.Validation("quantity", "must be at least 1")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":            id,
		"is_deleted":     notDeleted,
		"stock_quantity": bson.M{"$gte": qty},
	}

	return exec(r.breaker, productResource, func() error {
		result, err := r.collection.UpdateOne(ctx, filter, stockUpdate(-qty))
		if err != nil {
			return classify(err, productResource)
		}
		if result.MatchedCount == 0 {
			return apperr.Conflict("not enough stock for product %s", id.Hex())
		}
		return nil
	})
}

// ReleaseStock devuelve qty al stock de un producto reservado antes
func (r *ProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	if qty < 1 {
		return apperr.Validation("quantity", "must be at least 1")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return exec(r.breaker, productResource, func() error {
		result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, stockUpdate(qty))
		if err != nil {
			return classify(err, productResource)
		}
		if result.MatchedCount == 0 {
			return apperr.NotFound(productResource)
		}
		return nil
	})
}

func stockUpdate(delta int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"stock_quantity": bson.M{"$add": bson.A{"$stock_quantity", delta}},
			"updated_at":     time.Now().UTC(),
		}}},
		{{Key: "$set", Value: bson.M{
			"in_stock": bson.M{"$gt": bson.A{"$stock_quantity", 0}},
		}}},
	}
}
