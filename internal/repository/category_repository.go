package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const categoryResource = "category"

type CategoryRepository struct {
	collection *mongo.Collection
	breaker    *Breaker
}

func NewCategoryRepository(collection *mongo.Collection, breaker *Breaker) *CategoryRepository {
	return &CategoryRepository{
		collection: collection,
		breaker:    breaker,
	}
}

// EnsureIndexes crea los índices únicos de nombre y slug
func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create category indexes: %w", err)
	}
	return nil
}

// List devuelve todas las categorías ordenadas por nombre
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	return execute(r.breaker, categoryResource, func() ([]models.Category, error) {
		cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
		if err != nil {
			return nil, classify(err, categoryResource)
		}
		defer cursor.Close(ctx)

		categories := []models.Category{}
		if err := cursor.All(ctx, &categories); err != nil {
			return nil, classify(err, categoryResource)
		}
		return categories, nil
	})
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

// MatchingIDs devuelve los IDs de las categorías cuyo nombre contiene search
func (r *CategoryRepository) MatchingIDs(ctx context.Context, search string) ([]primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}}
	findOptions := options.Find().SetProjection(bson.M{"_id": 1})

	return execute(r.breaker, categoryResource, func() ([]primitive.ObjectID, error) {
		cursor, err := r.collection.Find(ctx, filter, findOptions)
		if err != nil {
			return nil, classify(err, categoryResource)
		}
		defer cursor.Close(ctx)

		var docs []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, classify(err, categoryResource)
		}

		ids := make([]primitive.ObjectID, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		return ids, nil
	})
}

// Create inserta una categoría; nombre o slug repetidos devuelven Conflict
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return exec(r.breaker, categoryResource, func() error {
		_, err := r.collection.InsertOne(ctx, category)
		return classify(err, categoryResource)
	})
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return execute(r.breaker, categoryResource, func() (*models.Category, error) {
		var category models.Category
		if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
			return nil, classify(err, categoryResource)
		}
		return &category, nil
	})
}
