package catalog

//go:generate mockgen -source=service.go -destination=store_mock_test.go -package=catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"storefront/internal/apperr"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/validation"
)

const (
	defaultFeaturedLimit = 8
	loadTimeout          = 10 * time.Second

	keyCategories   = "categories:all"
	prefixProducts  = "products:"
	prefixListings  = "products:list:"
	prefixCategory  = "category:"
	prefixProductID = "product:"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ProductStore es el acceso a la colección de productos
type ProductStore interface {
	Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindFeatured(ctx context.Context, limit int64) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// CategoryStore es el acceso a la colección de categorías
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	MatchingIDs(ctx context.Context, search string) ([]primitive.ObjectID, error)
	Create(ctx context.Context, category *models.Category) error
}

// ProductPage es una página del listado con su metadata
type ProductPage struct {
	Products []models.Product `json:"products"`
	PageInfo
}

type Service struct {
	products   ProductStore
	categories CategoryStore
	pager      Pager
	cache      cache.Cache
	cacheTTL   time.Duration
	sfg        singleflight.Group
	logger     *slog.Logger
	now        func() time.Time
}

// NewService arma el servicio del catálogo; c puede ser nil para no cachear lecturas
func NewService(products ProductStore, categories CategoryStore, pager Pager, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		products:   products,
		categories: categories,
		pager:      pager,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Pager() Pager {
	return s.pager
}

// ListProducts devuelve una página de productos que cumplen los filtros.
// Sin coincidencias devuelve una página vacía, no un error.
func (s *Service) ListProducts(ctx context.Context, params Params, page, pageSize int) (*ProductPage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	pg := s.pager.Page(page, pageSize)

	return cachedRead(ctx, s, listKey(params, pg), func(ctx context.Context) (*ProductPage, error) {
		var searchCategories []primitive.ObjectID
		if search := strings.TrimSpace(params.Search); search != "" {
			ids, err := s.categories.MatchingIDs(ctx, search)
			if err != nil {
				return nil, err
			}
			searchCategories = ids
		}

		q, err := BuildQuery(params, searchCategories)
		if err != nil {
			return nil, err
		}
		if q.MatchesNothing {
			return &ProductPage{Products: []models.Product{}, PageInfo: pg.Info(0)}, nil
		}

		items, total, err := s.products.Find(ctx, q.Filter, q.Sort, pg.Skip(), pg.Limit())
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Product{}
		}
		return &ProductPage{Products: items, PageInfo: pg.Info(total)}, nil
	})
}

// GetProduct obtiene un producto por ID (con caché)
func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID("id", "invalid product ID", id)
	if err != nil {
		return nil, err
	}
	return cachedRead(ctx, s, prefixProductID+oid.Hex(), func(ctx context.Context) (*models.Product, error) {
		return s.products.FindByID(ctx, oid)
	})
}

// FeaturedProducts devuelve los destacados con stock, más nuevos primero
func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 {
		limit = defaultFeaturedLimit
	}
	if limit > s.pager.MaxSize() {
		limit = s.pager.MaxSize()
	}
	key := fmt.Sprintf("%sfeatured:%d", prefixProducts, limit)
	return cachedRead(ctx, s, key, func(ctx context.Context) ([]models.Product, error) {
		items, err := s.products.FindFeatured(ctx, int64(limit))
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Product{}
		}
		return items, nil
	})
}

// ListCategories devuelve todas las categorías ordenadas por nombre
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return cachedRead(ctx, s, keyCategories, func(ctx context.Context) ([]models.Category, error) {
		items, err := s.categories.List(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Category{}
		}
		return items, nil
	})
}

func (s *Service) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, apperr.Validation("slug", "invalid category slug")
	}
	return cachedRead(ctx, s, prefixCategory+slug, func(ctx context.Context) (*models.Category, error) {
		return s.categories.FindBySlug(ctx, slug)
	})
}

// CreateProduct valida e inserta un producto nuevo
func (s *Service) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validation.Struct(product); err != nil {
		return err
	}
	if product.Category.IsZero() {
		return apperr.Validation("category", "is required")
	}
	if err := s.ensureCategory(ctx, product.Category); err != nil {
		return err
	}

	// Inicializar campos del sistema
	now := s.now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsDeleted = false
	if product.StockQuantity == 0 {
		product.InStock = false
	}

	if err := s.products.Create(ctx, product); err != nil {
		return err
	}

	s.invalidate(ctx, nil, prefixProducts)
	return nil
}

// UpdateProduct aplica una actualización parcial y devuelve el producto actualizado
func (s *Service) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	oid, err := parseID("id", "invalid product ID", id)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(update); err != nil {
		return nil, err
	}

	fields, err := s.updateFields(ctx, update)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("", "no valid fields to update")
	}
	fields["updated_at"] = s.now().UTC()

	if err := s.products.Update(ctx, oid, fields); err != nil {
		return nil, err
	}

	// Invalidar caché relacionado
	s.invalidate(ctx, []string{prefixProductID + oid.Hex()}, prefixProducts)

	return s.products.FindByID(ctx, oid)
}

// DeleteProduct realiza un borrado lógico
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	oid, err := parseID("id", "invalid product ID", id)
	if err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, oid); err != nil {
		return err
	}

	s.invalidate(ctx, []string{prefixProductID + oid.Hex()}, prefixProducts)
	return nil
}

// CreateCategory inserta una categoría; el slug se deriva del nombre si viene vacío
func (s *Service) CreateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	if err := validation.Struct(category); err != nil {
		return err
	}
	if !slugPattern.MatchString(category.Slug) {
		return apperr.Validation("slug", "must contain only lowercase letters, digits and dashes")
	}

	category.ID = primitive.NewObjectID()
	category.CreatedAt = s.now().UTC()

	if err := s.categories.Create(ctx, category); err != nil {
		return err
	}

	// la búsqueda por nombre de categoría puede cambiar los listados
	s.invalidate(ctx, []string{keyCategories}, prefixListings)
	return nil
}

// InvalidateProducts descarta las lecturas cacheadas de productos cuyo stock cambió
func (s *Service) InvalidateProducts(ctx context.Context, ids ...primitive.ObjectID) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, prefixProductID+id.Hex())
	}
	s.invalidate(ctx, keys, prefixProducts)
}

func (s *Service) updateFields(ctx context.Context, update models.ProductUpdate) (bson.M, error) {
	fields := bson.M{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Price != nil {
		fields["price"] = *update.Price
	}
	if update.Category != nil {
		oid, err := parseID("category", "invalid category ID", *update.Category)
		if err != nil {
			return nil, err
		}
		if err := s.ensureCategory(ctx, oid); err != nil {
			return nil, err
		}
		fields["category"] = oid
	}
	if update.Images != nil {
		fields["images"] = update.Images
	}
	if update.Featured != nil {
		fields["featured"] = *update.Featured
	}
	if update.InStock != nil {
		fields["in_stock"] = *update.InStock
	}
	if update.StockQuantity != nil {
		fields["stock_quantity"] = *update.StockQuantity
		if *update.StockQuantity == 0 {
			fields["in_stock"] = false
		}
	}
	if update.Features != nil {
		fields["features"] = update.Features
	}
	if update.Specifications != nil {
		fields["specifications"] = update.Specifications
	}
	if update.Tags != nil {
		fields["tags"] = update.Tags
	}
	return fields, nil
}

func (s *Service) ensureCategory(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("category", "category does not exist")
		}
		return err
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, keys []string, prefix string) {
	if s.cache == nil {
		return
	}
	if len(keys) > 0 {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warn("cache delete failed", "keys", keys, "error", err)
		}
	}
	if prefix != "" {
		if err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
			s.logger.Warn("cache prefix delete failed", "prefix", prefix, "error", err)
		}
	}
}

// cachedRead sirve key desde la caché; en un miss carga una sola vez por clave aunque
// haya lecturas concurrentes. Los errores de caché se registran y no fallan la lectura.
func cachedRead[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache != nil {
		var hit T
		err := s.cache.Get(ctx, key, &hit)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed", "key", key, "error", err)
		}
	}

	v, err, _ := s.sfg.Do(key, func() (any, error) {
		// la carga es compartida entre requests y no se corta si el primero cancela
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		val, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(loadCtx, key, val, s.cacheTTL); err != nil {
				s.logger.Warn("cache set failed", "key", key, "error", err)
			}
		}
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func listKey(p Params, pg Page) string {
	price := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%g", *v)
	}
	return fmt.Sprintf("%sp%d_s%d_q:%s_cat:%s_min:%s_max:%s_sort:%s",
		prefixListings, pg.Number, pg.Size,
		strings.ToLower(strings.TrimSpace(p.Search)), p.CategoryID,
		price(p.MinPrice), price(p.MaxPrice), ParseSort(p.Sort),
	)
}

func parseID(field, message, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(field, message)
	}
	return oid, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify convierte un nombre en slug: "Home & Office" -> "home-office"
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
