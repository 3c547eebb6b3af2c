package catalog

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
)

const maxSearchLength = 200

type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortPriceAsc   SortKey = "price"
	SortPriceDesc  SortKey = "-price"
	SortNameAsc    SortKey = "name"
	SortRatingDesc SortKey = "-rating"
)

var sortFields = map[SortKey]bson.E{
	SortNewest:     {Key: "created_at", Value: -1},
	SortOldest:     {Key: "created_at", Value: 1},
	SortPriceAsc:   {Key: "price", Value: 1},
	SortPriceDesc:  {Key: "price", Value: -1},
	SortNameAsc:    {Key: "name", Value: 1},
	SortRatingDesc: {Key: "rating.average", Value: -1},
}

var sortAliases = map[string]SortKey{
	"-createdat":  SortNewest,
	"createdat":   SortOldest,
	"price-asc":   SortPriceAsc,
	"price-desc":  SortPriceDesc,
	"name-asc":    SortNameAsc,
	"rating":      SortRatingDesc,
	"rating-desc": SortRatingDesc,
}

// ParseSort normaliza la clave de orden; las desconocidas caen en newest
func ParseSort(raw string) SortKey {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := sortFields[SortKey(key)]; ok {
		return SortKey(key)
	}
	if alias, ok := sortAliases[key]; ok {
		return alias
	}
	return SortNewest
}

// Params son los filtros del listado tal como llegan en la petición
type Params struct {
	Search     string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	Sort       string
}

func (p Params) Validate() error {
	if len(p.Search) > maxSearchLength {
		return apperr.Validation("search", "is too long")
	}
	if p.CategoryID != "" && !primitive.IsValidObjectID(p.CategoryID) {
		return apperr.Validation("category", "invalid category ID")
	}
	if p.MinPrice != nil && *p.MinPrice < 0 {
		return apperr.Validation("minPrice", "cannot be negative")
	}
	if p.MaxPrice != nil && *p.MaxPrice < 0 {
		return apperr.Validation("maxPrice", "cannot be negative")
	}
	return nil
}

// Query es el filtro y orden listos para el store.
// MatchesNothing se activa cuando los límites de precio se cruzan.
type Query struct {
	Filter         bson.M
	Sort           bson.D
	MatchesNothing bool
}

// BuildQuery traduce los parámetros a filtro y orden de MongoDB.
// searchCategories son las categorías cuyo nombre coincide con la búsqueda.
func BuildQuery(p Params, searchCategories []primitive.ObjectID) (Query, error) {
	if err := p.Validate(); err != nil {
		return Query{}, err
	}

	filter := bson.M{"is_deleted": bson.M{"$ne": true}}

	// Búsqueda de texto
	if search := strings.TrimSpace(p.Search); search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
		or := []bson.M{
			{"name": pattern},
			{"description": pattern},
		}
		if len(searchCategories) > 0 {
			or = append(or, bson.M{"category": bson.M{"$in": searchCategories}})
		}
		filter["$or"] = or
	}

	// Filtro por categoría
	if p.CategoryID != "" {
		oid, _ := primitive.ObjectIDFromHex(p.CategoryID)
		filter["category"] = oid
	}

	matchesNothing := addPriceFilter(filter, p.MinPrice, p.MaxPrice)

	return Query{
		Filter:         filter,
		Sort:           bson.D{sortFields[ParseSort(p.Sort)]},
		MatchesNothing: matchesNothing,
	}, nil
}

// addPriceFilter agrega el rango inclusivo de precio; devuelve true si min > max
func addPriceFilter(filter bson.M, minPrice, maxPrice *float64) bool {
	priceFilter := bson.M{}
	if minPrice != nil {
		priceFilter["$gte"] = *minPrice
	}
	if maxPrice != nil {
		priceFilter["$lte"] = *maxPrice
	}
	if len(priceFilter) > 0 {
		filter["price"] = priceFilter
	}
	return minPrice != nil && maxPrice != nil && *minPrice > *maxPrice
}
