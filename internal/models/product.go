package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating agrega las reseñas de un producto
type Rating struct {
	Average float64 `json:"average" bson:"average" validate:"gte=0,lte=5"`
	Count   int     `json:"count" bson:"count" validate:"gte=0"`
}

// Product representa un producto en el catálogo
type Product struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" validate:"required,max=200"`
	Description    string             `json:"description" bson:"description"`
	Price          float64            `json:"price" bson:"price" validate:"gte=0"`
	Category       primitive.ObjectID `json:"category" bson:"category"`
	Images         []string           `json:"images" bson:"images"`
	Featured       bool               `json:"featured" bson:"featured"`
	InStock        bool               `json:"inStock" bson:"in_stock"`
	StockQuantity  int                `json:"stockQuantity" bson:"stock_quantity" validate:"gte=0"`
	Features       []string           `json:"features,omitempty" bson:"features,omitempty"`
	Specifications map[string]string  `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Rating         Rating             `json:"rating" bson:"rating"`
	Tags           []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	IsDeleted      bool               `json:"-" bson:"is_deleted"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ProductUpdate representa los campos actualizables de un producto
type ProductUpdate struct {
	Name           *string           `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string           `json:"description,omitempty"`
	Price          *float64          `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category       *string           `json:"category,omitempty" validate:"omitempty,mongodb"`
	Images         []string          `json:"images,omitempty"`
	Featured       *bool             `json:"featured,omitempty"`
	InStock        *bool             `json:"inStock,omitempty"`
	StockQuantity  *int              `json:"stockQuantity,omitempty" validate:"omitempty,gte=0"`
	Features       []string          `json:"features,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
}
