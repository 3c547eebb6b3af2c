package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem guarda el precio del producto al momento de agregarlo al carrito
type CartItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"product_id"`
	Name      string             `json:"name" bson:"name"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	AddedAt   time.Time          `json:"addedAt" bson:"added_at"`
}

// Totals son los montos derivados de un carrito u orden
type Totals struct {
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
	Shipping  float64 `json:"shipping" bson:"shipping"`
	Tax       float64 `json:"tax" bson:"tax"`
	Discount  float64 `json:"discount" bson:"discount"`
	Total     float64 `json:"total" bson:"total"`
	ItemCount int     `json:"itemCount" bson:"item_count"`
}

type Cart struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"user_id"`
	Items     []CartItem         `json:"items" bson:"items"`
	Coupon    *AppliedCoupon     `json:"coupon,omitempty" bson:"coupon,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`

	// Totals se recalcula en cada lectura, no se persiste
	Totals `bson:"-"`
}

// FindItem devuelve el índice de la línea del producto o -1
func (c *Cart) FindItem(productID primitive.ObjectID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
