package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

type ShippingAddress struct {
	FullName   string `json:"fullName" bson:"full_name" validate:"required,max=120"`
	Street     string `json:"street" bson:"street" validate:"required,max=200"`
	City       string `json:"city" bson:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postalCode" bson:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" bson:"country" validate:"required,max=60"`
	Phone      string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Number          string             `json:"number" bson:"number"`
	UserID          string             `json:"userId" bson:"user_id"`
	Items           []CartItem         `json:"items" bson:"items"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shipping_address"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod" bson:"payment_method"`
	CouponCode      string             `json:"couponCode,omitempty" bson:"coupon_code,omitempty"`
	Status          OrderStatus        `json:"status" bson:"status"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`

	Totals `bson:",inline"`
}
