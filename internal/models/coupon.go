package models

import "time"

type CouponType string

const (
	CouponPercent CouponType = "percent"
	CouponFixed   CouponType = "fixed"
)

type Coupon struct {
	Code        string     `json:"code" bson:"code" validate:"required,max=40"`
	Type        CouponType `json:"type" bson:"type" validate:"required,oneof=percent fixed"`
	Value       float64    `json:"value" bson:"value" validate:"gt=0"`
	MinSubtotal float64    `json:"minSubtotal" bson:"min_subtotal" validate:"gte=0"`
	Active      bool       `json:"active" bson:"active"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" bson:"expires_at,omitempty"`
}

// AppliedCoupon es la copia del cupón guardada en el carrito
type AppliedCoupon struct {
	Code        string     `json:"code" bson:"code"`
	Type        CouponType `json:"type" bson:"type"`
	Value       float64    `json:"value" bson:"value"`
	MinSubtotal float64    `json:"minSubtotal" bson:"min_subtotal"`
}

// Snapshot copia los campos que afectan el cálculo del descuento
func (c *Coupon) Snapshot() *AppliedCoupon {
	return &AppliedCoupon{
		Code:        c.Code,
		Type:        c.Type,
		Value:       c.Value,
		MinSubtotal: c.MinSubtotal,
	}
}

// Usable indica si el cupón está activo y vigente en now
func (c *Coupon) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}
