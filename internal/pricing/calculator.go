// Package pricing calcula los montos de carritos y órdenes a partir de las
// líneas con precio congelado y del cupón aplicado.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Rules son los parámetros configurables del cálculo
type Rules struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
		ShippingFee:           decimal.RequireFromString("9.99"),
	}
}

// Line es una línea de carrito: precio unitario congelado y cantidad
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Summary struct {
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

type Calculator struct {
	rules Rules
}

func NewCalculator(rules Rules) *Calculator {
	return &Calculator{rules: rules}
}

// Compute calcula subtotal, envío, impuesto, descuento y total.
// Sin líneas todo es cero, incluido el envío.
func (c *Calculator) Compute(lines []Line, coupon *models.AppliedCoupon) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		count += l.Quantity
	}

	if count == 0 {
		return Summary{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Tax:      decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	shipping := c.rules.ShippingFee
	if subtotal.GreaterThanOrEqual(c.rules.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(c.rules.TaxRate).Round(2)

	gross := subtotal.Add(shipping).Add(tax)
	discount := couponDiscount(coupon, subtotal)
	if discount.GreaterThan(gross) {
		discount = gross
	}

	return Summary{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Discount:  discount,
		Total:     gross.Sub(discount),
		ItemCount: count,
	}
}

// CartTotals calcula los montos de las líneas de un carrito u orden
func (c *Calculator) CartTotals(items []models.CartItem, coupon *models.AppliedCoupon) models.Totals {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			UnitPrice: decimal.NewFromFloat(it.Price),
			Quantity:  it.Quantity,
		})
	}
	return c.Compute(lines, coupon).Totals()
}

// Totals convierte el resumen al modelo expuesto por la API
func (s Summary) Totals() models.Totals {
	return models.Totals{
		Subtotal:  s.Subtotal.Round(2).InexactFloat64(),
		Shipping:  s.Shipping.Round(2).InexactFloat64(),
		Tax:       s.Tax.Round(2).InexactFloat64(),
		Discount:  s.Discount.Round(2).InexactFloat64(),
		Total:     s.Total.Round(2).InexactFloat64(),
		ItemCount: s.ItemCount,
	}
}

func couponDiscount(coupon *models.AppliedCoupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || coupon.Value <= 0 {
		return decimal.Zero
	}
	if subtotal.LessThan(decimal.NewFromFloat(coupon.MinSubtotal)) {
		return decimal.Zero
	}

	value := decimal.NewFromFloat(coupon.Value)
	switch coupon.Type {
	case models.CouponPercent:
		if value.GreaterThan(hundred) {
			value = hundred
		}
		return subtotal.Mul(value).Div(hundred).Round(2)
	case models.CouponFixed:
		return value.Round(2)
	default:
		return decimal.Zero
	}
}
