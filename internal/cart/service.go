package cart

//go:generate mockgen -source=service.go -destination=store_mock_test.go -package=cart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/validation"
)

// Store persiste un carrito por usuario
type Store interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

// ProductReader lee el producto vivo para el snapshot y el control de stock
type ProductReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	Upsert(ctx context.Context, coupon *models.Coupon) error
}

type Service struct {
	carts      Store
	products   ProductReader
	coupons    CouponStore
	calculator *pricing.Calculator
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(carts Store, products ProductReader, coupons CouponStore, calculator *pricing.Calculator, logger *slog.Logger) *Service {
	return &Service{
		carts:      carts,
		products:   products,
		coupons:    coupons,
		calculator: calculator,
		logger:     logger,
		now:        time.Now,
	}
}

// Get devuelve el carrito del usuario con sus totales; lo crea vacío si no existe
func (s *Service) Get(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withTotals(c), nil
}

// AddItem agrega qty unidades de un producto controlando el stock disponible
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}
	pid, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(c *models.Cart) error {
		if err := checkStock(product, quantityOf(c, pid), qty); err != nil {
			return err
		}
		addLine(c, product, qty, s.now().UTC())
		return nil
	})
}

// UpdateItem fija la cantidad de una línea; qty <= 0 la quita del carrito
func (s *Service) UpdateItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	pid, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(c *models.Cart) error {
		if qty > 0 && c.FindItem(pid) >= 0 {
			product, err := s.products.FindByID(ctx, pid)
			if err != nil {
				return err
			}
			if err := checkStock(product, 0, qty); err != nil {
				return err
			}
		}
		return setQuantity(c, pid, qty)
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	pid, err := parseProductID(productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		return removeLine(c, pid)
	})
}

// Clear vacía el carrito y quita el cupón
func (s *Service) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		clearLines(c)
		return nil
	})
}

// ApplyCoupon valida el cupón contra el subtotal actual y guarda su snapshot en el carrito
func (s *Service) ApplyCoupon(ctx context.Context, userID, code string) (*models.Cart, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("code", "is required")
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !coupon.Usable(s.now()) {
		return nil, apperr.Validation("code", "coupon is not active or has expired")
	}

	return s.mutate(ctx, userID, func(c *models.Cart) error {
		subtotal := s.calculator.CartTotals(c.Items, nil).Subtotal
		if subtotal < coupon.MinSubtotal {
			return apperr.Validation("code", fmt.Sprintf("requires a subtotal of at least %.2f", coupon.MinSubtotal))
		}
		c.Coupon = coupon.Snapshot()
		return nil
	})
}

func (s *Service) RemoveCoupon(ctx context.Context, userID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		c.Coupon = nil
		return nil
	})
}

// SaveCoupon crea o reemplaza un cupón
func (s *Service) SaveCoupon(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if err := validation.Struct(coupon); err != nil {
		return err
	}
	if coupon.Type == models.CouponPercent && coupon.Value > 100 {
		return apperr.Validation("value", "must be at most 100 for percent coupons")
	}
	return s.coupons.Upsert(ctx, coupon)
}

// Totals calcula los totales de un carrito sin persistir nada
func (s *Service) Totals(c *models.Cart) models.Totals {
	return s.calculator.CartTotals(c.Items, c.Coupon)
}

// mutate carga el carrito, aplica fn y reemplaza el documento completo.
// Escrituras concurrentes del mismo usuario: gana la última.
func (s *Service) mutate(ctx context.Context, userID string, fn func(*models.Cart) error) (*models.Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Debug("cart updated", "user_id", userID, "items", len(c.Items))
	return s.withTotals(c), nil
}

func (s *Service) withTotals(c *models.Cart) *models.Cart {
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	c.Totals = s.Totals(c)
	return c
}

// checkStock controla que existing+add unidades entren en el stock sin sumar
// las cantidades, que pueden desbordar
func checkStock(product *models.Product, existing, add int) error {
	if !product.InStock || product.StockQuantity <= 0 {
		return apperr.Conflict("%s is out of stock", product.Name)
	}
	if add > product.StockQuantity-existing {
		return apperr.Conflict("only %d of %s in stock", product.StockQuantity, product.Name)
	}
	return nil
}

func parseProductID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("productId", "invalid product ID")
	}
	return oid, nil
}
