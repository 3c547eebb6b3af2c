package orders

//go:generate mockgen -source=service.go -destination=store_mock_test.go -package=orders

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/validation"
)

type Store interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error)
}

type CartStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Inventory reserva y libera stock con actualizaciones condicionales
type Inventory interface {
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

// StockNotifier recibe los productos cuyo stock cambió, para invalidar lecturas cacheadas
type StockNotifier interface {
	InvalidateProducts(ctx context.Context, ids ...primitive.ObjectID)
}

// PlaceOrderRequest es el cuerpo del checkout
type PlaceOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod" validate:"required,oneof=card paypal cash_on_delivery"`
}

type Service struct {
	orders     Store
	carts      CartStore
	inventory  Inventory
	notifier   StockNotifier
	publisher  events.Publisher
	calculator *pricing.Calculator
	logger     *slog.Logger
	now        func() time.Time
	newNumber  func() string
}

func NewService(orders Store, carts CartStore, inventory Inventory, notifier StockNotifier, publisher events.Publisher, calculator *pricing.Calculator, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		orders:     orders,
		carts:      carts,
		inventory:  inventory,
		notifier:   notifier,
		publisher:  publisher,
		calculator: calculator,
		logger:     logger,
		now:        time.Now,
		newNumber:  orderNumber,
	}
}

// PlaceOrder convierte el carrito del usuario en una orden pendiente.
// Reserva stock línea por línea; si una falla, libera las reservas anteriores.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*models.Order, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, apperr.Validation("cart", "cart is empty")
	}

	if err := s.reserve(ctx, c.Items); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:              primitive.NewObjectID(),
		Number:          s.newNumber(),
		UserID:          userID,
		Items:           append([]models.CartItem(nil), c.Items...),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		Totals:          s.calculator.CartTotals(c.Items, c.Coupon),
	}
	if c.Coupon != nil && order.Discount > 0 {
		order.CouponCode = c.Coupon.Code
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, c.Items)
		return nil, err
	}

	s.notifyStock(ctx, c.Items)

	// la orden ya existe; un carrito sin vaciar no la invalida
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Error("failed to clear cart after order", "user_id", userID, "order_id", order.ID.Hex(), "error", err)
	}

	s.publishPlaced(ctx, order)

	s.logger.Info("order placed",
		"order_id", order.ID.Hex(),
		"number", order.Number,
		"user_id", userID,
		"total", order.Total,
		"items", order.ItemCount,
	)
	return order, nil
}

// GetOrder devuelve una orden del usuario; las de otros usuarios son NotFound
func (s *Service) GetOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid order ID")
	}
	return s.orders.FindByID(ctx, userID, oid)
}

// ListOrders devuelve las órdenes del usuario, más nuevas primero
func (s *Service) ListOrders(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, total, nil
}

func (s *Service) reserve(ctx context.Context, items []models.CartItem) error {
	for i, item := range items {
		err := s.inventory.ReserveStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		s.release(ctx, items[:i])
		if errors.Is(err, apperr.ErrConflict) {
			return apperr.Conflict("not enough stock for %s", item.Name)
		}
		return err
	}
	return nil
}

// release devuelve el stock reservado; usa un contexto propio para no perder la
// compensación si el del request ya se canceló
func (s *Service) release(ctx context.Context, items []models.CartItem) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	for _, item := range items {
		if err := s.inventory.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to release reserved stock",
				"product_id", item.ProductID.Hex(),
				"quantity", item.Quantity,
				"error", err,
			)
		}
	}
}

func (s *Service) notifyStock(ctx context.Context, items []models.CartItem) {
	if s.notifier == nil {
		return
	}
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	s.notifier.InvalidateProducts(ctx, ids...)
}

func (s *Service) publishPlaced(ctx context.Context, order *models.Order) {
	event := events.OrderPlaced{
		OrderID:       order.ID.Hex(),
		OrderNumber:   order.Number,
		UserID:        order.UserID,
		Total:         order.Total,
		PaymentMethod: string(order.PaymentMethod),
		Timestamp:     order.CreatedAt,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, events.Item{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.publisher.Publish(ctx, order.UserID, event); err != nil {
		s.logger.Error("failed to publish order placed event", "order_id", event.OrderID, "error", err)
	}
}

// orderNumber genera un número legible: ORD-20260315-1A2B3C4D
func orderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + time.Now().UTC().Format("20060102") + "-" + id[:8]
}
