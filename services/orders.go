package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/cart"
	"storefront/database"
	"storefront/models"
	"storefront/pricing"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type OrderRepository interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (bool, error)
}

type CartRepository interface {
	LoadCart(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error)
	SaveCart(ctx context.Context, userID primitive.ObjectID, items []models.CartLine) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (models.SiteSettings, error)
}

// Notifier receives order lifecycle events, e.g. the admin websocket hub.
type Notifier interface {
	Broadcast(event string, payload any)
}

type NopNotifier struct{}

func (NopNotifier) Broadcast(string, any) {}

type OrderService struct {
	products ProductRepository
	orders   OrderRepository
	carts    CartRepository
	settings SettingsRepository
	coupons  *CouponService
	notifier Notifier
	now      func() time.Time
}

func NewOrderService(products ProductRepository, orders OrderRepository, carts CartRepository,
	settings SettingsRepository, coupons *CouponService, notifier Notifier) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{
		products: products,
		orders:   orders,
		carts:    carts,
		settings: settings,
		coupons:  coupons,
		notifier: notifier,
		now:      time.Now,
	}
}

// Summary prices the user's stored cart. A non-empty couponCode is run
// through the coupon evaluator; its rejection is returned as the error.
func (s *OrderService) Summary(ctx context.Context, userID primitive.ObjectID, couponCode string) (pricing.Summary, error) {
	lines, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return pricing.Summary{}, err
	}
	summary, _, err := s.summarize(ctx, cart.FromItems(lines).TotalPrice(), couponCode)
	return summary, err
}

func (s *OrderService) summarize(ctx context.Context, subtotal float64, couponCode string) (pricing.Summary, *models.Coupon, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return pricing.Summary{}, nil, err
	}
	policy := pricing.PolicyFromSettings(settings)

	if strings.TrimSpace(couponCode) == "" {
		return pricing.Summarize(subtotal, policy, nil), nil, nil
	}
	res, coupon, err := s.coupons.Validate(ctx, models.NormalizeCouponCode(couponCode), subtotal)
	if err != nil {
		return pricing.Summarize(subtotal, policy, nil), nil, err
	}
	return pricing.Summarize(subtotal, policy, &res), coupon, nil
}

type CheckoutInput struct {
	CustomerName    string                 `json:"customer_name" binding:"required"`
	Email           string                 `json:"email" binding:"required,email"`
	Phone           string                 `json:"phone"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method"`
	CouponCode      string                 `json:"coupon_code"`
}

type stockHold struct {
	productID primitive.ObjectID
	quantity  int
}

// Checkout turns the user's cart into a pending order. Lines are repriced from
// the current catalogue, stock is reserved line by line and released again if
// any later step fails.
func (s *OrderService) Checkout(ctx context.Context, userID primitive.ObjectID, in CheckoutInput) (*models.Order, error) {
	lines, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := cart.FromItems(lines)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(c.Items()))
	ids := make([]primitive.ObjectID, 0, len(c.Items()))
	subtotal := decimal.Zero
	for _, line := range c.Items() {
		id, err := database.ParseID(line.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown product %s", ErrInsufficientStock, line.ID)
		}
		p, err := s.products.FindByID(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s is no longer available", ErrInsufficientStock, line.Name)
		}
		if err != nil {
			return nil, err
		}
		if p.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: not enough stock for %s, available: %d", ErrInsufficientStock, p.Name, p.Stock)
		}
		lineTotal := pricing.LineTotal(p.Price, line.Quantity)
		subtotal = subtotal.Add(decimal.NewFromFloat(lineTotal))
		items = append(items, models.OrderItem{
			ProductID: p.ID.Hex(),
			Name:      p.Name,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			Subtotal:  lineTotal,
			Image:     p.Image,
		})
		ids = append(ids, p.ID)
	}

	summary, coupon, err := s.summarize(ctx, subtotal.InexactFloat64(), in.CouponCode)
	if err != nil {
		return nil, err
	}

	var held []stockHold
	for i, item := range items {
		ok, err := s.products.DecrementStock(ctx, ids[i], item.Quantity)
		if err != nil {
			s.releaseStock(ctx, held)
			return nil, err
		}
		if !ok {
			s.releaseStock(ctx, held)
			return nil, fmt.Errorf("%w: not enough stock for %s", ErrInsufficientStock, item.Name)
		}
		held = append(held, stockHold{productID: ids[i], quantity: item.Quantity})
	}

	if coupon != nil {
		if err := s.coupons.Consume(ctx, coupon.ID); err != nil {
			s.releaseStock(ctx, held)
			return nil, err
		}
	}

	now := s.now()
	order := &models.Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     NewOrderNumber(now),
		UserID:          userID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		Email:           database.NormalizeEmail(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		OrderDate:       now,
		Status:          models.OrderStatusPending,
		Subtotal:        summary.Subtotal,
		ShippingFee:     summary.Shipping,
		Discount:        summary.Discount,
		CouponCode:      summary.CouponCode,
		TotalAmount:     summary.Total,
		ShippingAddress: in.ShippingAddress,
		Items:           items,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		s.releaseStock(ctx, held)
		if coupon != nil {
			if relErr := s.coupons.Release(ctx, coupon.ID); relErr != nil {
				slog.Error("release coupon after failed order insert", "coupon", coupon.Code, "error", relErr)
			}
		}
		return nil, err
	}

	if err := s.carts.SaveCart(ctx, userID, nil); err != nil {
		slog.Warn("clear cart after checkout", "user", userID.Hex(), "error", err)
	}
	s.notifier.Broadcast(EventOrderCreated, order)
	return order, nil
}

func (s *OrderService) releaseStock(ctx context.Context, held []stockHold) {
	for _, h := range held {
		if err := s.products.IncrementStock(ctx, h.productID, h.quantity); err != nil {
			slog.Error("release stock", "product", h.productID.Hex(), "quantity", h.quantity, "error", err)
		}
	}
}

// UpdateStatus moves an order along the status machine. Re-applying the
// current status returns the order unchanged. Cancelling puts the ordered
// quantities back in stock and gives back the coupon use.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, to models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == to {
		return order, nil
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot change status from %s to %s", models.ErrInvalidTransition, order.Status, to)
	}
	ok, err := s.orders.UpdateStatus(ctx, id, order.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order %s was modified concurrently", models.ErrInvalidTransition, order.OrderNumber)
	}

	if to == models.OrderStatusCancelled {
		s.restock(ctx, order.Items)
		s.releaseCoupon(ctx, order)
	}
	order.Status = to
	order.UpdatedAt = s.now()
	s.notifier.Broadcast(EventOrderUpdated, order)
	return order, nil
}

// Cancel lets a customer withdraw their own order while it is still pending.
func (s *OrderService) Cancel(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, database.ErrNotFound
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is already %s", models.ErrInvalidTransition, order.Status)
	}
	return s.UpdateStatus(ctx, id, models.OrderStatusCancelled)
}

func (s *OrderService) releaseCoupon(ctx context.Context, order *models.Order) {
	if order.CouponCode == "" {
		return
	}
	coupon, err := s.coupons.Resolve(ctx, order.CouponCode)
	if err != nil {
		slog.Error("find coupon of cancelled order", "order", order.OrderNumber, "coupon", order.CouponCode, "error", err)
		return
	}
	if coupon == nil {
		return
	}
	if err := s.coupons.Release(ctx, coupon.ID); err != nil {
		slog.Error("release coupon of cancelled order", "order", order.OrderNumber, "coupon", coupon.Code, "error", err)
	}
}

func (s *OrderService) restock(ctx context.Context, items []models.OrderItem) {
	held := make([]stockHold, 0, len(items))
	for _, item := range items {
		id, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			continue
		}
		held = append(held, stockHold{productID: id, quantity: item.Quantity})
	}
	s.releaseStock(ctx, held)
}

// NewOrderNumber is a sortable, collision-free human reference.
func NewOrderNumber(now time.Time) string {
	return now.UTC().Format("20060102150405") + "-" + uuid.NewString()
}
