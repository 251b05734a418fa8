package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/backend"
	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/pricing"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CheckoutService shows the checkout summary and places orders.
type CheckoutService struct {
	backend Backend
	cache   *cache.Cache
	policy  pricing.ShippingPolicy
	logger  *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(b Backend, c *cache.Cache, policy pricing.ShippingPolicy, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{backend: b, cache: c, policy: policy, logger: logger}
}

// Summary returns the cart totals the order would be placed with.
func (s *CheckoutService) Summary(ctx context.Context) (*CheckoutView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	cart, err := loadCart(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		return nil, err
	}
	view, err := cartPage(ctx, s.cache, s.backend, cart, s.policy)
	if err != nil {
		return nil, err
	}
	return &CheckoutView{CartView: *view, CanPlaceOrder: !view.Empty}, nil
}

// PlaceOrder turns the caller's current cart into an order. The cart and the
// stock of each line are read from the backend, not the cache, so the order
// is priced and bounded by their latest state.
func (s *CheckoutService) PlaceOrder(ctx context.Context, details domain.ShippingDetails) (*OrderView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := s.backend.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	limits, err := stockLimits(ctx, s.backend.GetProductByID, cart.Items)
	if err != nil {
		return nil, err
	}
	items := make([]domain.OrderItem, len(cart.Items))
	for i, it := range cart.Items {
		if it.Quantity > limits[string(it.Product.ID)] {
			return nil, apperrors.InvalidInput(it.Product.Title + ": quantity exceeds available stock")
		}
		items[i] = domain.OrderItem{Product: it.Product, Quantity: it.Quantity, Price: it.Price}
	}
	summary := pricing.Summarize(items, s.policy)

	order, err := s.backend.PlaceOrder(ctx, backend.NewOrder{
		ShippingDetails: details,
		Items:           items,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Total:           summary.Total,
	})
	// A failed reply does not prove the order was not created.
	invalidate(ctx, s.cache, s.logger,
		cache.CartKey(claims.UserID),
		cache.OrdersKey(claims.UserID),
		cache.AllOrdersKey,
	)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.String()),
		slog.String("total", summary.Total.StringFixed(2)),
		slog.Int("items", summary.ItemCount),
	)

	view := newOrderView(*order)
	return &view, nil
}
