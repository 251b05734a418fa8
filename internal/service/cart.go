package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/membership"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/stepper"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartService implements the cart page and its mutations.
type CartService struct {
	backend Backend
	cache   *cache.Cache
	policy  pricing.ShippingPolicy
	logger  *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(b Backend, c *cache.Cache, policy pricing.ShippingPolicy, logger *slog.Logger) *CartService {
	return &CartService{backend: b, cache: c, policy: policy, logger: logger}
}

// Get returns the caller's cart page.
func (s *CartService) Get(ctx context.Context) (*CartView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	cart, err := loadCart(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		return nil, err
	}
	return cartPage(ctx, s.cache, s.backend, cart, s.policy)
}

// Add puts quantity units of productID in the cart. The resulting line
// quantity may not exceed the product's stock; this is checked before the
// backend is called.
func (s *CartService) Add(ctx context.Context, productID string, quantity int) (*CartView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	product, err := loadProduct(ctx, s.cache, s.backend, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock() {
		return nil, apperrors.InvalidInput("product is out of stock")
	}

	current, err := loadCart(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		return nil, err
	}
	existing := 0
	if item, ok := current.ItemByProduct(productID); ok {
		existing = item.Quantity
	}
	if err := stepper.Check(product, existing+quantity); err != nil {
		return nil, err
	}

	cart, err := s.backend.AddToCart(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	return s.mutated(ctx, claims.UserID, cart, "item added to cart", productID), nil
}

// Remove drops productID from the cart.
func (s *CartService) Remove(ctx context.Context, productID string) (*CartView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	cart, err := s.backend.RemoveFromCart(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.mutated(ctx, claims.UserID, cart, "item removed from cart", productID), nil
}

// SetQuantity replaces the line quantity. Quantities above the product's
// stock are rejected, not clamped.
func (s *CartService) SetQuantity(ctx context.Context, productID string, quantity int) (*CartView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	line, product, err := s.line(ctx, claims.UserID, productID)
	if err != nil {
		return nil, err
	}

	st, err := bounded(line, product).Set(quantity)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, claims.UserID, productID, st.Quantity)
}

// Increment adds one unit. At the product's stock the request is rejected
// and the cart is left unchanged.
func (s *CartService) Increment(ctx context.Context, productID string) (*CartView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	line, product, err := s.line(ctx, claims.UserID, productID)
	if err != nil {
		return nil, err
	}

	st, err := bounded(line, product).Increment()
	if err != nil {
		return nil, err
	}
	return s.update(ctx, claims.UserID, productID, st.Quantity)
}

// Decrement removes one unit. At quantity 1 it does nothing.
func (s *CartService) Decrement(ctx context.Context, productID string) (*CartView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	line, product, err := s.line(ctx, claims.UserID, productID)
	if err != nil {
		return nil, err
	}

	st := bounded(line, product)
	next := st.Decrement()
	if next.Quantity == st.Quantity {
		cart, err := loadCart(ctx, s.cache, s.backend, claims.UserID)
		if err != nil {
			return nil, err
		}
		return cartPage(ctx, s.cache, s.backend, cart, s.policy)
	}
	return s.update(ctx, claims.UserID, productID, next.Quantity)
}

// Presence reports whether productID is in the caller's cart.
func (s *CartService) Presence(ctx context.Context, productID string) (*Presence, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	cart, err := loadCart(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		return nil, err
	}

	in := membership.InCart(cart, productID)
	p := &Presence{ProductID: productID, Present: in, Label: membership.CartLabel(in)}
	if item, ok := cart.ItemByProduct(productID); ok {
		p.Quantity = item.Quantity
	}
	return p, nil
}

// line returns the cart line for productID and the product's current
// catalog entry, which carries the authoritative stock count.
func (s *CartService) line(ctx context.Context, userID, productID string) (domain.CartItem, *domain.Product, error) {
	cart, err := loadCart(ctx, s.cache, s.backend, userID)
	if err != nil {
		return domain.CartItem{}, nil, err
	}
	item, ok := cart.ItemByProduct(productID)
	if !ok {
		return domain.CartItem{}, nil, apperrors.NotFound("cart item", productID)
	}

	product, err := catalogEntry(ctx, cachedProduct(s.cache, s.backend), item)
	if err != nil {
		return domain.CartItem{}, nil, err
	}
	return item, product, nil
}

func bounded(item domain.CartItem, product *domain.Product) stepper.Stepper {
	return stepper.Stepper{Quantity: item.Quantity, Max: stepper.MaxQuantityFor(product)}
}

func (s *CartService) update(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	cart, err := s.backend.UpdateCartQuantity(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	return s.mutated(ctx, userID, cart, "cart quantity updated", productID), nil
}

// mutated reports the cart the backend returned. The change is already
// applied, so a failed stock lookup degrades to the line snapshots.
func (s *CartService) mutated(ctx context.Context, userID string, cart *domain.Cart, msg, productID string) *CartView {
	invalidate(ctx, s.cache, s.logger, cache.CartKey(userID))
	s.logger.InfoContext(ctx, msg, slog.String("product_id", productID))

	view, err := cartPage(ctx, s.cache, s.backend, cart, s.policy)
	if err != nil {
		s.logger.WarnContext(ctx, "stock lookup failed, using cart snapshots",
			slog.String("error", err.Error()),
		)
		fallback := newCartView(cart, nil, s.policy)
		return &fallback
	}
	return view
}
