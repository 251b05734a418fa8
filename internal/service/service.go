// Package service holds the storefront's use cases. Each service reads
// through the shared cache, calls the backend for mutations, invalidates the
// keys a mutation makes stale and shapes the result into a page view.
package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/backend"
	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/stepper"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Backend is the subset of the backend API the services use.
// *backend.Client satisfies it.
type Backend interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddToCart(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (*domain.Cart, error)
	UpdateCartQuantity(ctx context.Context, productID string, quantity int) (*domain.Cart, error)

	GetWishlist(ctx context.Context) (*domain.Wishlist, error)
	UpdateWishlist(ctx context.Context, productID string, action domain.WishlistAction) (*domain.Wishlist, error)

	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	AddProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, p *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	GetOrders(ctx context.Context) ([]domain.Order, error)
	GetAllOrders(ctx context.Context) ([]domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	PlaceOrder(ctx context.Context, o backend.NewOrder) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)

	GetUsers(ctx context.Context) ([]domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	RegisterUser(ctx context.Context, r backend.Registration) (*domain.User, error)
	ResetPassword(ctx context.Context, r backend.PasswordReset) error
	SendEmail(ctx context.Context, e backend.Email) error
}

var _ Backend = (*backend.Client)(nil)

// PageSizes fixes how many items each view shows per page and how many
// numeric page slots its pagination window has.
type PageSizes struct {
	Products        int `env:"PRODUCTS" envDefault:"12"`
	ProductsVisible int `env:"PRODUCTS_VISIBLE" envDefault:"7"`
	Category        int `env:"CATEGORY" envDefault:"20"`
	Orders          int `env:"ORDERS" envDefault:"10"`
	Admin           int `env:"ADMIN" envDefault:"10"`
	Wishlist        int `env:"WISHLIST" envDefault:"20"`
	Visible         int `env:"VISIBLE" envDefault:"5"`
}

// DefaultPageSizes mirrors the envDefault values.
func DefaultPageSizes() PageSizes {
	return PageSizes{
		Products:        12,
		ProductsVisible: 7,
		Category:        20,
		Orders:          10,
		Admin:           10,
		Wishlist:        20,
		Visible:         5,
	}
}

// caller returns the signed-in identity or an UNAUTHORIZED error.
func caller(ctx context.Context) (*middleware.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return nil, apperrors.Unauthorized("sign in to continue")
	}
	return claims, nil
}

// invalidate drops keys after a successful mutation. Failures are logged
// only: the mutation already happened and the TTL bounds the staleness.
func invalidate(ctx context.Context, c *cache.Cache, logger *slog.Logger, keys ...string) {
	if err := c.Invalidate(ctx, keys...); err != nil {
		logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()),
		)
	}
}

// loadCart reads the caller's cart through the cache.
func loadCart(ctx context.Context, c *cache.Cache, b Backend, userID string) (*domain.Cart, error) {
	return cache.GetOrLoad(ctx, c, cache.CartKey(userID), b.GetCart)
}

func loadWishlist(ctx context.Context, c *cache.Cache, b Backend, userID string) (*domain.Wishlist, error) {
	return cache.GetOrLoad(ctx, c, cache.WishlistKey(userID), b.GetWishlist)
}

func loadProducts(ctx context.Context, c *cache.Cache, b Backend) ([]domain.Product, error) {
	return cache.GetOrLoad(ctx, c, cache.ProductsKey, b.GetProducts)
}

func loadProduct(ctx context.Context, c *cache.Cache, b Backend, id string) (*domain.Product, error) {
	return cache.GetOrLoad(ctx, c, cache.ProductKey(id), func(ctx context.Context) (*domain.Product, error) {
		return b.GetProductByID(ctx, id)
	})
}

type productLookup func(ctx context.Context, id string) (*domain.Product, error)

func cachedProduct(c *cache.Cache, b Backend) productLookup {
	return func(ctx context.Context, id string) (*domain.Product, error) {
		return loadProduct(ctx, c, b, id)
	}
}

// catalogEntry returns the catalog product behind a cart line. The catalog
// holds the authoritative stock count; the line's snapshot is used only once
// the product is gone from the catalog.
func catalogEntry(ctx context.Context, lookup productLookup, item domain.CartItem) (*domain.Product, error) {
	product, err := lookup(ctx, string(item.Product.ID))
	if err == nil {
		return product, nil
	}
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}
	snapshot := item.Product
	return &snapshot, nil
}

// stockLimits maps each line's product id to its quantity bound.
func stockLimits(ctx context.Context, lookup productLookup, items []domain.CartItem) (map[string]int, error) {
	limits := make(map[string]int, len(items))
	for _, it := range items {
		product, err := catalogEntry(ctx, lookup, it)
		if err != nil {
			return nil, err
		}
		limits[string(it.Product.ID)] = stepper.MaxQuantityFor(product)
	}
	return limits, nil
}

// cartPage builds the cart view with line bounds taken from the catalog.
func cartPage(ctx context.Context, c *cache.Cache, b Backend, cart *domain.Cart, policy pricing.ShippingPolicy) (*CartView, error) {
	var items []domain.CartItem
	if cart != nil {
		items = cart.Items
	}
	limits, err := stockLimits(ctx, cachedProduct(c, b), items)
	if err != nil {
		return nil, err
	}
	view := newCartView(cart, limits, policy)
	return &view, nil
}
