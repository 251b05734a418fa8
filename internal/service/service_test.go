package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/backend"
	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/middleware"
)

// --- Mock Backend ---

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) GetCart(ctx context.Context) (*domain.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockBackend) AddToCart(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockBackend) RemoveFromCart(ctx context.Context, productID string) (*domain.Cart, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockBackend) UpdateCartQuantity(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockBackend) GetWishlist(ctx context.Context) (*domain.Wishlist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockBackend) UpdateWishlist(ctx context.Context, productID string, action domain.WishlistAction) (*domain.Wishlist, error) {
	args := m.Called(ctx, productID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockBackend) GetProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockBackend) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockBackend) AddProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockBackend) UpdateProduct(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockBackend) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBackend) GetOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockBackend) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockBackend) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockBackend) PlaceOrder(ctx context.Context, o backend.NewOrder) (*domain.Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockBackend) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockBackend) GetUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockBackend) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockBackend) RegisterUser(ctx context.Context, r backend.Registration) (*domain.User, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockBackend) ResetPassword(ctx context.Context, r backend.PasswordReset) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockBackend) SendEmail(ctx context.Context, e backend.Email) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCache() *cache.Cache {
	return cache.New(cache.NewMemoryStore(), cache.DefaultTTLs(), newTestLogger())
}

func userCtx(userID string) context.Context {
	return middleware.WithClaims(context.Background(), &middleware.Claims{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   middleware.RoleUser,
		Token:  "token-" + userID,
	})
}

func adminCtx() context.Context {
	return middleware.WithClaims(context.Background(), &middleware.Claims{
		UserID: "admin-1",
		Email:  "admin@example.com",
		Role:   middleware.RoleAdmin,
		Token:  "token-admin",
	})
}

func intPtr(n int) *int { return &n }

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testProduct(id, amount string, stock *int) domain.Product {
	return domain.Product{
		ID:           domain.ID(id),
		Title:        "Product " + id,
		Brand:        "Acme",
		Category:     "Home Decor",
		SKU:          "SKU-" + id,
		Price:        price(amount),
		Availability: domain.InStock,
		Quantity:     stock,
	}
}

func testCart(userID string, items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{ID: "cart-" + domain.ID(userID), UserID: domain.ID(userID), Items: items}
}

func cartItem(p domain.Product, qty int) domain.CartItem {
	return domain.CartItem{Product: p, Quantity: qty, Price: p.Price}
}
