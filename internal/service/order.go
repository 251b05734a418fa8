package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// OrderService serves the caller's order history and order details.
type OrderService struct {
	backend Backend
	cache   *cache.Cache
	pages   PageSizes
	logger  *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(b Backend, c *cache.Cache, pages PageSizes, logger *slog.Logger) *OrderService {
	return &OrderService{backend: b, cache: c, pages: pages, logger: logger}
}

// List returns one page of the caller's orders, newest first.
func (s *OrderService) List(ctx context.Context, page int) (*OrdersPage, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := cache.GetOrLoad(ctx, s.cache, cache.OrdersKey(claims.UserID), s.backend.GetOrders)
	if err != nil {
		return nil, err
	}

	params := pagination.Params{Page: page, PerPage: s.pages.Orders}
	return &OrdersPage{Result: orderPage(orders, params, s.pages.Visible)}, nil
}

// Get returns an order to its owner or to an administrator.
func (s *OrderService) Get(ctx context.Context, id string) (*OrderView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	order, err := cache.GetOrLoad(ctx, s.cache, cache.OrderKey(id), func(ctx context.Context) (*domain.Order, error) {
		return s.backend.GetOrderByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if !order.OwnedBy(claims.UserID) && !claims.IsAdmin() {
		s.logger.WarnContext(ctx, "order access denied", slog.String("order_id", id))
		return nil, apperrors.Forbidden("you do not have access to this order")
	}

	view := newOrderView(*order)
	return &view, nil
}

// orderPage sorts a copy of orders newest first and pages it.
func orderPage(orders []domain.Order, params pagination.Params, maxVisible int) pagination.Result[OrderView] {
	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	views := make([]OrderView, len(sorted))
	for i, o := range sorted {
		views[i] = newOrderView(o)
	}
	return pagination.Paginate(views, params, maxVisible)
}
