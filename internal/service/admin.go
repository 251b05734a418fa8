package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// AdminService implements the admin dashboard. Every mutation invalidates
// the affected cache keys and is recorded in the audit log.
type AdminService struct {
	backend Backend
	cache   *cache.Cache
	audit   *AuditService
	pages   PageSizes
	logger  *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(b Backend, c *cache.Cache, audit *AuditService, pages PageSizes, logger *slog.Logger) *AdminService {
	return &AdminService{backend: b, cache: c, audit: audit, pages: pages, logger: logger}
}

// --- Products ---

// Products returns one page of the full catalogue.
func (s *AdminService) Products(ctx context.Context, page int) (*pagination.Result[domain.Product], error) {
	products, err := loadProducts(ctx, s.cache, s.backend)
	if err != nil {
		return nil, err
	}
	result := pagination.Paginate(products, pagination.Params{Page: page, PerPage: s.pages.Admin}, s.pages.Visible)
	return &result, nil
}

// CreateProduct adds a product to the catalogue.
func (s *AdminService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	created, err := s.backend.AddProduct(ctx, p)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, cache.ProductsKey)
	s.audit.Record(ctx, domain.ActionProductCreated, domain.ResourceProduct, created.ID.String(), map[string]any{
		"title": created.Title,
		"price": created.Price.String(),
	})
	s.logger.InfoContext(ctx, "product created", slog.String("product_id", created.ID.String()))
	return created, nil
}

// UpdateProduct replaces a product.
func (s *AdminService) UpdateProduct(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	updated, err := s.backend.UpdateProduct(ctx, id, p)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, cache.ProductsKey, cache.ProductKey(id))
	s.audit.Record(ctx, domain.ActionProductUpdated, domain.ResourceProduct, id, map[string]any{
		"title": updated.Title,
		"price": updated.Price.String(),
	})
	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", id))
	return updated, nil
}

// DeleteProduct removes a product.
func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}

	invalidate(ctx, s.cache, s.logger, cache.ProductsKey, cache.ProductKey(id))
	s.audit.Record(ctx, domain.ActionProductDeleted, domain.ResourceProduct, id, nil)
	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// --- Users ---

// Users returns one page of accounts.
func (s *AdminService) Users(ctx context.Context, page int) (*pagination.Result[domain.User], error) {
	users, err := cache.GetOrLoad(ctx, s.cache, cache.UsersKey, s.backend.GetUsers)
	if err != nil {
		return nil, err
	}
	result := pagination.Paginate(users, pagination.Params{Page: page, PerPage: s.pages.Admin}, s.pages.Visible)
	return &result, nil
}

// User returns a single account.
func (s *AdminService) User(ctx context.Context, id string) (*domain.User, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.UserKey(id), func(ctx context.Context) (*domain.User, error) {
		return s.backend.GetUserByID(ctx, id)
	})
}

// --- Orders ---

// Orders returns one page of every order, newest first, optionally limited
// to one status.
func (s *AdminService) Orders(ctx context.Context, page int, status string) (*OrdersPage, error) {
	var want domain.OrderStatus
	if status != "" {
		if !domain.IsValidStatus(status) {
			return nil, apperrors.InvalidInput("unknown order status " + status)
		}
		want = domain.OrderStatus(status)
	}

	orders, err := cache.GetOrLoad(ctx, s.cache, cache.AllOrdersKey, s.backend.GetAllOrders)
	if err != nil {
		return nil, err
	}
	if want != "" {
		filtered := make([]domain.Order, 0, len(orders))
		for _, o := range orders {
			if o.Status == want {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	params := pagination.Params{Page: page, PerPage: s.pages.Admin}
	return &OrdersPage{Result: orderPage(orders, params, s.pages.Visible), Status: status}, nil
}

// UpdateOrderStatus sets an order's status. Any valid status is accepted,
// including the current one. The previous status is read from the backend,
// not the cache, for the audit entry.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id, status string) (*OrderView, error) {
	status = strings.TrimSpace(status)
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput("unknown order status " + status)
	}
	target := domain.OrderStatus(status)

	current, err := s.backend.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateOrderStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger,
		cache.OrderKey(id),
		cache.AllOrdersKey,
		cache.OrdersKey(current.UserID.String()),
	)
	s.audit.Record(ctx, domain.ActionOrderStatusChanged, domain.ResourceOrder, id, map[string]any{
		"from": string(current.Status),
		"to":   status,
	})
	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", id),
		slog.String("from", string(current.Status)),
		slog.String("to", status),
	)

	view := newOrderView(*updated)
	return &view, nil
}
