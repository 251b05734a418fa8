package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/membership"
	"github.com/utafrali/storefront/pkg/pagination"
)

// WishlistService implements the wishlist page and toggle.
type WishlistService struct {
	backend Backend
	cache   *cache.Cache
	pages   PageSizes
	logger  *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(b Backend, c *cache.Cache, pages PageSizes, logger *slog.Logger) *WishlistService {
	return &WishlistService{backend: b, cache: c, pages: pages, logger: logger}
}

// Get returns one page of the caller's wishlist.
func (s *WishlistService) Get(ctx context.Context, page int) (*WishlistView, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	w, err := loadWishlist(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		return nil, err
	}

	// Cart state is decoration only; a failure leaves every "in cart" false.
	cart, err := loadCart(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "cart unavailable for wishlist page", slog.String("error", err.Error()))
		cart = nil
	}

	cards := make([]ProductCard, len(w.Products))
	for i, p := range w.Products {
		cards[i] = newProductCard(p, cart, w)
	}
	params := pagination.Params{Page: page, PerPage: s.pages.Wishlist}
	return &WishlistView{Result: pagination.Paginate(cards, params, s.pages.Visible)}, nil
}

// Toggle removes productID when it is on the wishlist and adds it otherwise.
func (s *WishlistService) Toggle(ctx context.Context, productID string) (*Presence, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	current, err := loadWishlist(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		return nil, err
	}

	action := domain.WishlistAdd
	if membership.InWishlist(current, productID) {
		action = domain.WishlistRemove
	}

	updated, err := s.backend.UpdateWishlist(ctx, productID, action)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cache.WishlistKey(claims.UserID))
	s.logger.InfoContext(ctx, "wishlist updated",
		slog.String("product_id", productID),
		slog.String("action", string(action)),
	)

	in := membership.InWishlist(updated, productID)
	return &Presence{ProductID: productID, Present: in, Label: membership.WishlistLabel(in)}, nil
}

// Presence reports whether productID is on the caller's wishlist.
func (s *WishlistService) Presence(ctx context.Context, productID string) (*Presence, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	w, err := loadWishlist(ctx, s.cache, s.backend, claims.UserID)
	if err != nil {
		return nil, err
	}
	in := membership.InWishlist(w, productID)
	return &Presence{ProductID: productID, Present: in, Label: membership.WishlistLabel(in)}, nil
}
