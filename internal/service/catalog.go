package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/stepper"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

// Sort orders accepted by the product listing.
const (
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRating     = "rating"
	SortPopularity = "popularity"
)

// ProductQuery filters and pages the product listing.
type ProductQuery struct {
	Page     int
	Query    string
	Category string
	Sort     string
}

// CatalogService serves the public product pages.
type CatalogService struct {
	backend Backend
	cache   *cache.Cache
	pages   PageSizes
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(b Backend, c *cache.Cache, pages PageSizes, logger *slog.Logger) *CatalogService {
	return &CatalogService{backend: b, cache: c, pages: pages, logger: logger}
}

// ListProducts returns one page of the catalog, optionally filtered by a
// free-text query and a category slug.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductsPage, error) {
	products, err := loadProducts(ctx, s.cache, s.backend)
	if err != nil {
		return nil, err
	}

	filtered := filterProducts(products, q)
	sortProducts(filtered, q.Sort)

	params := pagination.Params{Page: q.Page, PerPage: s.pages.Products}
	maxVisible := s.pages.ProductsVisible
	if q.Category != "" {
		params.PerPage = s.pages.Category
		maxVisible = s.pages.Visible
	}

	return &ProductsPage{
		Result:   s.decorate(ctx, pagination.Paginate(filtered, params, maxVisible)),
		Category: q.Category,
		Query:    q.Query,
	}, nil
}

// CategoryProducts lists the products whose category matches the slug.
func (s *CatalogService) CategoryProducts(ctx context.Context, category string, page int) (*ProductsPage, error) {
	return s.ListProducts(ctx, ProductQuery{Page: page, Category: category})
}

// Product returns the detail view. Signed-in callers also get their cart
// and wishlist state for the product.
func (s *CatalogService) Product(ctx context.Context, id string) (*ProductView, error) {
	p, err := loadProduct(ctx, s.cache, s.backend, id)
	if err != nil {
		return nil, err
	}

	cart, wishlist := s.memberships(ctx)
	view := &ProductView{
		ProductCard: newProductCard(*p, cart, wishlist),
		InStock:     p.InStock(),
		Stepper:     stepper.ForProduct(p),
	}
	if item, ok := cart.ItemByProduct(id); ok {
		view.CartQuantity = item.Quantity
	}
	return view, nil
}

func (s *CatalogService) decorate(ctx context.Context, page pagination.Result[domain.Product]) pagination.Result[ProductCard] {
	cart, wishlist := s.memberships(ctx)

	cards := make([]ProductCard, len(page.Data))
	for i, p := range page.Data {
		cards[i] = newProductCard(p, cart, wishlist)
	}
	return pagination.Result[ProductCard]{
		Data:       cards,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
		Pages:      page.Pages,
	}
}

// memberships loads the caller's cart and wishlist for button state.
// Anonymous callers and load failures yield nil, which reads as "not present".
func (s *CatalogService) memberships(ctx context.Context) (*domain.Cart, *domain.Wishlist) {
	userID := middleware.UserIDFromContext(ctx)
	if userID == "" {
		return nil, nil
	}

	cart, err := loadCart(ctx, s.cache, s.backend, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "cart unavailable for product state", slog.String("error", err.Error()))
		cart = nil
	}
	wishlist, err := loadWishlist(ctx, s.cache, s.backend, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "wishlist unavailable for product state", slog.String("error", err.Error()))
		wishlist = nil
	}
	return cart, wishlist
}

func filterProducts(products []domain.Product, q ProductQuery) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && !slug.Matches(p.Category, q.Category) {
			continue
		}
		if needle != "" && !matchesQuery(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p domain.Product, needle string) bool {
	for _, field := range []string{p.Title, p.Brand, p.Category, p.SKU} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func sortProducts(products []domain.Product, order string) {
	var cmpFn func(a, b domain.Product) int
	switch order {
	case SortPriceAsc:
		cmpFn = func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		cmpFn = func(a, b domain.Product) int { return b.Price.Cmp(a.Price) }
	case SortRating:
		cmpFn = func(a, b domain.Product) int { return cmp.Compare(deref(b.Rating), deref(a.Rating)) }
	case SortPopularity:
		cmpFn = func(a, b domain.Product) int { return cmp.Compare(deref(b.Popularity), deref(a.Popularity)) }
	default:
		return
	}
	slices.SortStableFunc(products, cmpFn)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
