package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// CatalogHandler serves the public product pages.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// ListProducts handles GET /api/v1/products?page=&q=&category=&sort=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.ListProducts(r.Context(), service.ProductQuery{
		Page:     page(r),
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// CategoryProducts handles GET /api/v1/categories/{category}/products
func (h *CatalogHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	category, ok := httputil.RequireParam(w, "category", chi.URLParam(r, "category"))
	if !ok {
		return
	}

	result, err := h.service.CategoryProducts(r.Context(), category, page(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	view, err := h.service.Product(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}
