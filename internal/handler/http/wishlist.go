package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// GetWishlist handles GET /api/v1/wishlist?page=
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), page(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// Toggle handles POST /api/v1/wishlist/{productId}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.RequireParam(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	presence, err := h.service.Toggle(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presence)
}

// Presence handles GET /api/v1/wishlist/{productId}/presence
func (h *WishlistHandler) Presence(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.RequireParam(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	presence, err := h.service.Presence(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presence)
}
