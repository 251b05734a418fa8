package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context())
	h.write(w, r, view, err)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.service.Add(r.Context(), req.ProductID, req.Quantity)
	h.write(w, r, view, err)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.RequireParam(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.SetQuantity(r.Context(), productID, req.Quantity)
	h.write(w, r, view, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.RequireParam(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	view, err := h.service.Remove(r.Context(), productID)
	h.write(w, r, view, err)
}

// Increment handles POST /api/v1/cart/items/{productId}/increment
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.RequireParam(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	view, err := h.service.Increment(r.Context(), productID)
	h.write(w, r, view, err)
}

// Decrement handles POST /api/v1/cart/items/{productId}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.RequireParam(w, "productId", chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	view, err := h.service.Decrement(r.Context(), productID)
	h.write(w, r, view, err)
}

// Presence handles GET /api/v1/cart/items/{productId}/presence
func (h *CartHandler) Presence(w http.ResponseWriter, r *http.Request) {
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

func (h *CartHandler) write(w http.ResponseWriter, r *http.Request, view *service.CartView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}
