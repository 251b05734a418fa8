package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// OrderHandler handles checkout and order history endpoints.
type OrderHandler struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	logger   *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(checkout *service.CheckoutService, orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders, logger: logger}
}

// --- Request DTOs ---

// PlaceOrderRequest is the JSON request body for placing an order.
type PlaceOrderRequest struct {
	ShippingDetails domain.ShippingDetails `json:"shipping_details"`
}

// --- Handlers ---

// CheckoutSummary handles GET /api/v1/checkout
func (h *OrderHandler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	view, err := h.checkout.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// PlaceOrder handles POST /api/v1/checkout
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), req.ShippingDetails)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders?page=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.List(r.Context(), page(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}
