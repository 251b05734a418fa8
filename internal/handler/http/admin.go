package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// AdminHandler handles the admin dashboard endpoints.
type AdminHandler struct {
	admin  *service.AdminService
	audit  *service.AuditService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(admin *service.AdminService, audit *service.AuditService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, audit: audit, logger: logger}
}

// --- Request DTOs ---

// ProductRequest is the create and update body for a product.
type ProductRequest struct {
	Title         string           `json:"title" validate:"required,max=255"`
	Brand         string           `json:"brand" validate:"max=120"`
	Category      string           `json:"category" validate:"required,max=120"`
	SKU           string           `json:"sku" validate:"max=64"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Description   string           `json:"description" validate:"max=10000"`
	Image         string           `json:"image" validate:"omitempty,url"`
	Thumbnails    []string         `json:"thumbnails" validate:"omitempty,dive,url"`
	Quantity      *int             `json:"quantity" validate:"omitempty,gte=0"`
	Rating        *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

// toProduct checks what the struct tags cannot express and builds the product.
func (req ProductRequest) toProduct() (*domain.Product, error) {
	if !req.Price.IsPositive() {
		return nil, apperrors.InvalidInput("price must be greater than 0")
	}
	if req.OriginalPrice != nil && req.OriginalPrice.LessThan(req.Price) {
		return nil, apperrors.InvalidInput("originalPrice must not be below price")
	}

	availability := domain.InStock
	if req.Quantity != nil && *req.Quantity == 0 {
		availability = domain.OutOfStock
	}
	return &domain.Product{
		Title:         req.Title,
		Brand:         req.Brand,
		Category:      req.Category,
		SKU:           req.SKU,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Description:   req.Description,
		Image:         req.Image,
		Thumbnails:    req.Thumbnails,
		Availability:  availability,
		Quantity:      req.Quantity,
		Rating:        req.Rating,
	}, nil
}

// UpdateStatusRequest is the JSON request body for changing an order status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Processing Shipped Delivered Cancelled"`
}

// --- Products ---

// ListProducts handles GET /api/v1/admin/products?page=
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.Products(r.Context(), page(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// CreateProduct handles POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	p, err := req.toProduct()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	created, err := h.admin.CreateProduct(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ProductRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	p, err := req.toProduct()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	p.ID = domain.ID(id)

	updated, err := h.admin.UpdateProduct(r.Context(), id, p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.admin.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Users ---

// ListUsers handles GET /api/v1/admin/users?page=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.Users(r.Context(), page(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// GetUser handles GET /api/v1/admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	user, err := h.admin.User(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, user)
}

// --- Orders ---

// ListOrders handles GET /api/v1/admin/orders?page=&status=
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.Orders(r.Context(), page(r), r.URL.Query().Get("status"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// UpdateOrderStatus handles PUT /api/v1/admin/orders/{id}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.RequireParam(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.admin.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// --- Audit ---

// ListAudit handles GET /api/v1/admin/audit?page=&actor_id=&resource_type=&resource_id=
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AuditFilter{
		ActorID:      optional(q.Get("actor_id")),
		ResourceType: optional(q.Get("resource_type")),
		ResourceID:   optional(q.Get("resource_id")),
		Page:         page(r),
	}

	result, err := h.audit.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
