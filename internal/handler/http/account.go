package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/backend"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// AccountHandler handles the public account forms.
type AccountHandler struct {
	service *service.AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	AgreeToTerms    bool   `json:"agree_to_terms" validate:"required"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ContactRequest is the contact form.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), service.SignUp{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AgreeToTerms:    req.AgreeToTerms,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, user)
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	err := h.service.ResetPassword(r.Context(), service.NewPassword{
		Email:           req.Email,
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "password_reset"})
}

// Contact handles POST /api/v1/contact
func (h *AccountHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	err := h.service.Contact(r.Context(), backend.Email{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
