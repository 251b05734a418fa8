package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/utafrali/storefront/internal/backend"
	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// SignUp is the registration form.
type SignUp struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeToTerms    bool
}

// NewPassword is the reset-password form.
type NewPassword struct {
	Email           string
	Token           string
	Password        string
	ConfirmPassword string
}

// AccountService relays account forms to the backend after checking the
// parts the backend does not see, such as the confirmation field.
type AccountService struct {
	backend Backend
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(b Backend, c *cache.Cache, logger *slog.Logger) *AccountService {
	return &AccountService{backend: b, cache: c, logger: logger}
}

// Register creates an account.
func (s *AccountService) Register(ctx context.Context, in SignUp) (*domain.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.InvalidInput("passwords do not match")
	}
	if !in.AgreeToTerms {
		return nil, apperrors.InvalidInput("you must agree to the terms and conditions")
	}

	user, err := s.backend.RegisterUser(ctx, backend.Registration{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Password: in.Password,
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, cache.UsersKey)
	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// ResetPassword sets a new password for the account.
func (s *AccountService) ResetPassword(ctx context.Context, in NewPassword) error {
	if in.Password != in.ConfirmPassword {
		return apperrors.InvalidInput("passwords do not match")
	}
	return s.backend.ResetPassword(ctx, backend.PasswordReset{
		Email:    normalizeEmail(in.Email),
		Token:    in.Token,
		Password: in.Password,
	})
}

// Contact relays a contact-form message.
func (s *AccountService) Contact(ctx context.Context, msg backend.Email) error {
	msg.Email = normalizeEmail(msg.Email)
	if err := s.backend.SendEmail(ctx, msg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "contact message sent", slog.String("subject", msg.Subject))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
