package backend

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
)

// Registration is the sign-up payload. Password confirmation is checked
// before it reaches the backend.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordReset completes a reset started from an emailed link.
type PasswordReset struct {
	Email    string `json:"email"`
	Token    string `json:"token,omitempty"`
	Password string `json:"password"`
}

// Email is a contact-form message relayed by the backend.
type Email struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// GetUsers returns every account. Admin only.
func (c *Client) GetUsers(ctx context.Context) ([]domain.User, error) {
	users, err := call[[]domain.User](ctx, c, http.MethodGet, "/users", nil, "users")
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := call[*domain.User](ctx, c, http.MethodGet, "/users/"+seg(id), nil, "user")
	return present(u, err, "user", id)
}

func (c *Client) RegisterUser(ctx context.Context, r Registration) (*domain.User, error) {
	u, err := call[*domain.User](ctx, c, http.MethodPost, "/auth/register", r, "user")
	return returned(u, err, "user")
}

func (c *Client) ResetPassword(ctx context.Context, r PasswordReset) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", r, nil)
}

func (c *Client) SendEmail(ctx context.Context, e Email) error {
	return c.do(ctx, http.MethodPost, "/email", e, nil)
}
