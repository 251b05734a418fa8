package backend

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

// NewOrder is the checkout payload. Amounts are computed by the storefront
// from the cart at placement time.
type NewOrder struct {
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
	Items           []domain.OrderItem     `json:"items"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	Shipping        decimal.Decimal        `json:"shipping"`
	Total           decimal.Decimal        `json:"total"`
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// GetOrders returns the caller's orders.
func (c *Client) GetOrders(ctx context.Context) ([]domain.Order, error) {
	return ordersOrEmpty(call[[]domain.Order](ctx, c, http.MethodGet, "/orders", nil, "orders"))
}

// GetAllOrders returns every order. Admin only.
func (c *Client) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return ordersOrEmpty(call[[]domain.Order](ctx, c, http.MethodGet, "/admin/orders", nil, "orders"))
}

func (c *Client) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := call[*domain.Order](ctx, c, http.MethodGet, "/orders/"+seg(id), nil, "order")
	return present(o, err, "order", id)
}

// PlaceOrder creates an order. The backend clears the caller's cart.
func (c *Client) PlaceOrder(ctx context.Context, o NewOrder) (*domain.Order, error) {
	placed, err := call[*domain.Order](ctx, c, http.MethodPost, "/orders", o, "order")
	return returned(placed, err, "order")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	o, err := call[*domain.Order](ctx, c, http.MethodPut, "/orders/"+seg(id)+"/status", statusRequest{Status: status}, "order")
	return returned(o, err, "order")
}

func ordersOrEmpty(orders []domain.Order, err error) ([]domain.Order, error) {
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
