package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. Only administrators change
// it, and any status may follow any other so mistakes can be corrected.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// ValidStatuses returns all order statuses in lifecycle order.
func ValidStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	return slices.Contains(ValidStatuses(), OrderStatus(status))
}

// ShippingDetails is the delivery contact captured at checkout.
type ShippingDetails struct {
	Name    string `json:"name" validate:"required,max=120"`
	Company string `json:"company,omitempty" validate:"max=120"`
	Country string `json:"country" validate:"required,max=80"`
	Address string `json:"address" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=80"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Email   string `json:"email" validate:"required,email"`
}

// Order is a placed order. Total is expected to equal Subtotal + Shipping.
type Order struct {
	ID              ID              `json:"id"`
	UserID          ID              `json:"userId"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// UnitPrice and Qty satisfy pricing.Line.
func (i OrderItem) UnitPrice() decimal.Decimal { return i.Price }
func (i OrderItem) Qty() int                   { return i.Quantity }

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID string) bool {
	return userID != "" && string(o.UserID) == userID
}
