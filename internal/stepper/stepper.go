// Package stepper bounds the quantity a shopper may request for a product.
package stepper

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// DefaultMax is used when the backend does not report a stock count.
const DefaultMax = 10

// ErrExceedsStock is matched (errors.Is) when a requested quantity is above
// the product's maximum.
var ErrExceedsStock = errors.New("quantity exceeds available stock")

// MaxQuantityFor returns the product's stock count, or DefaultMax when the
// backend omitted it.
func MaxQuantityFor(p *domain.Product) int {
	if p == nil || p.Quantity == nil {
		return DefaultMax
	}
	return max(0, *p.Quantity)
}

// Stepper is a requested quantity bounded to [1, Max].
type Stepper struct {
	Quantity int `json:"quantity"`
	Max      int `json:"max_quantity"`
}

// New starts a stepper at quantity 1. A non-positive max means DefaultMax.
func New(maxQty int) Stepper {
	if maxQty <= 0 {
		maxQty = DefaultMax
	}
	return Stepper{Quantity: 1, Max: maxQty}
}

// ForProduct starts a stepper bounded by the product's stock. A product
// reporting zero stock accepts no quantity at all.
func ForProduct(p *domain.Product) Stepper {
	return Stepper{Quantity: 1, Max: MaxQuantityFor(p)}
}

// Increment adds one. At Max the step is rejected and the quantity is left
// unchanged.
func (s Stepper) Increment() (Stepper, error) {
	if s.Quantity >= s.Max {
		return s, exceeds(s.Max)
	}
	s.Quantity++
	return s, nil
}

// Decrement removes one. At 1 it does nothing.
func (s Stepper) Decrement() Stepper {
	if s.Quantity > 1 {
		s.Quantity--
	}
	return s
}

// Set jumps to q. Quantities above Max are rejected, below 1 are invalid.
func (s Stepper) Set(q int) (Stepper, error) {
	if q < 1 {
		return s, apperrors.InvalidInput("quantity must be at least 1")
	}
	if q > s.Max {
		return s, exceeds(s.Max)
	}
	s.Quantity = q
	return s, nil
}

// Check validates q against the product's stock.
func Check(p *domain.Product, q int) error {
	_, err := ForProduct(p).Set(q)
	return err
}

func exceeds(maxQty int) error {
	return &apperrors.AppError{
		Code:    "QUANTITY_EXCEEDS_STOCK",
		Message: fmt.Sprintf("only %d available", maxQty),
		Status:  http.StatusBadRequest,
		Err:     fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, ErrExceedsStock),
	}
}
