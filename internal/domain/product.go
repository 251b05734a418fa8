package domain

import "github.com/shopspring/decimal"

// Availability is the two-valued stock flag shown on product cards.
type Availability string

const (
	InStock    Availability = "In Stock"
	OutOfStock Availability = "Out of Stock"
)

// Product is a catalog entry as served by the backend.
type Product struct {
	ID            ID               `json:"id"`
	Title         string           `json:"title"`
	Brand         string           `json:"brand"`
	Category      string           `json:"category"`
	SKU           string           `json:"sku"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	Thumbnails    []string         `json:"thumbnails"`
	Availability  Availability     `json:"availability"`

	// Quantity is the stock on hand; nil when the backend omits it.
	Quantity   *int     `json:"quantity,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Popularity *float64 `json:"popularity,omitempty"`
}

// InStock reports whether the product can be added to a cart.
func (p *Product) InStock() bool {
	if p.Availability == OutOfStock {
		return false
	}
	return p.Quantity == nil || *p.Quantity > 0
}

// Discounted reports whether an original price above the current one is set.
func (p *Product) Discounted() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}
