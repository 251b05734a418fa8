// Package pricing derives cart and order totals from line items.
package pricing

import "github.com/shopspring/decimal"

// Line is anything priced per unit and bought in some quantity.
type Line interface {
	UnitPrice() decimal.Decimal
	Qty() int
}

// ShippingPolicy prices delivery for a set of lines.
type ShippingPolicy interface {
	Shipping(subtotal decimal.Decimal, itemCount int) decimal.Decimal
}

// FreeShipping charges nothing.
type FreeShipping struct{}

func (FreeShipping) Shipping(decimal.Decimal, int) decimal.Decimal { return decimal.Zero }

// FlatRate charges Amount for any non-empty order.
type FlatRate struct {
	Amount decimal.Decimal
}

func (f FlatRate) Shipping(_ decimal.Decimal, itemCount int) decimal.Decimal {
	if itemCount == 0 {
		return decimal.Zero
	}
	return f.Amount
}

// PolicyFor returns FlatRate when rate is positive and FreeShipping otherwise.
func PolicyFor(rate decimal.Decimal) ShippingPolicy {
	if rate.IsPositive() {
		return FlatRate{Amount: rate}
	}
	return FreeShipping{}
}

// Summary holds the derived amounts for a cart or order.
type Summary struct {
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// Summarize sums price × quantity over items and adds shipping. An empty
// list yields an all-zero summary. A nil policy means free shipping.
func Summarize[L Line](items []L, policy ShippingPolicy) Summary {
	if policy == nil {
		policy = FreeShipping{}
	}

	subtotal := decimal.Zero
	count := 0
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Qty()))))
		count += it.Qty()
	}

	shipping := policy.Shipping(subtotal, count)
	return Summary{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
		ItemCount: count,
	}
}

// Totals is a Summary formatted for display.
type Totals struct {
	Subtotal  string `json:"subtotal"`
	Shipping  string `json:"shipping"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

// Totals formats every amount with two decimal places.
func (s Summary) Totals() Totals {
	return Totals{
		Subtotal:  s.Subtotal.StringFixed(2),
		Shipping:  s.Shipping.StringFixed(2),
		Total:     s.Total.StringFixed(2),
		ItemCount: s.ItemCount,
	}
}
