package domain

import "github.com/shopspring/decimal"

// Cart is the signed-in user's cart. The backend creates it on first add and
// clears it when an order is placed.
type Cart struct {
	ID     ID         `json:"id"`
	UserID ID         `json:"userId"`
	Items  []CartItem `json:"items"`
}

// CartItem is one line of a cart. Price is the unit price captured when the
// product was added.
type CartItem struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// UnitPrice and Qty satisfy pricing.Line.
func (i CartItem) UnitPrice() decimal.Decimal { return i.Price }
func (i CartItem) Qty() int                   { return i.Quantity }

// ItemByProduct returns the line holding productID.
func (c *Cart) ItemByProduct(productID string) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if string(it.Product.ID) == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Wishlist is an unordered set of products saved by one user.
type Wishlist struct {
	UserID   ID        `json:"userId"`
	Products []Product `json:"products"`
}

// WishlistAction selects the direction of a wishlist update.
type WishlistAction string

const (
	WishlistAdd    WishlistAction = "add"
	WishlistRemove WishlistAction = "remove"
)
