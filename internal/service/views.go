package service

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/membership"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/stepper"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ProductCard is a product decorated with the caller's cart and wishlist
// state. Both flags are false for anonymous callers.
type ProductCard struct {
	domain.Product
	InCart        bool   `json:"in_cart"`
	InWishlist    bool   `json:"in_wishlist"`
	CartLabel     string `json:"cart_label"`
	WishlistLabel string `json:"wishlist_label"`
}

func newProductCard(p domain.Product, cart *domain.Cart, wishlist *domain.Wishlist) ProductCard {
	id := string(p.ID)
	inCart := membership.InCart(cart, id)
	inWishlist := membership.InWishlist(wishlist, id)
	return ProductCard{
		Product:       p,
		InCart:        inCart,
		InWishlist:    inWishlist,
		CartLabel:     membership.CartLabel(inCart),
		WishlistLabel: membership.WishlistLabel(inWishlist),
	}
}

// ProductsPage is a paginated product listing.
type ProductsPage struct {
	pagination.Result[ProductCard]
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
}

// ProductView is the product detail page.
type ProductView struct {
	ProductCard
	InStock      bool            `json:"in_stock"`
	CartQuantity int             `json:"cart_quantity"`
	Stepper      stepper.Stepper `json:"stepper"`
}

// CartLine is one cart row with its line total and quantity bound.
type CartLine struct {
	domain.CartItem
	LineTotal   string `json:"line_total"`
	MaxQuantity int    `json:"max_quantity"`
}

// CartView is the cart page.
type CartView struct {
	Items  []CartLine     `json:"items"`
	Totals pricing.Totals `json:"totals"`
	Empty  bool           `json:"empty"`
}

// newCartView lays out the cart. limits holds each line's quantity bound by
// product id; a line without one falls back to its product snapshot.
func newCartView(cart *domain.Cart, limits map[string]int, policy pricing.ShippingPolicy) CartView {
	var items []domain.CartItem
	if cart != nil {
		items = cart.Items
	}

	lines := make([]CartLine, len(items))
	for i, it := range items {
		limit, ok := limits[string(it.Product.ID)]
		if !ok {
			limit = stepper.MaxQuantityFor(&it.Product)
		}
		lines[i] = CartLine{
			CartItem:    it,
			LineTotal:   it.Price.Mul(decimalQty(it.Quantity)).StringFixed(2),
			MaxQuantity: limit,
		}
	}

	return CartView{
		Items:  lines,
		Totals: pricing.Summarize(items, policy).Totals(),
		Empty:  len(items) == 0,
	}
}

func decimalQty(q int) decimal.Decimal { return decimal.NewFromInt(int64(q)) }

// Presence is the state of the cart or wishlist button for one product.
type Presence struct {
	ProductID string `json:"product_id"`
	Present   bool   `json:"present"`
	Label     string `json:"label"`
	Quantity  int    `json:"quantity,omitempty"`
}

// WishlistView is the wishlist page.
type WishlistView struct {
	pagination.Result[ProductCard]
}

// CheckoutView is the checkout summary shown before placing an order.
type CheckoutView struct {
	CartView
	CanPlaceOrder bool `json:"can_place_order"`
}

// OrderView is an order with display-formatted amounts.
type OrderView struct {
	domain.Order
	Totals pricing.Totals `json:"totals"`
}

func newOrderView(o domain.Order) OrderView {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return OrderView{
		Order: o,
		Totals: pricing.Totals{
			Subtotal:  o.Subtotal.StringFixed(2),
			Shipping:  o.Shipping.StringFixed(2),
			Total:     o.Total.StringFixed(2),
			ItemCount: count,
		},
	}
}

// OrdersPage is a paginated order history.
type OrdersPage struct {
	pagination.Result[OrderView]
	Status string `json:"status,omitempty"`
}
