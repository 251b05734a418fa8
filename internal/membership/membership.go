// Package membership answers "is this product already in the collection".
package membership

import (
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

// Contains scans items for one whose id, compared as a string, equals
// productID. A nil collection contains nothing.
func Contains[T any, K any](items []T, productID string, id func(T) K) bool {
	if productID == "" {
		return false
	}
	for _, it := range items {
		if fmt.Sprint(id(it)) == productID {
			return true
		}
	}
	return false
}

// InCart reports whether the cart holds productID. A nil cart (not loaded
// yet, or signed out) holds nothing.
func InCart(cart *domain.Cart, productID string) bool {
	if cart == nil {
		return false
	}
	return Contains(cart.Items, productID, func(it domain.CartItem) domain.ID { return it.Product.ID })
}

// InWishlist reports whether the wishlist holds productID.
func InWishlist(w *domain.Wishlist, productID string) bool {
	if w == nil {
		return false
	}
	return Contains(w.Products, productID, func(p domain.Product) domain.ID { return p.ID })
}

// Button labels for the two membership-driven controls.
const (
	LabelAddToCart          = "Add to Cart"
	LabelViewInCart         = "View in Cart"
	LabelAddToWishlist      = "Add to Wishlist"
	LabelRemoveFromWishlist = "Remove from Wishlist"
)

// CartLabel picks the cart button label.
func CartLabel(inCart bool) string {
	if inCart {
		return LabelViewInCart
	}
	return LabelAddToCart
}

// WishlistLabel picks the wishlist button label.
func WishlistLabel(inWishlist bool) string {
	if inWishlist {
		return LabelRemoveFromWishlist
	}
	return LabelAddToWishlist
}
