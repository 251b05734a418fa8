package backend

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the caller's cart. A user without a cart gets an empty one.
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	return cartOrEmpty(call[*domain.Cart](ctx, c, http.MethodGet, "/cart", nil, "cart"))
}

// AddToCart adds quantity units of productID to the caller's cart.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	body := cartItemRequest{ProductID: productID, Quantity: quantity}
	return cartOrEmpty(call[*domain.Cart](ctx, c, http.MethodPost, "/cart/items", body, "cart"))
}

// RemoveFromCart drops productID from the caller's cart.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*domain.Cart, error) {
	return cartOrEmpty(call[*domain.Cart](ctx, c, http.MethodDelete, "/cart/items/"+seg(productID), nil, "cart"))
}

// UpdateCartQuantity sets the quantity of productID in the caller's cart.
func (c *Client) UpdateCartQuantity(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	body := quantityRequest{Quantity: quantity}
	return cartOrEmpty(call[*domain.Cart](ctx, c, http.MethodPut, "/cart/items/"+seg(productID), body, "cart"))
}

func cartOrEmpty(cart *domain.Cart, err error) (*domain.Cart, error) {
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{}
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

type wishlistRequest struct {
	ProductID string                `json:"productId"`
	Action    domain.WishlistAction `json:"action"`
}

// GetWishlist returns the caller's wishlist.
func (c *Client) GetWishlist(ctx context.Context) (*domain.Wishlist, error) {
	return wishlistOrEmpty(call[*domain.Wishlist](ctx, c, http.MethodGet, "/wishlist", nil, "wishlist"))
}

// UpdateWishlist adds productID to or removes it from the caller's wishlist.
func (c *Client) UpdateWishlist(ctx context.Context, productID string, action domain.WishlistAction) (*domain.Wishlist, error) {
	body := wishlistRequest{ProductID: productID, Action: action}
	return wishlistOrEmpty(call[*domain.Wishlist](ctx, c, http.MethodPut, "/wishlist", body, "wishlist"))
}

func wishlistOrEmpty(w *domain.Wishlist, err error) (*domain.Wishlist, error) {
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = &domain.Wishlist{}
	}
	if w.Products == nil {
		w.Products = []domain.Product{}
	}
	return w, nil
}
