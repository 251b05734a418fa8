package cache

import "strings"

// Key classes. Each class has its own TTL and metric label.
const (
	ClassCart     = "cart"
	ClassWishlist = "wishlist"
	ClassProducts = "products"
	ClassProduct  = "product"
	ClassOrders   = "orders"
	ClassOrder    = "order"
	ClassUsers    = "users"
	ClassUser     = "user"
)

// Collection keys shared by every user.
const (
	ProductsKey  = ClassProducts
	AllOrdersKey = ClassOrders + ":all"
	UsersKey     = ClassUsers
)

func CartKey(userID string) string     { return ClassCart + ":" + userID }
func WishlistKey(userID string) string { return ClassWishlist + ":" + userID }
func ProductKey(id string) string      { return ClassProduct + ":" + id }
func OrdersKey(userID string) string   { return ClassOrders + ":" + userID }
func OrderKey(id string) string        { return ClassOrder + ":" + id }
func UserKey(id string) string         { return ClassUser + ":" + id }

// Class returns the part of key before the first colon.
func Class(key string) string {
	class, _, _ := strings.Cut(key, ":")
	return class
}
