package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "cart:u1", CartKey("u1"))
	assert.Equal(t, "wishlist:u1", WishlistKey("u1"))
	assert.Equal(t, "product:42", ProductKey("42"))
	assert.Equal(t, "orders:u1", OrdersKey("u1"))
	assert.Equal(t, "order:o-9", OrderKey("o-9"))
	assert.Equal(t, "user:7", UserKey("7"))
	assert.Equal(t, "products", ProductsKey)
	assert.Equal(t, "orders:all", AllOrdersKey)
	assert.Equal(t, "users", UsersKey)
}

func TestClass(t *testing.T) {
	assert.Equal(t, ClassCart, Class(CartKey("u1")))
	assert.Equal(t, ClassOrders, Class(AllOrdersKey))
	assert.Equal(t, ClassProducts, Class(ProductsKey))
	assert.Equal(t, ClassOrder, Class("order:a:b"))
}

func TestTTLs_For(t *testing.T) {
	ttls := DefaultTTLs()

	assert.Equal(t, 30*time.Second, ttls.For(ClassCart))
	assert.Equal(t, 5*time.Minute, ttls.For(ClassProduct))
	assert.Equal(t, time.Minute, ttls.For(ClassOrders))
	assert.Equal(t, time.Minute, ttls.For("unknown"))
}
