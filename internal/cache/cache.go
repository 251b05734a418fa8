// Package cache is the storefront's shared read-through cache. Values are
// JSON-encoded under a fixed key schema, expire per key class, and are
// invalidated explicitly after successful mutations or backend events.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTLs is the staleness policy: how long each key class may be served
// without reloading.
type TTLs struct {
	Cart     time.Duration `env:"CART" envDefault:"30s"`
	Wishlist time.Duration `env:"WISHLIST" envDefault:"30s"`
	Products time.Duration `env:"PRODUCTS" envDefault:"5m"`
	Product  time.Duration `env:"PRODUCT" envDefault:"5m"`
	Orders   time.Duration `env:"ORDERS" envDefault:"1m"`
	Order    time.Duration `env:"ORDER" envDefault:"1m"`
	Users    time.Duration `env:"USERS" envDefault:"5m"`
	User     time.Duration `env:"USER" envDefault:"5m"`
}

// DefaultTTLs mirrors the envDefault values.
func DefaultTTLs() TTLs {
	return TTLs{
		Cart:     30 * time.Second,
		Wishlist: 30 * time.Second,
		Products: 5 * time.Minute,
		Product:  5 * time.Minute,
		Orders:   time.Minute,
		Order:    time.Minute,
		Users:    5 * time.Minute,
		User:     5 * time.Minute,
	}
}

// For returns the TTL of a key class. Unknown classes get one minute.
func (t TTLs) For(class string) time.Duration {
	switch class {
	case ClassCart:
		return t.Cart
	case ClassWishlist:
		return t.Wishlist
	case ClassProducts:
		return t.Products
	case ClassProduct:
		return t.Product
	case ClassOrders:
		return t.Orders
	case ClassOrder:
		return t.Order
	case ClassUsers:
		return t.Users
	case ClassUser:
		return t.User
	default:
		return time.Minute
	}
}

// Cache coordinates a Store with per-key request de-duplication.
type Cache struct {
	store  Store
	ttls   TTLs
	group  singleflight.Group
	logger *slog.Logger
}

// New creates a cache over store.
func New(store Store, ttls TTLs, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, ttls: ttls, logger: logger}
}

// Loader fetches the authoritative value for a missed key.
type Loader[T any] func(ctx context.Context) (T, error)

// GetOrLoad returns the cached value for key or loads, stores and returns
// it. Concurrent misses for the same key share one load. Store failures are
// logged and treated as misses; load errors are returned and never cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, load Loader[T]) (T, error) {
	class := Class(key)

	if v, ok := c.lookup(ctx, key, class, func(b []byte) (any, error) {
		var v T
		err := json.Unmarshal(b, &v)
		return v, err
	}); ok {
		return v.(T), nil
	}
	requestsTotal.WithLabelValues(class, "miss").Inc()

	// The shared load must not be canceled by whichever caller started it.
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), key, class, func(lctx context.Context) (any, error) {
			return load(lctx)
		})
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Cache) lookup(ctx context.Context, key, class string, decode func([]byte) (any, error)) (any, bool) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		storeErrorsTotal.WithLabelValues("get").Inc()
		c.logger.WarnContext(ctx, "cache get failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	v, err := decode(data)
	if err != nil {
		c.logger.WarnContext(ctx, "cache entry undecodable, reloading",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	requestsTotal.WithLabelValues(class, "hit").Inc()
	return v, true
}

func (c *Cache) load(ctx context.Context, key, class string, load func(context.Context) (any, error)) (any, error) {
	start := time.Now()
	v, err := load(ctx)
	loadDuration.WithLabelValues(class).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s for cache: %w", key, err)
	}
	if err := c.store.Set(ctx, key, data, c.ttls.For(class)); err != nil {
		storeErrorsTotal.WithLabelValues("set").Inc()
		c.logger.WarnContext(ctx, "cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return v, nil
}

// Invalidate drops keys so the next read reloads them. A load already in
// flight may still write the value it fetched; that entry lives at most
// one TTL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		c.group.Forget(k)
		invalidationsTotal.WithLabelValues(Class(k)).Inc()
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		storeErrorsTotal.WithLabelValues("delete").Inc()
		return fmt.Errorf("invalidate %v: %w", keys, err)
	}
	c.logger.DebugContext(ctx, "cache invalidated", slog.Any("keys", keys))
	return nil
}

// Ping checks the underlying store.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}
