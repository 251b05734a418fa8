package cache

import (
	"context"
	"time"
)

// Store is the byte-level backend of the cache.
type Store interface {
	// Get reports ok=false on a miss; err is reserved for store failures.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
