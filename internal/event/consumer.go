package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/cache"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Backend domain topics whose events make cached views stale.
const (
	TopicCartUpdated        = "ecommerce.cart.updated"
	TopicCartCleared        = "ecommerce.cart.cleared"
	TopicOrderCreated       = "ecommerce.order.created"
	TopicOrderStatusChanged = "ecommerce.order.status_changed"
	TopicProductCreated     = "ecommerce.product.created"
	TopicProductUpdated     = "ecommerce.product.updated"
	TopicProductDeleted     = "ecommerce.product.deleted"
	TopicUserRegistered     = "ecommerce.user.registered"
	TopicUserUpdated        = "ecommerce.user.updated"
)

// Topics returns every topic the invalidation consumer subscribes to.
func Topics() []string {
	return []string{
		TopicCartUpdated,
		TopicCartCleared,
		TopicOrderCreated,
		TopicOrderStatusChanged,
		TopicProductCreated,
		TopicProductUpdated,
		TopicProductDeleted,
		TopicUserRegistered,
		TopicUserUpdated,
	}
}

// refData picks the identifiers out of any backend payload. Producers
// disagree on field names, so every known spelling is accepted.
type refData struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
}

func (r refData) first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Invalidator drops cache keys.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Consumer turns backend domain events into cache invalidations.
type Consumer struct {
	cache  Invalidator
	logger *slog.Logger
}

// NewConsumer creates a new invalidation consumer.
func NewConsumer(c Invalidator, logger *slog.Logger) *Consumer {
	return &Consumer{
		cache:  c,
		logger: logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	keys, err := KeysFor(event)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	if err := c.cache.Invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate for %s: %w", event.EventType, err)
	}

	c.logger.DebugContext(ctx, "invalidated cache from event",
		slog.String("event_type", event.EventType),
		slog.Any("keys", keys),
	)
	return nil
}

// KeysFor maps an event to the cache keys it makes stale. Unknown event
// types map to no keys.
func KeysFor(event *pkgkafka.Event) ([]string, error) {
	var ref refData
	if len(event.Data) > 0 && string(event.Data) != "null" {
		if err := event.UnmarshalData(&ref); err != nil {
			return nil, fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
		}
	}

	switch event.EventType {
	case TopicCartUpdated, TopicCartCleared:
		user := ref.first(ref.UserID, event.AggregateID)
		if user == "" {
			return nil, nil
		}
		return []string{cache.CartKey(user)}, nil

	case TopicOrderCreated, TopicOrderStatusChanged:
		keys := []string{cache.AllOrdersKey}
		if order := ref.first(ref.OrderID, ref.ID, event.AggregateID); order != "" {
			keys = append(keys, cache.OrderKey(order))
		}
		if ref.UserID != "" {
			keys = append(keys, cache.OrdersKey(ref.UserID))
			if event.EventType == TopicOrderCreated {
				keys = append(keys, cache.CartKey(ref.UserID))
			}
		}
		return keys, nil

	case TopicProductCreated, TopicProductUpdated, TopicProductDeleted:
		keys := []string{cache.ProductsKey}
		if product := ref.first(ref.ProductID, ref.ID, event.AggregateID); product != "" {
			keys = append(keys, cache.ProductKey(product))
		}
		return keys, nil

	case TopicUserRegistered, TopicUserUpdated:
		keys := []string{cache.UsersKey}
		if user := ref.first(ref.UserID, ref.ID, event.AggregateID); user != "" {
			keys = append(keys, cache.UserKey(user))
		}
		return keys, nil
	}
	return nil, nil
}
