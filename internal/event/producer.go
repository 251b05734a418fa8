package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// TopicAdminAction carries every recorded admin mutation.
const TopicAdminAction = "ecommerce.storefront.admin_action"

// Aggregate type constant.
const AggregateTypeAdminAction = "admin_action"

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// AdminActionData is the payload for a storefront.admin_action event.
type AdminActionData struct {
	AuditID      string         `json:"audit_id"`
	ActorID      string         `json:"actor_id"`
	ActorEmail   string         `json:"actor_email,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAdminAction publishes an audit entry, keyed by the affected resource.
func (p *Producer) PublishAdminAction(ctx context.Context, e *domain.AuditEntry) error {
	data := AdminActionData{
		AuditID:      e.ID.String(),
		ActorID:      e.ActorID,
		ActorEmail:   e.ActorEmail,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Details:      e.Details,
		OccurredAt:   e.CreatedAt,
	}

	event, err := pkgkafka.NewEvent(TopicAdminAction, e.ResourceID, AggregateTypeAdminAction, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create storefront.admin_action event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("resource_type", e.ResourceType)

	if err := p.kafka.Publish(ctx, TopicAdminAction, event); err != nil {
		return fmt.Errorf("publish storefront.admin_action event: %w", err)
	}

	p.logger.DebugContext(ctx, "published storefront.admin_action event",
		slog.String("action", e.Action),
		slog.String("resource_id", e.ResourceID),
	)

	return nil
}
