package domain

import (
	"time"

	"github.com/google/uuid"
)

// Admin actions recorded in the audit log.
const (
	ActionProductCreated     = "product.created"
	ActionProductUpdated     = "product.updated"
	ActionProductDeleted     = "product.deleted"
	ActionOrderStatusChanged = "order.status_changed"
)

// Resource types referenced by audit entries.
const (
	ResourceProduct = "product"
	ResourceOrder   = "order"
)

// AuditEntry records one administrative mutation.
type AuditEntry struct {
	ID           uuid.UUID      `json:"id"`
	ActorID      string         `json:"actor_id"`
	ActorEmail   string         `json:"actor_email,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewAuditEntry stamps a fresh id and the current UTC time.
func NewAuditEntry(actorID, actorEmail, action, resourceType, resourceID string, details map[string]any) *AuditEntry {
	if details == nil {
		details = map[string]any{}
	}
	return &AuditEntry{
		ID:           uuid.New(),
		ActorID:      actorID,
		ActorEmail:   actorEmail,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
}
