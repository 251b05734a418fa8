package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// AuditFilter defines filter criteria for listing audit entries. Nil fields
// match everything.
type AuditFilter struct {
	ActorID      *string
	ResourceType *string
	ResourceID   *string
	Page         int
	PerPage      int
}

// AuditRepository persists the admin audit log.
type AuditRepository interface {
	// Create appends an entry.
	Create(ctx context.Context, entry *domain.AuditEntry) error

	// List returns entries matching filter, newest first, with the total count.
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, int, error)
}
