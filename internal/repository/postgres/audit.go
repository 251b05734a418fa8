package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
)

const defaultPerPage = 20

// AuditRepository implements repository.AuditRepository using PostgreSQL.
type AuditRepository struct {
	pool database.DBTX
}

// NewAuditRepository creates a new PostgreSQL-backed audit repository.
func NewAuditRepository(pool database.DBTX) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const insertAuditQuery = `
	INSERT INTO admin_audit_log (id, actor_id, actor_email, action, resource_type, resource_id, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Create inserts one audit entry.
func (r *AuditRepository) Create(ctx context.Context, e *domain.AuditEntry) (err error) {
	ctx, end := database.TraceQuery(ctx, "InsertAudit", insertAuditQuery)
	defer func() { end(err) }()

	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertAuditQuery,
		e.ID,
		e.ActorID,
		e.ActorEmail,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		details,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns a page of audit entries, newest first.
func (r *AuditRepository) List(ctx context.Context, filter repository.AuditFilter) (_ []domain.AuditEntry, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	for _, f := range []struct {
		column string
		value  *string
	}{
		{"actor_id", filter.ActorID},
		{"resource_type", filter.ResourceType},
		{"resource_id", filter.ResourceID},
	} {
		if f.value == nil {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", f.column, argIndex))
		args = append(args, *f.value)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, actor_id, actor_email, action, resource_type, resource_id, details, created_at,
			   count(*) OVER() AS total_count
		FROM admin_audit_log
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = defaultPerPage
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListAudit", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var totalCount int
	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			e       domain.AuditEntry
			details []byte
		)
		if err := rows.Scan(
			&e.ID,
			&e.ActorID,
			&e.ActorEmail,
			&e.Action,
			&e.ResourceType,
			&e.ResourceID,
			&details,
			&e.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan audit row: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, 0, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit rows: %w", err)
	}

	return entries, totalCount, nil
}
