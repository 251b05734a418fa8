package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
)

// --- Test Helpers ---

func newTestRepo(t *testing.T) (*AuditRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewAuditRepository(mock), mock
}

var auditColumns = []string{
	"id", "actor_id", "actor_email", "action", "resource_type", "resource_id", "details", "created_at", "total_count",
}

// --- Create ---

func TestAuditRepository_Create_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	e := domain.NewAuditEntry("admin-1", "admin@example.com", domain.ActionOrderStatusChanged,
		domain.ResourceOrder, "o-1", map[string]any{"from": "Pending", "to": "Processing"})

	mock.ExpectExec("INSERT INTO admin_audit_log").
		WithArgs(e.ID, "admin-1", "admin@example.com", domain.ActionOrderStatusChanged,
			domain.ResourceOrder, "o-1", pgxmock.AnyArg(), e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_Create_DBError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO admin_audit_log").
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), domain.NewAuditEntry("a", "", domain.ActionProductDeleted, domain.ResourceProduct, "p", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- List ---

func TestAuditRepository_List_Success(t *testing.T) {
	repo, mock := newTestRepo(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	id1, id2 := uuid.New(), uuid.New()

	rows := pgxmock.NewRows(auditColumns).
		AddRow(id1, "admin-1", "a@example.com", domain.ActionProductCreated, domain.ResourceProduct, "p-1",
			[]byte(`{"title":"Lamp"}`), now, 12).
		AddRow(id2, "admin-2", "", domain.ActionProductDeleted, domain.ResourceProduct, "p-2",
			[]byte(`{}`), now.Add(-time.Minute), 12)

	mock.ExpectQuery("SELECT .+ FROM admin_audit_log").
		WithArgs(10, 10).
		WillReturnRows(rows)

	entries, total, err := repo.List(context.Background(), repository.AuditFilter{Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, entries, 2)
	assert.Equal(t, id1, entries[0].ID)
	assert.Equal(t, "Lamp", entries[0].Details["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_List_WithFilters(t *testing.T) {
	repo, mock := newTestRepo(t)
	resourceType, resourceID := domain.ResourceOrder, "o-9"

	mock.ExpectQuery("SELECT .+ FROM admin_audit_log\\s+WHERE resource_type = \\$1 AND resource_id = \\$2").
		WithArgs(resourceType, resourceID, 20, 0).
		WillReturnRows(pgxmock.NewRows(auditColumns))

	entries, total, err := repo.List(context.Background(), repository.AuditFilter{
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_List_QueryError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM admin_audit_log").
		WillReturnError(errors.New("relation does not exist"))

	_, _, err := repo.List(context.Background(), repository.AuditFilter{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list audit entries")
	assert.NoError(t, mock.ExpectationsWereMet())
}
