package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- Mock Audit Repository ---

type mockAuditRepository struct {
	mock.Mock
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AuditEntry), args.Int(1), args.Error(2)
}

// --- Mock Publisher ---

type mockAuditPublisher struct {
	mock.Mock
}

func (m *mockAuditPublisher) PublishAdminAction(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestAuditService_Record(t *testing.T) {
	repo := new(mockAuditRepository)
	pub := new(mockAuditPublisher)
	svc := NewAuditService(repo, pub, DefaultPageSizes(), newTestLogger())

	matches := mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.ActorID == "admin-1" &&
			e.ActorEmail == "admin@example.com" &&
			e.Action == domain.ActionProductDeleted &&
			e.ResourceID == "p1"
	})
	repo.On("Create", mock.Anything, matches).Return(nil)
	pub.On("PublishAdminAction", mock.Anything, matches).Return(nil)

	svc.Record(adminCtx(), domain.ActionProductDeleted, domain.ResourceProduct, "p1", nil)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestAuditService_Record_SinkFailuresAreSwallowed(t *testing.T) {
	repo := new(mockAuditRepository)
	pub := new(mockAuditPublisher)
	svc := NewAuditService(repo, pub, DefaultPageSizes(), newTestLogger())
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	pub.On("PublishAdminAction", mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	assert.NotPanics(t, func() {
		svc.Record(adminCtx(), domain.ActionProductCreated, domain.ResourceProduct, "p1", nil)
	})
	pub.AssertExpectations(t)
}

func TestAuditService_Record_NoSinks(t *testing.T) {
	svc := NewAuditService(nil, nil, DefaultPageSizes(), newTestLogger())
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), domain.ActionProductCreated, domain.ResourceProduct, "p1", nil)
	})
}

func TestAuditService_List_Disabled(t *testing.T) {
	svc := NewAuditService(nil, nil, DefaultPageSizes(), newTestLogger())

	_, err := svc.List(adminCtx(), repository.AuditFilter{Page: 1})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnavailable))
}

func TestAuditService_List(t *testing.T) {
	repo := new(mockAuditRepository)
	svc := NewAuditService(repo, nil, DefaultPageSizes(), newTestLogger())

	resourceType := domain.ResourceOrder
	entries := []domain.AuditEntry{
		*domain.NewAuditEntry("admin-1", "", domain.ActionOrderStatusChanged, domain.ResourceOrder, "o1", nil),
	}
	repo.On("List", mock.Anything, repository.AuditFilter{ResourceType: &resourceType, Page: 2, PerPage: 10}).
		Return(entries, 11, nil)

	page, err := svc.List(adminCtx(), repository.AuditFilter{ResourceType: &resourceType, Page: 2})

	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 11, page.TotalCount)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestAuditService_List_ClampsPastLastPage(t *testing.T) {
	repo := new(mockAuditRepository)
	svc := NewAuditService(repo, nil, DefaultPageSizes(), newTestLogger())

	last := []domain.AuditEntry{
		*domain.NewAuditEntry("admin-1", "", domain.ActionProductCreated, domain.ResourceProduct, "p9", nil),
	}
	repo.On("List", mock.Anything, repository.AuditFilter{Page: 7, PerPage: 10}).Return([]domain.AuditEntry{}, 21, nil)
	repo.On("List", mock.Anything, repository.AuditFilter{Page: 3, PerPage: 10}).Return(last, 21, nil)

	page, err := svc.List(adminCtx(), repository.AuditFilter{Page: 7})

	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Len(t, page.Data, 1)
}

func TestAuditService_List_RepositoryError(t *testing.T) {
	repo := new(mockAuditRepository)
	svc := NewAuditService(repo, nil, DefaultPageSizes(), newTestLogger())
	repo.On("List", mock.Anything, mock.Anything).Return(nil, 0, errors.New("db down"))

	_, err := svc.List(adminCtx(), repository.AuditFilter{})

	require.Error(t, err)
}
