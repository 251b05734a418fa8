package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// AuditPublisher announces recorded admin actions.
type AuditPublisher interface {
	PublishAdminAction(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditService records admin mutations. Either sink may be nil.
type AuditService struct {
	repo      repository.AuditRepository
	publisher AuditPublisher
	pages     PageSizes
	logger    *slog.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(repo repository.AuditRepository, publisher AuditPublisher, pages PageSizes, logger *slog.Logger) *AuditService {
	return &AuditService{repo: repo, publisher: publisher, pages: pages, logger: logger}
}

// Record stores and publishes an entry for the signed-in admin. It never
// fails the mutation it describes; sink errors are logged.
func (s *AuditService) Record(ctx context.Context, action, resourceType, resourceID string, details map[string]any) {
	var actorID, actorEmail string
	if claims, err := caller(ctx); err == nil {
		actorID, actorEmail = claims.UserID, claims.Email
	}
	entry := domain.NewAuditEntry(actorID, actorEmail, action, resourceType, resourceID, details)

	if s.repo != nil {
		if err := s.repo.Create(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "failed to store audit entry",
				slog.String("action", action),
				slog.String("resource_id", resourceID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishAdminAction(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish audit entry",
				slog.String("action", action),
				slog.String("resource_id", resourceID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// List returns one page of the audit log, newest first.
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) (*pagination.Result[domain.AuditEntry], error) {
	if s.repo == nil {
		return nil, apperrors.Unavailable("audit log is disabled", nil)
	}

	params := pagination.Params{Page: filter.Page, PerPage: s.pages.Admin}
	if params.Page < 1 {
		params.Page = 1
	}
	filter.Page, filter.PerPage = params.Page, params.PerPage

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	// Past the last page: clamp and fetch the last page instead.
	if last := pagination.TotalPages(total, params.PerPage); len(entries) == 0 && total > 0 && params.Page > last {
		params.Page, filter.Page = last, last
		if entries, total, err = s.repo.List(ctx, filter); err != nil {
			return nil, err
		}
	}
	result := pagination.NewResult(entries, total, params, s.pages.Visible)
	return &result, nil
}
