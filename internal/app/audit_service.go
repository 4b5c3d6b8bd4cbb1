package app

import (
	"context"
	"fmt"

	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

// DefaultAuditLimit bounds audit listings that do not set a limit.
const DefaultAuditLimit = 50

// AuditServiceImpl implements the AuditService interface.
type AuditServiceImpl struct {
	auditRepo secondary.AuditRepository
}

// NewAuditService creates a new AuditService with injected dependencies.
func NewAuditService(auditRepo secondary.AuditRepository) *AuditServiceImpl {
	return &AuditServiceImpl{auditRepo: auditRepo}
}

// ListEntries retrieves audit entries, newest first.
func (s *AuditServiceImpl) ListEntries(ctx context.Context, filters primary.AuditFilters) ([]*primary.AuditEntry, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultAuditLimit
	}

	records, err := s.auditRepo.List(ctx, secondary.AuditFilters{
		EntityType: filters.EntityType,
		EntityID:   filters.EntityID,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*primary.AuditEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.AuditEntry{
			ID:         r.ID,
			Actor:      r.Actor,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     r.Action,
			FieldName:  r.FieldName,
			OldValue:   r.OldValue,
			NewValue:   r.NewValue,
			CreatedAt:  r.CreatedAt,
		}
	}
	return entries, nil
}

// Ensure AuditServiceImpl implements the interface
var _ primary.AuditService = (*AuditServiceImpl)(nil)
