package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/audit"
)

// Pagination bounds for audit trail reads.
const (
	auditDefaultPageSize = 50
	auditMaxPageSize     = 200
)

// AuditServiceImpl implements the AuditService interface.
type AuditServiceImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

// NewAuditService creates the read-side service over the audit trail.
func NewAuditService(logger *slog.Logger, auditRepo audit.Repository) AuditService {
	return &AuditServiceImpl{auditRepo: auditRepo, logger: logger}
}

// ListByActor returns one actor's audit records, newest first. The page size
// is clamped so an operator query cannot drag the whole trail over the wire.
func (s *AuditServiceImpl) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = auditDefaultPageSize
	}
	if limit > auditMaxPageSize {
		limit = auditMaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.auditRepo.ListByActor(ctx, actorID, limit, offset)
}
