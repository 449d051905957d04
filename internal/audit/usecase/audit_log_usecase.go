package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	logger       *slog.Logger
}

// NewAuditLogUseCase creates a new AuditLogUseCase.
func NewAuditLogUseCase(auditLogRepo AuditLogRepository, logger *slog.Logger) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		logger:       logger,
	}
}

// Record validates the action, emits an "audit" log line and persists the entry.
func (a *auditLogUseCase) Record(ctx context.Context, input RecordInput) (*auditDomain.AuditLog, error) {
	if err := input.Action.Validate(); err != nil {
		return nil, err
	}

	auditLog := &auditDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: input.RequestID,
		Actor:     input.Actor,
		Action:    input.Action,
		Entity:    input.Entity,
		EntityID:  input.EntityID,
		Success:   input.Success,
		Metadata:  input.Metadata,
		CreatedAt: time.Now().UTC(),
	}

	a.logger.Info("audit",
		slog.String("audit_id", auditLog.ID.String()),
		slog.String("request_id", auditLog.RequestID),
		slog.String("actor", auditLog.Actor),
		slog.String("action", string(auditLog.Action)),
		slog.String("entity", auditLog.Entity),
		slog.String("entity_id", auditLog.EntityID),
		slog.Bool("ok", auditLog.Success),
		slog.Any("metadata", auditLog.Metadata),
	)

	if err := a.auditLogRepo.Create(ctx, auditLog); err != nil {
		return nil, apperrors.Wrap(err, "failed to create audit log")
	}

	return auditLog, nil
}

// List returns audit logs newest first.
func (a *auditLogUseCase) List(ctx context.Context, offset, limit int) ([]*auditDomain.AuditLog, error) {
	auditLogs, err := a.auditLogRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return auditLogs, nil
}
