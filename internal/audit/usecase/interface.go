// Package usecase records and lists audit logs for privileged data access.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
)

// AuditLogRepository defines the interface for audit log persistence.
type AuditLogRepository interface {
	// Create stores a new audit log. Participates in a transaction carried by ctx.
	Create(ctx context.Context, auditLog *auditDomain.AuditLog) error

	// List returns audit logs newest first.
	List(ctx context.Context, offset, limit int) ([]*auditDomain.AuditLog, error)
}

// RecordInput describes one privileged access.
type RecordInput struct {
	RequestID string
	Actor     string
	Action    auditDomain.Action
	Entity    string
	EntityID  string
	Success   bool
	Metadata  map[string]any
}

// AuditLogUseCase defines audit trail operations.
type AuditLogUseCase interface {
	// Record writes the access to the structured log and to the audit_logs table.
	// Callers must not reveal decrypted data when Record fails.
	Record(ctx context.Context, input RecordInput) (*auditDomain.AuditLog, error)

	// List returns audit logs newest first.
	List(ctx context.Context, offset, limit int) ([]*auditDomain.AuditLog, error)
}
