// Package domain defines the audit trail for privileged access to encrypted data.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/errors"
)

// Action identifies a privileged operation on encrypted data.
type Action string

const (
	// ActionEncryptionView is recorded when envelope components are exposed in base64.
	ActionEncryptionView Action = "encryption_view"

	// ActionEncryptionDecrypt is recorded when an administrator decrypts a field.
	ActionEncryptionDecrypt Action = "encryption_decrypt"
)

// AuditLog records who inspected or decrypted what, and whether it succeeded.
// Metadata never carries plaintext or key material.
type AuditLog struct {
	ID        uuid.UUID
	RequestID string
	Actor     string
	Action    Action
	Entity    string
	EntityID  string
	Success   bool
	Metadata  map[string]any
	CreatedAt time.Time
}

// ErrInvalidAction indicates an action outside the known set.
var ErrInvalidAction = errors.Wrap(errors.ErrInvalidInput, "invalid audit action")

// Validate checks the action.
func (a Action) Validate() error {
	switch a {
	case ActionEncryptionView, ActionEncryptionDecrypt:
		return nil
	default:
		return ErrInvalidAction
	}
}
