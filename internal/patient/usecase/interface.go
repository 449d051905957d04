// Package usecase implements patient storage over envelope encryption, blind
// index lookups, key rotation and audited administrative inspection.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
)

// PatientRepository defines the interface for patient persistence.
type PatientRepository interface {
	Create(ctx context.Context, patient *patientDomain.Patient) error
	Update(ctx context.Context, patient *patientDomain.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error)
	List(ctx context.Context, offset, limit int) ([]*patientDomain.Patient, error)
	FindByNameIndex(ctx context.Context, index []byte) ([]*patientDomain.Patient, error)
	// ListPendingRotation returns patients holding an envelope wrapped under a key
	// other than keyID, or legacy plaintext without an envelope.
	ListPendingRotation(ctx context.Context, keyID string, limit int) ([]*patientDomain.Patient, error)
}

// Options controls how patient fields are written and read.
type Options struct {
	// EncryptionEnabled stores new values as envelopes. When false, values go to
	// the legacy plaintext columns.
	EncryptionEnabled bool
	// ReadLegacyPlaintext allows reading plaintext columns of rows without an
	// envelope while encryption is enabled.
	ReadLegacyPlaintext bool
	// RotationConcurrency bounds parallel patient rotations inside a batch.
	RotationConcurrency int
}

// CreatePatientInput contains the plaintext values of a new patient.
type CreatePatientInput struct {
	Name        string
	PatientData map[string]any
}

// PatientUseCase defines patient operations. Returned patients carry decrypted
// Name and PatientData.
type PatientUseCase interface {
	Create(ctx context.Context, input CreatePatientInput) (*patientDomain.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error)
	List(ctx context.Context, offset, limit int) ([]*patientDomain.Patient, error)
	// FindByName matches the normalized name through the blind index.
	FindByName(ctx context.Context, name string) ([]*patientDomain.Patient, error)
	// RotateBatch re-encrypts up to batchSize patients not yet under the current
	// master key, migrating legacy plaintext on the way. Returns how many were
	// rotated; zero means nothing is pending.
	RotateBatch(ctx context.Context, batchSize int) (int, error)
}

// AdminRequest identifies who performs an administrative access.
type AdminRequest struct {
	Actor     string
	RequestID string
}

// EnvelopeView is the base64 diagnostic view of a patient's stored envelopes.
// Fields without an envelope are absent.
type EnvelopeView struct {
	PatientID uuid.UUID
	Fields    map[string]cryptoDomain.EncodedEnvelope
}

// DecryptResult is the outcome of an administrative decrypt. On failure OK is
// false and Error holds "decrypt failed: <kind>" without further details.
type DecryptResult struct {
	PatientID  uuid.UUID
	Field      string
	KeyID      string
	KeyVersion int
	OK         bool
	Value      any
	Error      string
}

// AdminUseCase defines audited inspection of encrypted patient data. Every call
// is recorded; when the audit record cannot be written nothing is returned.
type AdminUseCase interface {
	ViewEnvelopes(ctx context.Context, req AdminRequest, id uuid.UUID) (*EnvelopeView, error)
	DecryptField(ctx context.Context, req AdminRequest, id uuid.UUID, field string) (*DecryptResult, error)
}
