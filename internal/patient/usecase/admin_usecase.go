package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	auditUsecase "github.com/allisson/fieldvault/internal/audit/usecase"
	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoUsecase "github.com/allisson/fieldvault/internal/crypto/usecase"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
)

const decryptFailedPrefix = "decrypt failed: "

// adminUseCase implements AdminUseCase.
type adminUseCase struct {
	patientRepo     PatientRepository
	envelopeUseCase cryptoUsecase.EnvelopeUseCase
	auditLogUseCase auditUsecase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAdminUseCase creates a new AdminUseCase.
func NewAdminUseCase(
	patientRepo PatientRepository,
	envelopeUseCase cryptoUsecase.EnvelopeUseCase,
	auditLogUseCase auditUsecase.AuditLogUseCase,
	logger *slog.Logger,
) AdminUseCase {
	return &adminUseCase{
		patientRepo:     patientRepo,
		envelopeUseCase: envelopeUseCase,
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ViewEnvelopes returns the stored envelopes in base64. Nothing is unwrapped.
func (a *adminUseCase) ViewEnvelopes(
	ctx context.Context,
	req AdminRequest,
	id uuid.UUID,
) (*EnvelopeView, error) {
	patient, err := a.patientRepo.Get(ctx, id)
	if err != nil {
		a.recordFailure(ctx, req, auditDomain.ActionEncryptionView, id, map[string]any{"error": "lookup failed"})
		return nil, err
	}

	view := &EnvelopeView{
		PatientID: id,
		Fields:    make(map[string]cryptoDomain.EncodedEnvelope),
	}
	keyIDs := make(map[string]any)
	for _, field := range patientDomain.Fields() {
		if envelope := patient.Envelope(field); envelope != nil {
			view.Fields[field] = envelope.Encode()
			keyIDs[field] = envelope.KeyID
		}
	}

	_, err = a.auditLogUseCase.Record(ctx, auditUsecase.RecordInput{
		RequestID: req.RequestID,
		Actor:     req.Actor,
		Action:    auditDomain.ActionEncryptionView,
		Entity:    patientDomain.Entity,
		EntityID:  id.String(),
		Success:   true,
		Metadata:  map[string]any{"kid": keyIDs},
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// DecryptField decrypts one field for an administrator. Decryption failures are
// reported in the result as "decrypt failed: <kind>" and audited with ok=false.
// If the audit record fails, the plaintext is withheld and the error returned.
func (a *adminUseCase) DecryptField(
	ctx context.Context,
	req AdminRequest,
	id uuid.UUID,
	field string,
) (*DecryptResult, error) {
	if !patientDomain.ValidField(field) {
		return nil, patientDomain.ErrInvalidField
	}

	patient, err := a.patientRepo.Get(ctx, id)
	if err != nil {
		a.recordFailure(ctx, req, auditDomain.ActionEncryptionDecrypt, id, map[string]any{
			"field": field,
			"error": "lookup failed",
		})
		return nil, err
	}

	result := &DecryptResult{PatientID: id, Field: field}
	metadata := map[string]any{"field": field}

	envelope := patient.Envelope(field)
	if envelope == nil {
		result.Error = decryptFailedPrefix + "no_envelope"
		metadata["error"] = "no_envelope"
	} else {
		result.KeyID = envelope.KeyID
		result.KeyVersion = envelope.KeyVersion
		metadata["kid"] = envelope.KeyID
		metadata["kver"] = envelope.KeyVersion

		value, kind, decryptErr := a.decrypt(ctx, field, envelope)
		if decryptErr == nil {
			result.OK = true
			result.Value = value
		} else {
			result.Error = decryptFailedPrefix + kind
			metadata["error"] = kind
			a.logger.Warn("admin decrypt failed",
				slog.String("patient_id", id.String()),
				slog.String("field", field),
				slog.String("key_id", envelope.KeyID),
				slog.String("kind", kind),
				slog.Any("error", decryptErr),
			)
		}
	}

	_, err = a.auditLogUseCase.Record(ctx, auditUsecase.RecordInput{
		RequestID: req.RequestID,
		Actor:     req.Actor,
		Action:    auditDomain.ActionEncryptionDecrypt,
		Entity:    patientDomain.Entity,
		EntityID:  id.String(),
		Success:   result.OK,
		Metadata:  metadata,
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// decrypt returns the decoded field value, or a failure kind and its cause.
func (a *adminUseCase) decrypt(
	ctx context.Context,
	field string,
	envelope *cryptoDomain.Envelope,
) (any, string, error) {
	plaintext, err := a.envelopeUseCase.DecryptField(ctx, envelope, patientDomain.EnvelopeContext(field, envelope))
	if err != nil {
		return nil, cryptoDomain.FailureKind(err), err
	}
	defer cryptoDomain.Zero(plaintext)

	if field == patientDomain.FieldName {
		return string(plaintext), "", nil
	}
	data, err := patientDomain.UnmarshalData(plaintext)
	if err != nil {
		return nil, "invalid_payload", err
	}
	return data, "", nil
}

// recordFailure audits an access that failed before any data was read. The
// caller already returns an error, so a failed record is only logged.
func (a *adminUseCase) recordFailure(
	ctx context.Context,
	req AdminRequest,
	action auditDomain.Action,
	id uuid.UUID,
	metadata map[string]any,
) {
	_, err := a.auditLogUseCase.Record(ctx, auditUsecase.RecordInput{
		RequestID: req.RequestID,
		Actor:     req.Actor,
		Action:    action,
		Entity:    patientDomain.Entity,
		EntityID:  id.String(),
		Success:   false,
		Metadata:  metadata,
	})
	if err != nil {
		a.logger.Error("failed to record audit log", slog.Any("error", err))
	}
}
