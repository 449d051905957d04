package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	cryptoUsecase "github.com/allisson/fieldvault/internal/crypto/usecase"
	"github.com/allisson/fieldvault/internal/database"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
)

// patientUseCase implements PatientUseCase.
type patientUseCase struct {
	txManager       database.TxManager
	patientRepo     PatientRepository
	envelopeUseCase cryptoUsecase.EnvelopeUseCase
	indexer         cryptoService.BlindIndexer
	options         Options
	logger          *slog.Logger
}

// NewPatientUseCase creates a new PatientUseCase.
func NewPatientUseCase(
	txManager database.TxManager,
	patientRepo PatientRepository,
	envelopeUseCase cryptoUsecase.EnvelopeUseCase,
	indexer cryptoService.BlindIndexer,
	options Options,
	logger *slog.Logger,
) PatientUseCase {
	if options.RotationConcurrency < 1 {
		options.RotationConcurrency = 1
	}
	return &patientUseCase{
		txManager:       txManager,
		patientRepo:     patientRepo,
		envelopeUseCase: envelopeUseCase,
		indexer:         indexer,
		options:         options,
		logger:          logger,
	}
}

// Create stores a new patient. With encryption enabled only envelopes and the
// blind index are persisted; otherwise the legacy plaintext columns are used.
func (p *patientUseCase) Create(
	ctx context.Context,
	input CreatePatientInput,
) (*patientDomain.Patient, error) {
	data, err := patientDomain.MarshalData(input.PatientData)
	if err != nil {
		return nil, err
	}

	nameIndex, err := p.indexer.ComputeForField(patientDomain.NameIndexField, input.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patient := &patientDomain.Patient{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Name,
		PatientData: input.PatientData,
		NameIndex:   nameIndex,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if patient.PatientData == nil {
		patient.PatientData = map[string]any{}
	}

	if p.options.EncryptionEnabled {
		keyID := p.envelopeUseCase.CurrentKeyID()
		if err := p.seal(ctx, patient, patientDomain.FieldName, []byte(input.Name), keyID); err != nil {
			return nil, err
		}
		if err := p.seal(ctx, patient, patientDomain.FieldPatientData, data, keyID); err != nil {
			return nil, err
		}
	} else {
		name := input.Name
		patient.LegacyName = &name
		patient.LegacyPatientData = data
	}

	if err := p.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

// seal encrypts plaintext into the field's envelope under the context for keyID.
func (p *patientUseCase) seal(
	ctx context.Context,
	patient *patientDomain.Patient,
	field string,
	plaintext []byte,
	keyID string,
) error {
	aad := patientDomain.Context(field, keyID, cryptoDomain.CurrentKeyVersion)
	envelope, err := p.envelopeUseCase.EncryptField(ctx, plaintext, aad)
	if err != nil {
		return fmt.Errorf("failed to encrypt patient %s: %w", field, err)
	}
	if envelope.KeyID != keyID {
		return fmt.Errorf("failed to encrypt patient %s: key id changed from %q to %q",
			field, keyID, envelope.KeyID)
	}
	patient.SetEnvelope(field, envelope)
	return nil
}

// Get retrieves and decrypts a patient.
func (p *patientUseCase) Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error) {
	patient, err := p.patientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.open(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// List retrieves and decrypts a page of patients.
func (p *patientUseCase) List(ctx context.Context, offset, limit int) ([]*patientDomain.Patient, error) {
	patients, err := p.patientRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return p.openAll(ctx, patients)
}

// FindByName looks patients up by the blind index of name.
func (p *patientUseCase) FindByName(ctx context.Context, name string) ([]*patientDomain.Patient, error) {
	index, err := p.indexer.ComputeForField(patientDomain.NameIndexField, name)
	if err != nil {
		return nil, err
	}

	patients, err := p.patientRepo.FindByNameIndex(ctx, index)
	if err != nil {
		return nil, err
	}
	return p.openAll(ctx, patients)
}

func (p *patientUseCase) openAll(
	ctx context.Context,
	patients []*patientDomain.Patient,
) ([]*patientDomain.Patient, error) {
	for _, patient := range patients {
		if err := p.open(ctx, patient); err != nil {
			return nil, err
		}
	}
	return patients, nil
}

// open fills Name and PatientData from the stored columns.
func (p *patientUseCase) open(ctx context.Context, patient *patientDomain.Patient) error {
	var legacyName []byte
	if patient.LegacyName != nil {
		legacyName = []byte(*patient.LegacyName)
	}

	name, err := p.readField(ctx, patient, patientDomain.FieldName, legacyName)
	if err != nil {
		return err
	}
	patient.Name = string(name)
	cryptoDomain.Zero(name)

	data, err := p.readField(ctx, patient, patientDomain.FieldPatientData, patient.LegacyPatientData)
	if err != nil {
		return err
	}
	patient.PatientData = map[string]any{}
	if data != nil {
		patient.PatientData, err = patientDomain.UnmarshalData(data)
		if err != nil {
			return err
		}
	}

	return nil
}

// readField returns the plaintext of a field. A stored envelope is always
// decrypted, whatever the flags say; its failures are returned as is.
func (p *patientUseCase) readField(
	ctx context.Context,
	patient *patientDomain.Patient,
	field string,
	legacy []byte,
) ([]byte, error) {
	if envelope := patient.Envelope(field); envelope != nil {
		plaintext, err := p.envelopeUseCase.DecryptField(
			ctx,
			envelope,
			patientDomain.EnvelopeContext(field, envelope),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt patient %s: %w", field, err)
		}
		return plaintext, nil
	}

	if legacy == nil {
		return nil, nil
	}
	if p.options.EncryptionEnabled && !p.options.ReadLegacyPlaintext {
		return nil, fmt.Errorf("%w: patient %s %s", patientDomain.ErrLegacyPlaintextDisabled, patient.ID, field)
	}
	return legacy, nil
}

// RotateBatch re-encrypts one batch of patients concurrently. The first failure
// cancels the remaining rotations of the batch.
func (p *patientUseCase) RotateBatch(ctx context.Context, batchSize int) (int, error) {
	if !p.options.EncryptionEnabled {
		return 0, patientDomain.ErrEncryptionDisabled
	}

	keyID := p.envelopeUseCase.CurrentKeyID()
	patients, err := p.patientRepo.ListPendingRotation(ctx, keyID, batchSize)
	if err != nil {
		return 0, err
	}

	var rotated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.options.RotationConcurrency)

	for _, patient := range patients {
		id := patient.ID
		g.Go(func() error {
			if err := p.rotate(gctx, id, keyID); err != nil {
				return fmt.Errorf("failed to rotate patient %s: %w", id, err)
			}
			rotated.Add(1)
			return nil
		})
	}

	err = g.Wait()
	return int(rotated.Load()), err
}

// rotate brings one patient under keyID inside a transaction. Envelopes under
// another key are re-encrypted because the key id is part of their context.
// Legacy plaintext is encrypted and cleared.
func (p *patientUseCase) rotate(ctx context.Context, id uuid.UUID, keyID string) error {
	return p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		patient, err := p.patientRepo.Get(txCtx, id)
		if err != nil {
			return err
		}

		hadLegacy := patient.HasLegacyPlaintext()
		changed := false
		for _, field := range patientDomain.Fields() {
			envelope := patient.Envelope(field)
			if envelope != nil && envelope.KeyID != keyID {
				reencrypted, err := p.envelopeUseCase.Reencrypt(
					txCtx,
					envelope,
					patientDomain.EnvelopeContext(field, envelope),
					patientDomain.Context(field, keyID, cryptoDomain.CurrentKeyVersion),
				)
				if err != nil {
					return fmt.Errorf("failed to re-encrypt patient %s: %w", field, err)
				}
				patient.SetEnvelope(field, reencrypted)
				changed = true
			}

			migrated, err := p.migrateLegacy(txCtx, patient, field, keyID)
			if err != nil {
				return err
			}
			changed = changed || migrated
		}

		if !changed {
			return nil
		}

		patient.UpdatedAt = time.Now().UTC()
		if err := p.patientRepo.Update(txCtx, patient); err != nil {
			return err
		}

		if hadLegacy {
			p.logger.Info("legacy plaintext migrated",
				slog.String("patient_id", patient.ID.String()),
				slog.String("key_id", keyID),
			)
		}
		p.logger.Debug("patient rotated",
			slog.String("patient_id", patient.ID.String()),
			slog.String("key_id", keyID),
		)
		return nil
	})
}

// migrateLegacy moves a legacy plaintext column into an envelope. A column
// shadowed by an existing envelope is only cleared.
func (p *patientUseCase) migrateLegacy(
	ctx context.Context,
	patient *patientDomain.Patient,
	field string,
	keyID string,
) (bool, error) {
	switch field {
	case patientDomain.FieldName:
		if patient.LegacyName == nil {
			return false, nil
		}
		if patient.NameEnvelope == nil {
			if err := p.seal(ctx, patient, field, []byte(*patient.LegacyName), keyID); err != nil {
				return false, err
			}
		}
		if patient.NameIndex == nil {
			index, err := p.indexer.ComputeForField(patientDomain.NameIndexField, *patient.LegacyName)
			if err != nil {
				return false, err
			}
			patient.NameIndex = index
		}
		patient.LegacyName = nil

	case patientDomain.FieldPatientData:
		if patient.LegacyPatientData == nil {
			return false, nil
		}
		if patient.PatientDataEnvelope == nil {
			data, err := patientDomain.UnmarshalData(patient.LegacyPatientData)
			if err != nil {
				return false, err
			}
			plaintext, err := patientDomain.MarshalData(data)
			if err != nil {
				return false, err
			}
			if err := p.seal(ctx, patient, field, plaintext, keyID); err != nil {
				return false, err
			}
		}
		patient.LegacyPatientData = nil
	}

	return true, nil
}
