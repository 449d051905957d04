package usecase_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	auditUsecase "github.com/allisson/fieldvault/internal/audit/usecase"
	auditMocks "github.com/allisson/fieldvault/internal/audit/usecase/mocks"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
	patientUsecase "github.com/allisson/fieldvault/internal/patient/usecase"
)

type adminFixture struct {
	*fixture
	audit   *auditMocks.MockAuditLogUseCase
	admin   patientUsecase.AdminUseCase
	request patientUsecase.AdminRequest
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := newFixture(t, newKeyring(t, "dev-master", map[string][]byte{"dev-master": randomBytes(t, 32)}),
		randomBytes(t, 32), encryptedOptions())
	audit := &auditMocks.MockAuditLogUseCase{}
	return &adminFixture{
		fixture: f,
		audit:   audit,
		admin:   patientUsecase.NewAdminUseCase(f.repo, f.envelope, audit, discardLogger()),
		request: patientUsecase.AdminRequest{Actor: "admin", RequestID: "req-1"},
	}
}

// expectAudit captures the next Record call.
func (a *adminFixture) expectAudit(ctx context.Context, err error) *auditUsecase.RecordInput {
	var captured auditUsecase.RecordInput
	call := a.audit.On("Record", ctx, mock.AnythingOfType("usecase.RecordInput")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(auditUsecase.RecordInput)
		})
	if err != nil {
		call.Return(nil, err).Once()
	} else {
		call.Return(&auditDomain.AuditLog{}, nil).Once()
	}
	return &captured
}

func TestAdminUseCase_ViewEnvelopes(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		a := newAdminFixture(t)
		row := a.create(t, aliceInput())
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		record := a.expectAudit(ctx, nil)

		view, err := a.admin.ViewEnvelopes(ctx, a.request, row.ID)

		require.NoError(t, err)
		assert.Equal(t, row.ID, view.PatientID)
		require.Contains(t, view.Fields, patientDomain.FieldName)
		require.Contains(t, view.Fields, patientDomain.FieldPatientData)

		decoded, err := view.Fields[patientDomain.FieldName].Decode()
		require.NoError(t, err)
		assert.Equal(t, row.NameEnvelope, decoded)

		assert.Equal(t, auditDomain.ActionEncryptionView, record.Action)
		assert.Equal(t, "admin", record.Actor)
		assert.Equal(t, "req-1", record.RequestID)
		assert.Equal(t, "patients", record.Entity)
		assert.Equal(t, row.ID.String(), record.EntityID)
		assert.True(t, record.Success)
	})

	t.Run("Success_LegacyRowHasNoEnvelopes", func(t *testing.T) {
		a := newAdminFixture(t)
		name := "Bob Jones"
		row := &patientDomain.Patient{ID: uuid.Must(uuid.NewV7()), LegacyName: &name}
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		a.expectAudit(ctx, nil)

		view, err := a.admin.ViewEnvelopes(ctx, a.request, row.ID)

		require.NoError(t, err)
		assert.Empty(t, view.Fields)
	})

	t.Run("Error_AuditFailureWithholdsView", func(t *testing.T) {
		a := newAdminFixture(t)
		row := a.create(t, aliceInput())
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		a.expectAudit(ctx, assert.AnError)

		view, err := a.admin.ViewEnvelopes(ctx, a.request, row.ID)

		assert.Nil(t, view)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("Error_NotFoundIsAudited", func(t *testing.T) {
		a := newAdminFixture(t)
		id := uuid.Must(uuid.NewV7())
		a.repo.On("Get", ctx, id).Return(nil, patientDomain.ErrPatientNotFound).Once()
		record := a.expectAudit(ctx, nil)

		_, err := a.admin.ViewEnvelopes(ctx, a.request, id)

		assert.ErrorIs(t, err, patientDomain.ErrPatientNotFound)
		assert.False(t, record.Success)
		a.audit.AssertExpectations(t)
	})
}

func TestAdminUseCase_DecryptField(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PatientData", func(t *testing.T) {
		a := newAdminFixture(t)
		row := a.create(t, aliceInput())
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		record := a.expectAudit(ctx, nil)

		result, err := a.admin.DecryptField(ctx, a.request, row.ID, patientDomain.FieldPatientData)

		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Empty(t, result.Error)
		assert.Equal(t, map[string]any{"age": float64(42), "risk": "high"}, result.Value)
		assert.Equal(t, "dev-master", result.KeyID)
		assert.Equal(t, 1, result.KeyVersion)

		assert.Equal(t, auditDomain.ActionEncryptionDecrypt, record.Action)
		assert.True(t, record.Success)
		assert.Equal(t, "patient_data", record.Metadata["field"])
		assert.Equal(t, "dev-master", record.Metadata["kid"])
	})

	t.Run("Success_Name", func(t *testing.T) {
		a := newAdminFixture(t)
		row := a.create(t, aliceInput())
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		a.expectAudit(ctx, nil)

		result, err := a.admin.DecryptField(ctx, a.request, row.ID, patientDomain.FieldName)

		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", result.Value)
	})

	t.Run("Failure_TamperedTagIsGeneric", func(t *testing.T) {
		a := newAdminFixture(t)
		row := a.create(t, aliceInput())
		row.PatientDataEnvelope.Tag[0] ^= 0xff
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		record := a.expectAudit(ctx, nil)

		result, err := a.admin.DecryptField(ctx, a.request, row.ID, patientDomain.FieldPatientData)

		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.Nil(t, result.Value)
		assert.Equal(t, "decrypt failed: authentication_failed", result.Error)
		assert.False(t, record.Success)
		assert.Equal(t, "authentication_failed", record.Metadata["error"])
	})

	t.Run("Failure_CauseIsLogged", func(t *testing.T) {
		a := newAdminFixture(t)
		var logs bytes.Buffer
		admin := patientUsecase.NewAdminUseCase(a.repo, a.envelope, a.audit, slog.New(slog.NewJSONHandler(&logs, nil)))
		row := a.create(t, aliceInput())
		row.PatientDataEnvelope.Tag[0] ^= 0xff
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		record := a.expectAudit(ctx, nil)

		result, err := admin.DecryptField(ctx, a.request, row.ID, patientDomain.FieldPatientData)

		require.NoError(t, err)
		assert.Equal(t, "decrypt failed: authentication_failed", result.Error)
		assert.Contains(t, logs.String(), `"msg":"admin decrypt failed"`)
		assert.Contains(t, logs.String(), `"level":"WARN"`)
		assert.Contains(t, logs.String(), "authentication failed")
		assert.NotContains(t, record.Metadata["error"], "authentication failed")
	})

	t.Run("Failure_UnwrapIsGeneric", func(t *testing.T) {
		a := newAdminFixture(t)
		row := a.create(t, aliceInput())
		row.NameEnvelope.WrappedDataKey = randomBytes(t, len(row.NameEnvelope.WrappedDataKey))
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		a.expectAudit(ctx, nil)

		result, err := a.admin.DecryptField(ctx, a.request, row.ID, patientDomain.FieldName)

		require.NoError(t, err)
		assert.Equal(t, "decrypt failed: unwrap_failed", result.Error)
	})

	t.Run("Failure_NoEnvelope", func(t *testing.T) {
		a := newAdminFixture(t)
		row := &patientDomain.Patient{ID: uuid.Must(uuid.NewV7())}
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		record := a.expectAudit(ctx, nil)

		result, err := a.admin.DecryptField(ctx, a.request, row.ID, patientDomain.FieldName)

		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.Equal(t, "decrypt failed: no_envelope", result.Error)
		assert.False(t, record.Success)
	})

	t.Run("Error_AuditFailureWithholdsPlaintext", func(t *testing.T) {
		a := newAdminFixture(t)
		row := a.create(t, aliceInput())
		a.repo.On("Get", ctx, row.ID).Return(row, nil).Once()
		a.expectAudit(ctx, assert.AnError)

		result, err := a.admin.DecryptField(ctx, a.request, row.ID, patientDomain.FieldName)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("Error_InvalidField", func(t *testing.T) {
		a := newAdminFixture(t)

		_, err := a.admin.DecryptField(ctx, a.request, uuid.Must(uuid.NewV7()), "ssn")

		assert.ErrorIs(t, err, patientDomain.ErrInvalidField)
		a.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		a.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		a := newAdminFixture(t)
		id := uuid.Must(uuid.NewV7())
		a.repo.On("Get", ctx, id).Return(nil, patientDomain.ErrPatientNotFound).Once()
		a.expectAudit(ctx, assert.AnError)

		_, err := a.admin.DecryptField(ctx, a.request, id, patientDomain.FieldName)

		assert.ErrorIs(t, err, patientDomain.ErrPatientNotFound)
	})
}

