// Package mocks provides testify mocks for the patient use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
	patientUsecase "github.com/allisson/fieldvault/internal/patient/usecase"
)

// MockPatientRepository is a mock implementation of usecase.PatientRepository.
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *patientDomain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) Update(ctx context.Context, patient *patientDomain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientDomain.Patient), args.Error(1)
}

func (m *MockPatientRepository) List(ctx context.Context, offset, limit int) ([]*patientDomain.Patient, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientDomain.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindByNameIndex(
	ctx context.Context,
	index []byte,
) ([]*patientDomain.Patient, error) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientDomain.Patient), args.Error(1)
}

func (m *MockPatientRepository) ListPendingRotation(
	ctx context.Context,
	keyID string,
	limit int,
) ([]*patientDomain.Patient, error) {
	args := m.Called(ctx, keyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientDomain.Patient), args.Error(1)
}

// MockPatientUseCase is a mock implementation of usecase.PatientUseCase.
type MockPatientUseCase struct {
	mock.Mock
}

func (m *MockPatientUseCase) Create(
	ctx context.Context,
	input patientUsecase.CreatePatientInput,
) (*patientDomain.Patient, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientDomain.Patient), args.Error(1)
}

func (m *MockPatientUseCase) Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientDomain.Patient), args.Error(1)
}

func (m *MockPatientUseCase) List(ctx context.Context, offset, limit int) ([]*patientDomain.Patient, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientDomain.Patient), args.Error(1)
}

func (m *MockPatientUseCase) FindByName(ctx context.Context, name string) ([]*patientDomain.Patient, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientDomain.Patient), args.Error(1)
}

func (m *MockPatientUseCase) RotateBatch(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

// MockAdminUseCase is a mock implementation of usecase.AdminUseCase.
type MockAdminUseCase struct {
	mock.Mock
}

func (m *MockAdminUseCase) ViewEnvelopes(
	ctx context.Context,
	req patientUsecase.AdminRequest,
	id uuid.UUID,
) (*patientUsecase.EnvelopeView, error) {
	args := m.Called(ctx, req, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientUsecase.EnvelopeView), args.Error(1)
}

func (m *MockAdminUseCase) DecryptField(
	ctx context.Context,
	req patientUsecase.AdminRequest,
	id uuid.UUID,
	field string,
) (*patientUsecase.DecryptResult, error) {
	args := m.Called(ctx, req, id, field)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientUsecase.DecryptResult), args.Error(1)
}
