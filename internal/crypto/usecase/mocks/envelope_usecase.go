// Package mocks provides mock implementations of crypto use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// MockEnvelopeUseCase is a mock implementation of EnvelopeUseCase.
type MockEnvelopeUseCase struct {
	mock.Mock
}

// CurrentKeyID mocks the CurrentKeyID method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) CurrentKeyID() string {
	args := m.Called()
	return args.String(0)
}

// EncryptField mocks the EncryptField method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) EncryptField(
	ctx context.Context,
	value []byte,
	aad string,
) (*cryptoDomain.Envelope, error) {
	args := m.Called(ctx, value, aad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Envelope), args.Error(1)
}

// EncryptString mocks the EncryptString method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) EncryptString(
	ctx context.Context,
	value string,
	aad string,
) (*cryptoDomain.Envelope, error) {
	args := m.Called(ctx, value, aad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Envelope), args.Error(1)
}

// DecryptField mocks the DecryptField method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) DecryptField(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
	aad string,
) ([]byte, error) {
	args := m.Called(ctx, envelope, aad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Rewrap mocks the Rewrap method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) Rewrap(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
) (*cryptoDomain.Envelope, error) {
	args := m.Called(ctx, envelope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Envelope), args.Error(1)
}

// Reencrypt mocks the Reencrypt method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) Reencrypt(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
	oldAAD string,
	newAAD string,
) (*cryptoDomain.Envelope, error) {
	args := m.Called(ctx, envelope, oldAAD, newAAD)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Envelope), args.Error(1)
}
