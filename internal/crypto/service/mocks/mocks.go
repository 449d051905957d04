// Package mocks provides mock implementations of crypto interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// MockKeyring is a mock implementation of cryptoDomain.Keyring.
type MockKeyring struct {
	mock.Mock
}

// Provider mocks the Provider method of Keyring.
func (m *MockKeyring) Provider() cryptoDomain.Provider {
	args := m.Called()
	return args.Get(0).(cryptoDomain.Provider)
}

// CurrentKeyID mocks the CurrentKeyID method of Keyring.
func (m *MockKeyring) CurrentKeyID() string {
	args := m.Called()
	return args.String(0)
}

// Wrap mocks the Wrap method of Keyring.
func (m *MockKeyring) Wrap(ctx context.Context, dataKey []byte) ([]byte, error) {
	args := m.Called(ctx, dataKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Unwrap mocks the Unwrap method of Keyring.
func (m *MockKeyring) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	args := m.Called(ctx, wrapped)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockBlindIndexer is a mock implementation of BlindIndexer.
type MockBlindIndexer struct {
	mock.Mock
}

// Compute mocks the Compute method of BlindIndexer.
func (m *MockBlindIndexer) Compute(value string, normalize bool) []byte {
	args := m.Called(value, normalize)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

// ComputeForField mocks the ComputeForField method of BlindIndexer.
func (m *MockBlindIndexer) ComputeForField(field, value string) ([]byte, error) {
	args := m.Called(field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
