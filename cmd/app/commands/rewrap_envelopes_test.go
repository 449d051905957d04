package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
	patientMocks "github.com/allisson/fieldvault/internal/patient/usecase/mocks"
)

func TestRunRewrapEnvelopes(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		useCase := &patientMocks.MockPatientUseCase{}
		useCase.On("RotateBatch", ctx, 100).Return(100, nil).Once()
		useCase.On("RotateBatch", ctx, 100).Return(7, nil).Once()
		useCase.On("RotateBatch", ctx, 100).Return(0, nil).Once()

		err := RunRewrapEnvelopes(ctx, useCase, logger, "dev-2026", 100)
		require.NoError(t, err)

		useCase.AssertExpectations(t)
	})

	t.Run("nothing-pending", func(t *testing.T) {
		useCase := &patientMocks.MockPatientUseCase{}
		useCase.On("RotateBatch", ctx, 10).Return(0, nil).Once()

		require.NoError(t, RunRewrapEnvelopes(ctx, useCase, logger, "dev-2026", 10))
		useCase.AssertExpectations(t)
	})

	t.Run("invalid-batch-size", func(t *testing.T) {
		err := RunRewrapEnvelopes(ctx, nil, logger, "dev-2026", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})

	t.Run("batch-error", func(t *testing.T) {
		useCase := &patientMocks.MockPatientUseCase{}
		useCase.On("RotateBatch", ctx, 10).Return(10, nil).Once()
		useCase.On("RotateBatch", ctx, 10).Return(0, patientDomain.ErrEncryptionDisabled).Once()

		err := RunRewrapEnvelopes(ctx, useCase, logger, "dev-2026", 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, patientDomain.ErrEncryptionDisabled)
		assert.Contains(t, err.Error(), "after 10 patients")
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		useCase := &patientMocks.MockPatientUseCase{}

		err := RunRewrapEnvelopes(cancelled, useCase, logger, "dev-2026", 10)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		useCase.AssertNotCalled(t, "RotateBatch", mock.Anything, mock.Anything)
	})
}
