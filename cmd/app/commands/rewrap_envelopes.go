package commands

import (
	"context"
	"fmt"
	"log/slog"

	patientUsecase "github.com/allisson/fieldvault/internal/patient/usecase"
)

// RunRewrapEnvelopes re-encrypts every patient envelope whose key id differs from
// the active one, and migrates legacy plaintext columns into envelopes, in batches
// until nothing is pending. Each patient is updated in its own transaction, so an
// interrupted run can simply be restarted.
func RunRewrapEnvelopes(
	ctx context.Context,
	patientUseCase patientUsecase.PatientUseCase,
	logger *slog.Logger,
	currentKeyID string,
	batchSize int,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	logger.Info("starting envelope rewrap",
		slog.String("target_key_id", currentKeyID),
		slog.Int("batch_size", batchSize),
	)

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("rewrap interrupted after %d patients: %w", total, err)
		}

		rotated, err := patientUseCase.RotateBatch(ctx, batchSize)
		if err != nil {
			return fmt.Errorf("failed to rewrap batch after %d patients: %w", total, err)
		}
		if rotated == 0 {
			break
		}

		total += rotated
		logger.Info("rewrapped batch of patients",
			slog.Int("rewrapped_in_batch", rotated),
			slog.Int("total_rewrapped", total),
		)
	}

	logger.Info("envelope rewrap completed",
		slog.Int("total_rewrapped", total),
		slog.String("target_key_id", currentKeyID),
	)
	return nil
}
