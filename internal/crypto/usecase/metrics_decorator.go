package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/metrics"
)

// envelopeUseCaseWithMetrics decorates EnvelopeUseCase with metrics instrumentation.
type envelopeUseCaseWithMetrics struct {
	next    EnvelopeUseCase
	metrics metrics.BusinessMetrics
}

// NewEnvelopeUseCaseWithMetrics wraps an EnvelopeUseCase with metrics recording.
func NewEnvelopeUseCaseWithMetrics(useCase EnvelopeUseCase, m metrics.BusinessMetrics) EnvelopeUseCase {
	return &envelopeUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (e *envelopeUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, e.metrics, "crypto", operation, start, err)
}

// CurrentKeyID delegates without recording.
func (e *envelopeUseCaseWithMetrics) CurrentKeyID() string {
	return e.next.CurrentKeyID()
}

// EncryptField records metrics for field encryption.
func (e *envelopeUseCaseWithMetrics) EncryptField(
	ctx context.Context,
	value []byte,
	aad string,
) (*cryptoDomain.Envelope, error) {
	start := time.Now()
	envelope, err := e.next.EncryptField(ctx, value, aad)
	e.record(ctx, "field_encrypt", start, err)
	return envelope, err
}

// EncryptString records metrics for field encryption.
func (e *envelopeUseCaseWithMetrics) EncryptString(
	ctx context.Context,
	value string,
	aad string,
) (*cryptoDomain.Envelope, error) {
	start := time.Now()
	envelope, err := e.next.EncryptString(ctx, value, aad)
	e.record(ctx, "field_encrypt", start, err)
	return envelope, err
}

// DecryptField records metrics for field decryption.
func (e *envelopeUseCaseWithMetrics) DecryptField(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
	aad string,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := e.next.DecryptField(ctx, envelope, aad)
	e.record(ctx, "field_decrypt", start, err)
	return plaintext, err
}

// Rewrap records metrics for data key rewrapping.
func (e *envelopeUseCaseWithMetrics) Rewrap(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
) (*cryptoDomain.Envelope, error) {
	start := time.Now()
	rewrapped, err := e.next.Rewrap(ctx, envelope)
	e.record(ctx, "envelope_rewrap", start, err)
	return rewrapped, err
}

// Reencrypt records metrics for envelope re-encryption.
func (e *envelopeUseCaseWithMetrics) Reencrypt(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
	oldAAD string,
	newAAD string,
) (*cryptoDomain.Envelope, error) {
	start := time.Now()
	reencrypted, err := e.next.Reencrypt(ctx, envelope, oldAAD, newAAD)
	e.record(ctx, "envelope_reencrypt", start, err)
	return reencrypted, err
}
