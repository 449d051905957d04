package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
)

// AEADFactory builds an AEAD from a data key.
type AEADFactory func(key []byte) (cryptoService.AEAD, error)

type envelopeUseCase struct {
	keyring cryptoDomain.Keyring
	newAEAD AEADFactory
	logger  *slog.Logger
}

// NewEnvelopeUseCase creates an EnvelopeUseCase over keyring using AES-256-GCM.
func NewEnvelopeUseCase(keyring cryptoDomain.Keyring, logger *slog.Logger) EnvelopeUseCase {
	return NewEnvelopeUseCaseWithAEAD(keyring, logger, func(key []byte) (cryptoService.AEAD, error) {
		c, err := cryptoService.NewAESGCM(key)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// NewEnvelopeUseCaseWithAEAD creates an EnvelopeUseCase with a custom AEAD factory.
func NewEnvelopeUseCaseWithAEAD(
	keyring cryptoDomain.Keyring,
	logger *slog.Logger,
	newAEAD AEADFactory,
) EnvelopeUseCase {
	return &envelopeUseCase{
		keyring: keyring,
		newAEAD: newAEAD,
		logger:  logger,
	}
}

func (e *envelopeUseCase) CurrentKeyID() string {
	return e.keyring.CurrentKeyID()
}

func (e *envelopeUseCase) EncryptField(
	ctx context.Context,
	value []byte,
	aad string,
) (*cryptoDomain.Envelope, error) {
	dataKey := make([]byte, cryptoDomain.DataKeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}
	defer cryptoDomain.Zero(dataKey)

	return e.seal(ctx, dataKey, value, aad)
}

func (e *envelopeUseCase) EncryptString(
	ctx context.Context,
	value string,
	aad string,
) (*cryptoDomain.Envelope, error) {
	return e.EncryptField(ctx, []byte(value), aad)
}

// seal encrypts value under dataKey and wraps dataKey with the current master key.
func (e *envelopeUseCase) seal(
	ctx context.Context,
	dataKey []byte,
	value []byte,
	aad string,
) (*cryptoDomain.Envelope, error) {
	cipher, err := e.newAEAD(dataKey)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, tag, err := cipher.Encrypt(value, []byte(aad))
	if err != nil {
		return nil, err
	}

	keyID := e.keyring.CurrentKeyID()
	wrapped, err := e.keyring.Wrap(ctx, dataKey)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.Envelope{
		Ciphertext:     ciphertext,
		Nonce:          nonce,
		Tag:            tag,
		WrappedDataKey: wrapped,
		KeyID:          keyID,
		KeyVersion:     cryptoDomain.CurrentKeyVersion,
	}, nil
}

func (e *envelopeUseCase) DecryptField(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
	aad string,
) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	dataKey, err := e.unwrap(ctx, envelope)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dataKey)

	cipher, err := e.newAEAD(dataKey)
	if err != nil {
		return nil, err
	}
	return cipher.Decrypt(envelope.Ciphertext, envelope.Nonce, envelope.Tag, []byte(aad))
}

// unwrap recovers the data key and logs failures with the envelope's key metadata.
func (e *envelopeUseCase) unwrap(ctx context.Context, envelope *cryptoDomain.Envelope) ([]byte, error) {
	dataKey, err := e.keyring.Unwrap(ctx, envelope.WrappedDataKey)
	if err != nil {
		e.logger.Error("data key unwrap failed",
			slog.String("key_id", envelope.KeyID),
			slog.Int("key_version", envelope.KeyVersion),
			slog.String("provider", string(e.keyring.Provider())),
			slog.Any("error", err),
		)
		return nil, err
	}
	if len(dataKey) != cryptoDomain.DataKeySize {
		cryptoDomain.Zero(dataKey)
		return nil, cryptoDomain.ErrUnwrapFailed
	}
	return dataKey, nil
}

func (e *envelopeUseCase) Rewrap(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
) (*cryptoDomain.Envelope, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	dataKey, err := e.unwrap(ctx, envelope)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(dataKey)

	keyID := e.keyring.CurrentKeyID()
	wrapped, err := e.keyring.Wrap(ctx, dataKey)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.Envelope{
		Ciphertext:     envelope.Ciphertext,
		Nonce:          envelope.Nonce,
		Tag:            envelope.Tag,
		WrappedDataKey: wrapped,
		KeyID:          keyID,
		KeyVersion:     cryptoDomain.CurrentKeyVersion,
	}, nil
}

func (e *envelopeUseCase) Reencrypt(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
	oldAAD string,
	newAAD string,
) (*cryptoDomain.Envelope, error) {
	plaintext, err := e.DecryptField(ctx, envelope, oldAAD)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plaintext)

	return e.EncryptField(ctx, plaintext, newAAD)
}
