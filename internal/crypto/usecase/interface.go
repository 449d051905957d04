// Package usecase implements field-level envelope encryption.
//
// Each call to EncryptField generates a fresh 256-bit data key, encrypts the value
// with AES-256-GCM using the caller's context string as associated data, wraps the
// data key with the process keyring and returns the resulting Envelope. The data
// key is zeroed before returning. DecryptField reverses the process and fails with
// ErrAuthenticationFailed when any component or the context differs.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// EnvelopeUseCase defines field encryption operations.
//
// The context string is the binding between a ciphertext and its storage
// location. Callers build it with cryptoDomain.BuildContext so that a ciphertext
// copied to another table, column or key generation fails to decrypt:
//
//	aad := cryptoDomain.BuildContext("patients", "name", uc.CurrentKeyID(), cryptoDomain.CurrentKeyVersion)
//	env, err := uc.EncryptString(ctx, "Alice Smith", aad)
//	...
//	plaintext, err := uc.DecryptField(ctx, env, aad)
//
// Implementations are safe for concurrent use.
type EnvelopeUseCase interface {
	// CurrentKeyID returns the key id new envelopes are wrapped under.
	CurrentKeyID() string

	// EncryptField encrypts value under aad and returns a complete envelope with
	// KeyID set to the keyring's current key id and KeyVersion set to 1.
	//
	// Returns an error only when randomness or the keyring fails; placeholder
	// keyrings surface ErrProviderNotImplemented here.
	EncryptField(ctx context.Context, value []byte, aad string) (*cryptoDomain.Envelope, error)

	// EncryptString encrypts the UTF-8 bytes of value.
	EncryptString(ctx context.Context, value string, aad string) (*cryptoDomain.Envelope, error)

	// DecryptField unwraps the data key and decrypts the envelope.
	//
	// Returns:
	//   - ErrInvalidEnvelope / ErrUnsupportedKeyVersion for malformed envelopes
	//   - ErrUnwrapFailed when no master key unwraps the data key (logged with key id
	//     and key version)
	//   - ErrAuthenticationFailed when the tag does not verify under aad
	DecryptField(ctx context.Context, envelope *cryptoDomain.Envelope, aad string) ([]byte, error)

	// Rewrap unwraps the data key and wraps it again under the current master key.
	// Ciphertext, nonce and tag are carried over untouched, so this only applies to
	// envelopes whose context does not embed the key id.
	Rewrap(ctx context.Context, envelope *cryptoDomain.Envelope) (*cryptoDomain.Envelope, error)

	// Reencrypt decrypts under oldAAD and encrypts the plaintext again under newAAD
	// with a fresh data key and nonce.
	Reencrypt(
		ctx context.Context,
		envelope *cryptoDomain.Envelope,
		oldAAD string,
		newAAD string,
	) (*cryptoDomain.Envelope, error)
}
