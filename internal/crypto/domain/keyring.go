package domain

import "context"

// Keyring wraps and unwraps data keys under a master key it never exposes.
//
// Implementations are selected once per process by provider name. Wrap always
// uses the master key reported by CurrentKeyID; Unwrap accepts anything produced
// under the current or a historically held master key.
type Keyring interface {
	// Provider reports which implementation this is.
	Provider() Provider

	// CurrentKeyID identifies the master key used for new wraps.
	CurrentKeyID() string

	// Wrap encrypts a data key under the current master key.
	Wrap(ctx context.Context, dataKey []byte) ([]byte, error)

	// Unwrap recovers a data key. Returns ErrUnwrapFailed when no held master key
	// produced the wrapped blob.
	Unwrap(ctx context.Context, wrapped []byte) ([]byte, error)
}

// KMSKeeper is the subset of *secrets.Keeper used to protect key material with an
// external KMS.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
