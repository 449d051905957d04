// Package service provides the cryptographic primitives behind field encryption:
// the AES-256-GCM cipher, RFC 3394 key wrapping, keyring implementations with
// their factory, KMS keeper access and the blind index.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// AEAD defines authenticated encryption with associated data. The tag is returned
// separately from the ciphertext.
type AEAD interface {
	// Encrypt encrypts plaintext bound to aad and returns ciphertext, a fresh nonce
	// and the authentication tag.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce, tag []byte, err error)

	// Decrypt verifies the tag and returns the plaintext. Fails with
	// ErrAuthenticationFailed on any mismatch, including a different aad.
	Decrypt(ciphertext, nonce, tag, aad []byte) ([]byte, error)
}

// KMSService opens gocloud.dev secrets keepers.
type KMSService interface {
	// OpenKeeper opens a keeper for the given URI (base64key://, hashivault://).
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

// BlindIndexer computes deterministic keyed hashes for equality lookups over
// encrypted columns.
type BlindIndexer interface {
	// Compute returns HMAC-SHA256 of value under the index key, lowercasing and
	// trimming first when normalize is true.
	Compute(value string, normalize bool) []byte

	// ComputeForField returns a normalized index under a sub-key derived for the
	// given "<table>:<field>", so equal values in different columns do not match.
	ComputeForField(field, value string) ([]byte, error)
}
