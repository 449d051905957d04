package domain

import (
	"fmt"

	"github.com/allisson/fieldvault/internal/errors"
)

// Configuration errors. These are fatal at keyring construction; the process
// must not serve requests with a crypto core that failed to initialize.
var (
	// ErrUnknownProvider indicates KMS_PROVIDER names no known keyring.
	ErrUnknownProvider = errors.Wrap(errors.ErrInvalidInput, "unknown KMS provider")

	// ErrInvalidKeySize indicates a master, data or index key of the wrong length.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMasterKeyNotConfigured indicates no development master key is configured
	// and ephemeral generation is not allowed.
	ErrMasterKeyNotConfigured = errors.Wrap(errors.ErrInvalidInput, "master key not configured")

	// ErrIndexKeyNotConfigured indicates DEV_KMS_IDX_KEY is missing.
	ErrIndexKeyNotConfigured = errors.Wrap(errors.ErrInvalidInput, "blind index key not configured")

	// ErrKeyURINotConfigured indicates the keeper provider was selected without KMS_KEY_URI.
	ErrKeyURINotConfigured = errors.Wrap(errors.ErrInvalidInput, "KMS key URI not configured")

	// ErrInvalidMasterKeysFormat indicates a malformed "kid:base64" list.
	ErrInvalidMasterKeysFormat = errors.Wrap(errors.ErrInvalidInput, "invalid master keys format")

	// ErrInvalidMasterKeyBase64 indicates a master key that is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid master key base64")

	// ErrActiveMasterKeyNotFound indicates the active key id is absent from the chain.
	ErrActiveMasterKeyNotFound = errors.Wrap(errors.ErrInvalidInput, "active master key not found")
)

// Operation errors.
var (
	// ErrProviderNotImplemented is returned by every operation of a placeholder keyring.
	ErrProviderNotImplemented = errors.Wrap(errors.ErrNotImplemented, "KMS provider integration")

	// ErrAuthenticationFailed indicates the AEAD tag did not verify: the ciphertext,
	// nonce or tag was altered, or the context differs from the one used to encrypt.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrIntegrity, "authentication failed")

	// ErrUnwrapFailed indicates the wrapped data key is not valid under any master
	// key held by the keyring, typically after an incomplete key rotation.
	ErrUnwrapFailed = errors.Wrap(errors.ErrUnavailable, "data key unwrap failed")

	// ErrInvalidEnvelope indicates an envelope with missing or malformed components.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid envelope")

	// ErrUnsupportedKeyVersion indicates an envelope layout this build cannot read.
	ErrUnsupportedKeyVersion = errors.Wrap(errors.ErrInvalidInput, "unsupported envelope key version")
)

func unknownProvider(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// NotImplemented builds the error returned by placeholder keyrings, e.g.
// "AWS KMS integration not yet implemented".
func NotImplemented(p Provider) error {
	return fmt.Errorf("%w: %s integration not yet implemented", ErrProviderNotImplemented, p.DisplayName())
}

// FailureKind classifies a decryption error into a short label that is safe to
// show to operators. It never includes key material or error details.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, ErrUnwrapFailed):
		return "unwrap_failed"
	case errors.Is(err, ErrProviderNotImplemented):
		return "not_implemented"
	case errors.Is(err, ErrInvalidEnvelope), errors.Is(err, ErrUnsupportedKeyVersion):
		return "invalid_envelope"
	default:
		return "internal_error"
	}
}
