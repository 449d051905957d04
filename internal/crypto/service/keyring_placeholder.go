package service

import (
	"context"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// PlaceholderKeyring occupies a provider slot whose integration does not exist yet.
// It holds only the configured key id; Wrap and Unwrap always fail with
// ErrProviderNotImplemented and never fall back to another keyring.
type PlaceholderKeyring struct {
	provider cryptoDomain.Provider
	keyID    string
}

var _ cryptoDomain.Keyring = (*PlaceholderKeyring)(nil)

// NewAWSKMSKeyring returns the AWS KMS placeholder.
func NewAWSKMSKeyring(keyID string) *PlaceholderKeyring {
	return &PlaceholderKeyring{provider: cryptoDomain.ProviderAWS, keyID: keyID}
}

// NewGCPKMSKeyring returns the Google Cloud KMS placeholder.
func NewGCPKMSKeyring(keyID string) *PlaceholderKeyring {
	return &PlaceholderKeyring{provider: cryptoDomain.ProviderGCP, keyID: keyID}
}

// NewAzureKeyVaultKeyring returns the Azure Key Vault placeholder.
func NewAzureKeyVaultKeyring(keyID string) *PlaceholderKeyring {
	return &PlaceholderKeyring{provider: cryptoDomain.ProviderAzure, keyID: keyID}
}

// Provider returns the provider slot this placeholder occupies.
func (k *PlaceholderKeyring) Provider() cryptoDomain.Provider {
	return k.provider
}

// CurrentKeyID returns the configured key id.
func (k *PlaceholderKeyring) CurrentKeyID() string {
	return k.keyID
}

// Wrap always fails.
func (k *PlaceholderKeyring) Wrap(context.Context, []byte) ([]byte, error) {
	return nil, cryptoDomain.NotImplemented(k.provider)
}

// Unwrap always fails.
func (k *PlaceholderKeyring) Unwrap(context.Context, []byte) ([]byte, error) {
	return nil, cryptoDomain.NotImplemented(k.provider)
}
