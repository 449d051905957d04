package service

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// DevelopmentKeyring wraps data keys with AES Key Wrap under a locally configured
// master key. Historical keys in the chain stay available for Unwrap so envelopes
// written before a rotation keep decrypting.
type DevelopmentKeyring struct {
	chain *cryptoDomain.MasterKeyChain
}

var _ cryptoDomain.Keyring = (*DevelopmentKeyring)(nil)

// NewDevelopmentKeyring creates a keyring over an already validated chain.
func NewDevelopmentKeyring(chain *cryptoDomain.MasterKeyChain) (*DevelopmentKeyring, error) {
	if chain == nil || chain.Active() == nil {
		return nil, cryptoDomain.ErrMasterKeyNotConfigured
	}
	return &DevelopmentKeyring{chain: chain}, nil
}

// NewDevelopmentKeyringFromKey creates a single-key keyring. The key must be 16,
// 24 or 32 bytes; anything else fails here with ErrInvalidKeySize.
func NewDevelopmentKeyringFromKey(keyID string, masterKey []byte) (*DevelopmentKeyring, error) {
	key := make([]byte, len(masterKey))
	copy(key, masterKey)

	chain, err := cryptoDomain.NewMasterKeyChain(keyID, []*cryptoDomain.MasterKey{{ID: keyID, Key: key}})
	if err != nil {
		cryptoDomain.Zero(key)
		return nil, err
	}
	return NewDevelopmentKeyring(chain)
}

// Provider returns ProviderDevelopment.
func (k *DevelopmentKeyring) Provider() cryptoDomain.Provider {
	return cryptoDomain.ProviderDevelopment
}

// CurrentKeyID returns the active master key id.
func (k *DevelopmentKeyring) CurrentKeyID() string {
	return k.chain.ActiveMasterKeyID()
}

// Wrap wraps a 32-byte data key under the active master key.
func (k *DevelopmentKeyring) Wrap(_ context.Context, dataKey []byte) ([]byte, error) {
	if len(dataKey) != cryptoDomain.DataKeySize {
		return nil, fmt.Errorf("%w: data key must be %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, cryptoDomain.DataKeySize, len(dataKey))
	}
	return KeyWrap(k.chain.Active().Key, dataKey)
}

// Unwrap tries the active key first, then historical keys. The RFC 3394 integrity
// check identifies the key that produced the blob.
func (k *DevelopmentKeyring) Unwrap(_ context.Context, wrapped []byte) ([]byte, error) {
	for _, id := range k.chain.UnwrapOrder() {
		mk, ok := k.chain.Get(id)
		if !ok {
			continue
		}
		dataKey, err := KeyUnwrap(mk.Key, wrapped)
		if err == nil {
			return dataKey, nil
		}
	}
	return nil, cryptoDomain.ErrUnwrapFailed
}

// Close zeroes the master keys.
func (k *DevelopmentKeyring) Close() error {
	k.chain.Close()
	return nil
}
