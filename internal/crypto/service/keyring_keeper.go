package service

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// KeeperKeyring wraps data keys through a gocloud.dev secrets keeper. The keeper
// owns the master key (a local base64key:// key or a Vault transit key), so this
// process never holds it.
type KeeperKeyring struct {
	keyID  string
	keeper cryptoDomain.KMSKeeper
}

var _ cryptoDomain.Keyring = (*KeeperKeyring)(nil)

// NewKeeperKeyring creates a keyring over an open keeper. Close releases it.
func NewKeeperKeyring(keyID string, keeper cryptoDomain.KMSKeeper) *KeeperKeyring {
	return &KeeperKeyring{keyID: keyID, keeper: keeper}
}

// Provider returns ProviderKeeper.
func (k *KeeperKeyring) Provider() cryptoDomain.Provider {
	return cryptoDomain.ProviderKeeper
}

// CurrentKeyID returns the configured key id.
func (k *KeeperKeyring) CurrentKeyID() string {
	return k.keyID
}

// Wrap encrypts the data key with the keeper.
func (k *KeeperKeyring) Wrap(ctx context.Context, dataKey []byte) ([]byte, error) {
	if len(dataKey) != cryptoDomain.DataKeySize {
		return nil, fmt.Errorf("%w: data key must be %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, cryptoDomain.DataKeySize, len(dataKey))
	}
	wrapped, err := k.keeper.Encrypt(ctx, dataKey)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap data key with keeper: %w", err)
	}
	return wrapped, nil
}

// Unwrap decrypts the data key with the keeper. Keeper failures are reported as
// ErrUnwrapFailed with the keeper error attached.
func (k *KeeperKeyring) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	dataKey, err := k.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrUnwrapFailed, err)
	}
	if len(dataKey) != cryptoDomain.DataKeySize {
		cryptoDomain.Zero(dataKey)
		return nil, cryptoDomain.ErrUnwrapFailed
	}
	return dataKey, nil
}

// Close releases the keeper.
func (k *KeeperKeyring) Close() error {
	return k.keeper.Close()
}
