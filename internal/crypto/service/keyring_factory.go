package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/fieldvault/internal/config"
	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// ephemeralKeyWarning is logged whenever development mode generates a key.
const ephemeralKeyWarning = "ephemeral development key generated - data will not survive process restart"

// NewKeyring selects and constructs the keyring named by cfg.KMSProvider.
//
// Selection:
//   - development: master key chain from DEV_KMS_MASTER_KEY (+ DEV_KMS_PREVIOUS_KEYS),
//     generated on the fly only when DEVELOPMENT_MODE is on
//   - keeper: gocloud.dev secrets keeper opened from KMS_KEY_URI
//   - aws, gcp, azure: placeholder keyrings
//   - anything else: ErrUnknownProvider
//
// The constructed keyring must pass a wrap/unwrap round trip before it is returned,
// so misconfiguration (including placeholder providers) surfaces at selection time.
// Callers cache the result for the process lifetime.
func NewKeyring(
	ctx context.Context,
	cfg *config.Config,
	kmsService KMSService,
	logger *slog.Logger,
) (cryptoDomain.Keyring, error) {
	provider, err := cryptoDomain.ParseProvider(cfg.KMSProvider)
	if err != nil {
		return nil, err
	}

	var keyring cryptoDomain.Keyring
	switch provider {
	case cryptoDomain.ProviderDevelopment:
		chain, err := LoadDevelopmentMasterKeyChain(ctx, cfg, kmsService, logger)
		if err != nil {
			return nil, err
		}
		keyring, err = NewDevelopmentKeyring(chain)
		if err != nil {
			return nil, err
		}
	case cryptoDomain.ProviderKeeper:
		keeper, err := kmsService.OpenKeeper(ctx, cfg.KMSKeyURI)
		if err != nil {
			return nil, err
		}
		keyring = NewKeeperKeyring(cfg.KMSKeyID, keeper)
	case cryptoDomain.ProviderAWS:
		keyring = NewAWSKMSKeyring(cfg.KMSKeyID)
	case cryptoDomain.ProviderGCP:
		keyring = NewGCPKMSKeyring(cfg.KMSKeyID)
	case cryptoDomain.ProviderAzure:
		keyring = NewAzureKeyVaultKeyring(cfg.KMSKeyID)
	}

	if err := probeKeyring(ctx, keyring); err != nil {
		CloseKeyring(keyring)
		return nil, fmt.Errorf("keyring %s failed self-test: %w", provider, err)
	}

	logger.Info("keyring initialized",
		slog.String("provider", string(provider)),
		slog.String("key_id", keyring.CurrentKeyID()),
	)
	return keyring, nil
}

// CloseKeyring releases resources held by keyrings that have any.
func CloseKeyring(keyring cryptoDomain.Keyring) {
	if closer, ok := keyring.(io.Closer); ok {
		_ = closer.Close()
	}
}

// probeKeyring wraps and unwraps a throwaway data key.
func probeKeyring(ctx context.Context, keyring cryptoDomain.Keyring) error {
	probe := make([]byte, cryptoDomain.DataKeySize)
	if _, err := rand.Read(probe); err != nil {
		return fmt.Errorf("failed to generate probe key: %w", err)
	}
	var unwrapped []byte
	defer func() { cryptoDomain.ZeroAll(probe, unwrapped) }()

	wrapped, err := keyring.Wrap(ctx, probe)
	if err != nil {
		return err
	}
	unwrapped, err = keyring.Unwrap(ctx, wrapped)
	if err != nil {
		return err
	}

	if !bytes.Equal(probe, unwrapped) {
		return cryptoDomain.ErrUnwrapFailed
	}
	return nil
}

// LoadDevelopmentMasterKeyChain builds the development master key chain.
//
// The active key comes from cfg.DevMasterKey under id cfg.KMSKeyID; historical keys
// come from cfg.DevPreviousKeys. When cfg.DevMasterKeyEncrypted is set, every key is
// a ciphertext produced by the KMS_KEY_URI keeper (see create-master-key) and is
// decrypted here.
//
// A missing active key is fatal (ErrMasterKeyNotConfigured) unless
// cfg.DevelopmentMode is on, in which case a random 256-bit key is generated,
// written into cfg so later lookups in this process reuse it, and logged at WARN.
func LoadDevelopmentMasterKeyChain(
	ctx context.Context,
	cfg *config.Config,
	kmsService KMSService,
	logger *slog.Logger,
) (*cryptoDomain.MasterKeyChain, error) {
	if cfg.DevMasterKey == "" {
		if !cfg.DevelopmentMode || cfg.DevMasterKeyEncrypted {
			return nil, fmt.Errorf(
				"%w: set DEV_KMS_MASTER_KEY or enable DEVELOPMENT_MODE",
				cryptoDomain.ErrMasterKeyNotConfigured,
			)
		}
		generated, err := generateEncodedKey(cryptoDomain.DataKeySize)
		if err != nil {
			return nil, err
		}
		cfg.DevMasterKey = generated
		logger.Warn(ephemeralKeyWarning,
			slog.String("key_id", cfg.KMSKeyID),
			slog.String("setting", "DEV_KMS_MASTER_KEY"),
		)
	}

	active, err := base64.StdEncoding.DecodeString(cfg.DevMasterKey)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", cryptoDomain.ErrInvalidMasterKeyBase64, cfg.KMSKeyID, err)
	}

	previous, err := cryptoDomain.ParseMasterKeys(cfg.DevPreviousKeys)
	if err != nil {
		cryptoDomain.Zero(active)
		return nil, err
	}

	keys := append([]*cryptoDomain.MasterKey{{ID: cfg.KMSKeyID, Key: active}}, previous...)

	if cfg.DevMasterKeyEncrypted {
		if err := decryptMasterKeys(ctx, cfg.KMSKeyURI, kmsService, keys, logger); err != nil {
			for _, mk := range keys {
				cryptoDomain.Zero(mk.Key)
			}
			return nil, err
		}
	}

	return cryptoDomain.NewMasterKeyChain(cfg.KMSKeyID, keys)
}

// decryptMasterKeys replaces each key's ciphertext with its plaintext in place.
func decryptMasterKeys(
	ctx context.Context,
	keyURI string,
	kmsService KMSService,
	keys []*cryptoDomain.MasterKey,
	logger *slog.Logger,
) error {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	for _, mk := range keys {
		plaintext, err := keeper.Decrypt(ctx, mk.Key)
		if err != nil {
			return fmt.Errorf("failed to decrypt master key %s with KMS: %w", mk.ID, err)
		}
		mk.Key = plaintext
	}
	return nil
}

// LoadIndexKey decodes the blind index key from cfg.IndexKey. Like the master key,
// it is generated only in development mode and fatal otherwise.
func LoadIndexKey(cfg *config.Config, logger *slog.Logger) ([]byte, error) {
	if cfg.IndexKey == "" {
		if !cfg.DevelopmentMode {
			return nil, fmt.Errorf(
				"%w: set DEV_KMS_IDX_KEY or enable DEVELOPMENT_MODE",
				cryptoDomain.ErrIndexKeyNotConfigured,
			)
		}
		generated, err := generateEncodedKey(cryptoDomain.IndexKeySize)
		if err != nil {
			return nil, err
		}
		cfg.IndexKey = generated
		logger.Warn(ephemeralKeyWarning, slog.String("setting", "DEV_KMS_IDX_KEY"))
	}

	key, err := base64.StdEncoding.DecodeString(cfg.IndexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: DEV_KMS_IDX_KEY is not valid base64", cryptoDomain.ErrIndexKeyNotConfigured)
	}
	return key, nil
}

// generateEncodedKey returns n random bytes in standard base64.
func generateEncodedKey(n int) (string, error) {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	defer cryptoDomain.Zero(key)
	return base64.StdEncoding.EncodeToString(key), nil
}
