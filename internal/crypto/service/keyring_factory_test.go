package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/fieldvault/internal/config"
	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

func encodedKey(t *testing.T, n int) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(randomKey(t, n))
}

func TestNewKeyring_Development(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ConfiguredKey", func(t *testing.T) {
		cfg := &config.Config{
			KMSProvider:  "development",
			KMSKeyID:     "dev-master",
			DevMasterKey: encodedKey(t, 32),
		}

		keyring, err := NewKeyring(ctx, cfg, NewKMSService(), discardLogger())
		require.NoError(t, err)
		defer CloseKeyring(keyring)

		assert.Equal(t, cryptoDomain.ProviderDevelopment, keyring.Provider())
		assert.Equal(t, "dev-master", keyring.CurrentKeyID())
	})

	t.Run("Success_DevAlias", func(t *testing.T) {
		cfg := &config.Config{
			KMSProvider:  "dev",
			KMSKeyID:     "dev-master",
			DevMasterKey: encodedKey(t, 16),
		}

		keyring, err := NewKeyring(ctx, cfg, NewKMSService(), discardLogger())
		require.NoError(t, err)
		defer CloseKeyring(keyring)

		assert.Equal(t, cryptoDomain.ProviderDevelopment, keyring.Provider())
	})

	t.Run("Success_GeneratedInDevelopmentMode", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		cfg := &config.Config{
			KMSProvider:     "development",
			KMSKeyID:        "dev-master",
			DevelopmentMode: true,
		}

		keyring, err := NewKeyring(ctx, cfg, NewKMSService(), logger)
		require.NoError(t, err)
		defer CloseKeyring(keyring)

		assert.NotEmpty(t, cfg.DevMasterKey)
		decoded, err := base64.StdEncoding.DecodeString(cfg.DevMasterKey)
		require.NoError(t, err)
		assert.Len(t, decoded, 32)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), ephemeralKeyWarning)
	})

	t.Run("Error_MissingKeyOutsideDevelopmentMode", func(t *testing.T) {
		cfg := &config.Config{KMSProvider: "development", KMSKeyID: "dev-master"}

		keyring, err := NewKeyring(ctx, cfg, NewKMSService(), discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotConfigured)
		assert.Nil(t, keyring)
		assert.Empty(t, cfg.DevMasterKey)
	})

	t.Run("Error_InvalidKeyLength", func(t *testing.T) {
		cfg := &config.Config{
			KMSProvider:  "development",
			KMSKeyID:     "dev-master",
			DevMasterKey: encodedKey(t, 20),
		}

		keyring, err := NewKeyring(ctx, cfg, NewKMSService(), discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, keyring)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		cfg := &config.Config{
			KMSProvider:  "development",
			KMSKeyID:     "dev-master",
			DevMasterKey: "not base64!",
		}

		_, err := NewKeyring(ctx, cfg, NewKMSService(), discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterKeyBase64)
	})
}

func TestNewKeyring_UnknownProvider(t *testing.T) {
	cfg := &config.Config{KMSProvider: "hsm", KMSKeyID: "dev-master", DevMasterKey: encodedKey(t, 32)}

	keyring, err := NewKeyring(context.Background(), cfg, NewKMSService(), discardLogger())
	assert.ErrorIs(t, err, cryptoDomain.ErrUnknownProvider)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"hsm"`)
	assert.Nil(t, keyring)
}

func TestNewKeyring_PlaceholderProvidersFailAtSelection(t *testing.T) {
	for _, name := range []string{"aws", "gcp", "azure"} {
		t.Run(name, func(t *testing.T) {
			cfg := &config.Config{KMSProvider: name, KMSKeyID: "some-key"}

			keyring, err := NewKeyring(context.Background(), cfg, NewKMSService(), discardLogger())
			assert.ErrorIs(t, err, cryptoDomain.ErrProviderNotImplemented)
			assert.ErrorIs(t, err, apperrors.ErrNotImplemented)
			assert.Contains(t, err.Error(), "not yet implemented")
			assert.Nil(t, keyring)
		})
	}
}

func TestNewKeyring_Keeper(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cfg := &config.Config{
			KMSProvider: "keeper",
			KMSKeyID:    "local-keeper",
			KMSKeyURI:   generateLocalSecretsURI(t),
		}

		keyring, err := NewKeyring(ctx, cfg, NewKMSService(), discardLogger())
		require.NoError(t, err)
		defer CloseKeyring(keyring)

		assert.Equal(t, cryptoDomain.ProviderKeeper, keyring.Provider())
		assert.Equal(t, "local-keeper", keyring.CurrentKeyID())
	})

	t.Run("Error_MissingURI", func(t *testing.T) {
		cfg := &config.Config{KMSProvider: "keeper", KMSKeyID: "local-keeper"}

		_, err := NewKeyring(ctx, cfg, NewKMSService(), discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyURINotConfigured)
	})
}

func TestLoadDevelopmentMasterKeyChain(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("Success_WithPreviousKeys", func(t *testing.T) {
		cfg := &config.Config{
			KMSKeyID:        "dev-2026",
			DevMasterKey:    encodedKey(t, 32),
			DevPreviousKeys: "dev-2025:" + encodedKey(t, 32) + ",dev-2024:" + encodedKey(t, 16),
		}

		chain, err := LoadDevelopmentMasterKeyChain(ctx, cfg, kmsService, discardLogger())
		require.NoError(t, err)
		defer chain.Close()

		assert.Equal(t, "dev-2026", chain.ActiveMasterKeyID())
		assert.Equal(t, []string{"dev-2026", "dev-2025", "dev-2024"}, chain.UnwrapOrder())
	})

	t.Run("Success_EncryptedKeys", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)
		keeper, err := kmsService.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() { _ = keeper.Close() }()

		active := randomKey(t, 32)
		previous := randomKey(t, 24)
		encActive, err := keeper.Encrypt(ctx, active)
		require.NoError(t, err)
		encPrevious, err := keeper.Encrypt(ctx, previous)
		require.NoError(t, err)

		cfg := &config.Config{
			KMSKeyID:              "dev-2026",
			KMSKeyURI:             keyURI,
			DevMasterKey:          base64.StdEncoding.EncodeToString(encActive),
			DevPreviousKeys:       "dev-2025:" + base64.StdEncoding.EncodeToString(encPrevious),
			DevMasterKeyEncrypted: true,
		}

		chain, err := LoadDevelopmentMasterKeyChain(ctx, cfg, kmsService, discardLogger())
		require.NoError(t, err)
		defer chain.Close()

		mk, ok := chain.Get("dev-2026")
		require.True(t, ok)
		assert.Equal(t, active, mk.Key)
		mk, ok = chain.Get("dev-2025")
		require.True(t, ok)
		assert.Equal(t, previous, mk.Key)
	})

	t.Run("Error_EncryptedKeysWrongKeeper", func(t *testing.T) {
		cfg := &config.Config{
			KMSKeyID:              "dev-2026",
			KMSKeyURI:             generateLocalSecretsURI(t),
			DevMasterKey:          encodedKey(t, 60),
			DevMasterKeyEncrypted: true,
		}

		_, err := LoadDevelopmentMasterKeyChain(ctx, cfg, kmsService, discardLogger())
		assert.ErrorContains(t, err, "failed to decrypt master key dev-2026")
	})

	t.Run("Error_EncryptedFlagDisablesGeneration", func(t *testing.T) {
		cfg := &config.Config{
			KMSKeyID:              "dev-master",
			DevelopmentMode:       true,
			DevMasterKeyEncrypted: true,
		}

		_, err := LoadDevelopmentMasterKeyChain(ctx, cfg, kmsService, discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotConfigured)
	})

	t.Run("Error_MalformedPreviousKeys", func(t *testing.T) {
		cfg := &config.Config{
			KMSKeyID:        "dev-master",
			DevMasterKey:    encodedKey(t, 32),
			DevPreviousKeys: "no-separator",
		}

		_, err := LoadDevelopmentMasterKeyChain(ctx, cfg, kmsService, discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterKeysFormat)
	})
}

func TestLoadIndexKey(t *testing.T) {
	t.Run("Success_Configured", func(t *testing.T) {
		raw := randomKey(t, 32)
		cfg := &config.Config{IndexKey: base64.StdEncoding.EncodeToString(raw)}

		key, err := LoadIndexKey(cfg, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, raw, key)
	})

	t.Run("Success_GeneratedInDevelopmentMode", func(t *testing.T) {
		var logs strings.Builder
		cfg := &config.Config{DevelopmentMode: true}

		key, err := LoadIndexKey(cfg, slog.New(slog.NewTextHandler(&logs, nil)))
		require.NoError(t, err)
		assert.Len(t, key, cryptoDomain.IndexKeySize)
		assert.NotEmpty(t, cfg.IndexKey)
		assert.Contains(t, logs.String(), "DEV_KMS_IDX_KEY")

		again, err := LoadIndexKey(cfg, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, key, again)
	})

	t.Run("Error_Missing", func(t *testing.T) {
		_, err := LoadIndexKey(&config.Config{}, discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrIndexKeyNotConfigured)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		_, err := LoadIndexKey(&config.Config{IndexKey: "%%%"}, discardLogger())
		assert.ErrorIs(t, err, cryptoDomain.ErrIndexKeyNotConfigured)
	})
}
