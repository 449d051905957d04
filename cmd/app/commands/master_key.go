package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
)

// RunCreateMasterKey generates a 256-bit development master key and prints the
// environment variables that activate it.
//
// When kmsKeyURI is set the key is encrypted with that gocloud.dev keeper before
// it is printed, and DEV_KMS_MASTER_KEY_ENCRYPTED is emitted so the keyring
// decrypts it at startup. Without a URI the raw key is printed; keep that output
// out of shell history and logs.
//
// If keyID is empty a dated id of the form "dev-YYYY-MM-DD" is used.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID string,
	kmsKeyURI string,
) error {
	if keyID == "" {
		keyID = fmt.Sprintf("dev-%s", time.Now().UTC().Format("2006-01-02"))
	}

	masterKey := make([]byte, cryptoDomain.DataKeySize)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(masterKey)

	encoded := base64.StdEncoding.EncodeToString(masterKey)
	encrypted := kmsKeyURI != ""

	if encrypted {
		keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		ciphertext, err := keeper.Encrypt(ctx, masterKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
		}
		encoded = base64.StdEncoding.EncodeToString(ciphertext)
	}

	logger.Info("master key generated", slog.String("key_id", keyID), slog.Bool("kms_encrypted", encrypted))

	_, _ = fmt.Fprintln(writer, "# Master key configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, `KMS_PROVIDER="development"`)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_ID=%q\n", keyID)
	_, _ = fmt.Fprintf(writer, "DEV_KMS_MASTER_KEY=%q\n", encoded)
	if encrypted {
		_, _ = fmt.Fprintln(writer, `DEV_KMS_MASTER_KEY_ENCRYPTED="true"`)
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=%q\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# When rotating, move the old key into DEV_KMS_PREVIOUS_KEYS and run rewrap-envelopes:")
	_, _ = fmt.Fprintln(writer, `# DEV_KMS_PREVIOUS_KEYS="<old-key-id>:<old-key>"`)

	return nil
}
