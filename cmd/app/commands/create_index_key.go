package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// RunCreateIndexKey generates a 256-bit blind index key and prints DEV_KMS_IDX_KEY.
// The index key must never equal a master key. Rotating it invalidates every
// stored blind index, so existing rows must be re-indexed afterwards.
func RunCreateIndexKey(writer io.Writer) error {
	key := make([]byte, cryptoDomain.IndexKeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate index key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	_, _ = fmt.Fprintln(writer, "# Blind index key configuration")
	_, _ = fmt.Fprintf(writer, "DEV_KMS_IDX_KEY=%q\n", base64.StdEncoding.EncodeToString(key))
	return nil
}
