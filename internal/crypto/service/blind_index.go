package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// minIndexKeySize is the shortest accepted blind index key.
const minIndexKeySize = 16

// blindIndexer implements BlindIndexer with HMAC-SHA256.
//
// The output is deterministic by construction, which is what allows exact-match
// lookups. Apply it only to dedicated index columns, never to the stored value.
type blindIndexer struct {
	key []byte
}

// NewBlindIndexer creates a BlindIndexer. The key must be at least 16 bytes and
// must not be a master key. The key is copied.
func NewBlindIndexer(key []byte) (BlindIndexer, error) {
	if len(key) < minIndexKeySize {
		return nil, fmt.Errorf("%w: blind index key must be at least %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, minIndexKeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &blindIndexer{key: k}, nil
}

// NormalizeIndexValue trims surrounding whitespace and lowercases.
func NormalizeIndexValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Compute returns the 32-byte HMAC of value.
func (b *blindIndexer) Compute(value string, normalize bool) []byte {
	if normalize {
		value = NormalizeIndexValue(value)
	}
	mac := hmac.New(sha256.New, b.key)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

// ComputeForField derives a per-field sub-key with HKDF-SHA256
// (info "blind-index-v1:<field>") and returns the normalized HMAC under it.
func (b *blindIndexer) ComputeForField(field, value string) ([]byte, error) {
	subKey := make([]byte, 32)
	reader := hkdf.New(sha256.New, b.key, nil, []byte("blind-index-v1:"+field))
	if _, err := io.ReadFull(reader, subKey); err != nil {
		return nil, fmt.Errorf("failed to derive blind index key: %w", err)
	}
	defer cryptoDomain.Zero(subKey)

	mac := hmac.New(sha256.New, subKey)
	mac.Write([]byte(NormalizeIndexValue(value)))
	return mac.Sum(nil), nil
}
