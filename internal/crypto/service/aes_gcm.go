package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// AESGCMCipher implements AEAD using AES-256-GCM.
//
// Security properties:
//   - 256-bit key
//   - 12-byte nonce, randomly generated per encryption
//   - 16-byte authentication tag, returned apart from the ciphertext
//
// The cipher is stateless after construction and safe for concurrent use.
//
// Example usage:
//
//	cipher, err := NewAESGCM(dataKey)
//	if err != nil {
//	    return err
//	}
//	ct, nonce, tag, err := cipher.Encrypt([]byte("42 Main St"), []byte("patients:name|dev-master|1"))
//	pt, err := cipher.Decrypt(ct, nonce, tag, []byte("patients:name|dev-master|1"))
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a cipher for a 32-byte key. Any other length is rejected with
// ErrInvalidKeySize.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.DataKeySize {
		return nil, fmt.Errorf(
			"%w: data key must be %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize,
			cryptoDomain.DataKeySize,
			len(key),
		)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt seals plaintext with aad as associated data. A new random nonce is drawn
// from crypto/rand on every call; the nonce must be stored with the ciphertext.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce, tag []byte, err error) {
	nonce = make([]byte, cryptoDomain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := a.aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - cryptoDomain.TagSize
	ciphertext = sealed[:split:split]
	tag = sealed[split:]
	return ciphertext, nonce, tag, nil
}

// Decrypt opens ciphertext with the given nonce, tag and aad. No plaintext is
// returned unless the tag verifies.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, tag, aad []byte) ([]byte, error) {
	if len(nonce) != cryptoDomain.NonceSize || len(tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}
