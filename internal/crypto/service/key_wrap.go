package service

import (
	"crypto/aes"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// defaultIV is the RFC 3394 initial value (section 2.2.3.1).
var defaultIV = []byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// KeyWrap wraps key material with kek using the AES Key Wrap algorithm (RFC 3394).
// kek must be 16, 24 or 32 bytes; the input must be a multiple of 8 bytes and at
// least 16 bytes long. The output is 8 bytes longer than the input.
func KeyWrap(kek, plaintext []byte) ([]byte, error) {
	if !cryptoDomain.ValidMasterKeySize(len(kek)) {
		return nil, fmt.Errorf("%w: key wrap key must be 16, 24 or 32 bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, len(kek))
	}
	if len(plaintext) < 16 || len(plaintext)%8 != 0 {
		return nil, fmt.Errorf("%w: wrapped key must be a multiple of 8 bytes and at least 16, got %d",
			cryptoDomain.ErrInvalidKeySize, len(plaintext))
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	n := len(plaintext) / 8
	out := make([]byte, len(plaintext)+8)
	copy(out[:8], defaultIV)
	copy(out[8:], plaintext)

	buf := make([]byte, 16)
	for j := 0; j < 6; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], out[:8])
			copy(buf[8:], out[i*8:i*8+8])
			block.Encrypt(buf, buf)

			t := uint64(n*j + i)
			binary.BigEndian.PutUint64(out[:8], binary.BigEndian.Uint64(buf[:8])^t)
			copy(out[i*8:i*8+8], buf[8:])
		}
	}

	cryptoDomain.Zero(buf)
	return out, nil
}

// KeyUnwrap reverses KeyWrap. The integrity check value is compared in constant
// time; a mismatch (wrong kek or altered input) returns ErrUnwrapFailed.
func KeyUnwrap(kek, wrapped []byte) ([]byte, error) {
	if !cryptoDomain.ValidMasterKeySize(len(kek)) {
		return nil, fmt.Errorf("%w: key wrap key must be 16, 24 or 32 bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, len(kek))
	}
	if len(wrapped) < 24 || len(wrapped)%8 != 0 {
		return nil, fmt.Errorf("%w: wrapped key has invalid length %d", cryptoDomain.ErrUnwrapFailed, len(wrapped))
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	n := len(wrapped)/8 - 1
	a := make([]byte, 8)
	copy(a, wrapped[:8])
	r := make([]byte, n*8)
	copy(r, wrapped[8:])

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			binary.BigEndian.PutUint64(buf[:8], binary.BigEndian.Uint64(a)^t)
			copy(buf[8:], r[(i-1)*8:i*8])
			block.Decrypt(buf, buf)

			copy(a, buf[:8])
			copy(r[(i-1)*8:i*8], buf[8:])
		}
	}
	if subtle.ConstantTimeCompare(a, defaultIV) != 1 {
		cryptoDomain.ZeroAll(buf, r)
		return nil, cryptoDomain.ErrUnwrapFailed
	}
	cryptoDomain.Zero(buf)
	return r, nil
}
