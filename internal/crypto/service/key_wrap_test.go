package service

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// Test vectors from RFC 3394 section 4.
func TestKeyWrap_RFC3394Vectors(t *testing.T) {
	vectors := []struct {
		name       string
		kek        string
		keyData    string
		ciphertext string
	}{
		{
			name:       "4.1_128KEK_128Data",
			kek:        "000102030405060708090A0B0C0D0E0F",
			keyData:    "00112233445566778899AABBCCDDEEFF",
			ciphertext: "1FA68B0A8112B447AEF34BD8FB5A7B829D3E862371D2CFE5",
		},
		{
			name:       "4.6_256KEK_256Data",
			kek:        "000102030405060708090A0B0C0D0E0F101112131415161718191A1B1C1D1E1F",
			keyData:    "00112233445566778899AABBCCDDEEFF000102030405060708090A0B0C0D0E0F",
			ciphertext: "28C9F404C4B810F4CBCCB35CFB87F8263F5786E2D80ED326CBC7F0E71A99F43BFB988B9B7A02DD21",
		},
	}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			kek := mustHex(t, v.kek)
			keyData := mustHex(t, v.keyData)
			expected := mustHex(t, v.ciphertext)

			wrapped, err := KeyWrap(kek, keyData)
			require.NoError(t, err)
			assert.Equal(t, expected, wrapped)

			unwrapped, err := KeyUnwrap(kek, wrapped)
			require.NoError(t, err)
			assert.Equal(t, keyData, unwrapped)
		})
	}
}

func TestKeyWrap_RoundTripAllKeySizes(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		kek := make([]byte, size)
		_, err := rand.Read(kek)
		require.NoError(t, err)

		dataKey := make([]byte, cryptoDomain.DataKeySize)
		_, err = rand.Read(dataKey)
		require.NoError(t, err)

		wrapped, err := KeyWrap(kek, dataKey)
		require.NoError(t, err)
		assert.Len(t, wrapped, cryptoDomain.DataKeySize+8)

		unwrapped, err := KeyUnwrap(kek, wrapped)
		require.NoError(t, err)
		assert.Equal(t, dataKey, unwrapped)
	}
}

func TestKeyWrap_Errors(t *testing.T) {
	t.Run("Error_InvalidKEKSize", func(t *testing.T) {
		_, err := KeyWrap(make([]byte, 20), make([]byte, 32))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("Error_PlaintextNotMultipleOf8", func(t *testing.T) {
		_, err := KeyWrap(make([]byte, 32), make([]byte, 30))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("Error_PlaintextTooShort", func(t *testing.T) {
		_, err := KeyWrap(make([]byte, 32), make([]byte, 8))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestKeyUnwrap_Errors(t *testing.T) {
	kek := make([]byte, 32)
	wrapped, err := KeyWrap(kek, make([]byte, 32))
	require.NoError(t, err)

	t.Run("Error_WrongKEK", func(t *testing.T) {
		other := make([]byte, 32)
		other[0] = 1
		_, err := KeyUnwrap(other, wrapped)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnwrapFailed)
	})

	t.Run("Error_Tampered", func(t *testing.T) {
		tampered := append([]byte(nil), wrapped...)
		tampered[10] ^= 0x80
		_, err := KeyUnwrap(kek, tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnwrapFailed)
	})

	t.Run("Error_InvalidLength", func(t *testing.T) {
		_, err := KeyUnwrap(kek, wrapped[:20])
		assert.ErrorIs(t, err, cryptoDomain.ErrUnwrapFailed)
	})
}
