package domain_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/fieldvault/internal/crypto/domain"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

func validEnvelope() *domain.Envelope {
	return &domain.Envelope{
		Ciphertext:     []byte("ciphertext"),
		Nonce:          bytes.Repeat([]byte{1}, domain.NonceSize),
		Tag:            bytes.Repeat([]byte{2}, domain.TagSize),
		WrappedDataKey: bytes.Repeat([]byte{3}, domain.DataKeySize+8),
		KeyID:          "dev-master",
		KeyVersion:     domain.CurrentKeyVersion,
	}
}

func TestEnvelope_Validate(t *testing.T) {
	t.Run("Success_ValidEnvelope", func(t *testing.T) {
		require.NoError(t, validEnvelope().Validate())
	})

	t.Run("Success_EmptyCiphertext", func(t *testing.T) {
		env := validEnvelope()
		env.Ciphertext = nil
		require.NoError(t, env.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*domain.Envelope)
		wantErr error
	}{
		{"Error_ShortNonce", func(e *domain.Envelope) { e.Nonce = e.Nonce[:8] }, domain.ErrInvalidEnvelope},
		{"Error_ShortTag", func(e *domain.Envelope) { e.Tag = e.Tag[:4] }, domain.ErrInvalidEnvelope},
		{"Error_NoWrappedKey", func(e *domain.Envelope) { e.WrappedDataKey = nil }, domain.ErrInvalidEnvelope},
		{"Error_NoKeyID", func(e *domain.Envelope) { e.KeyID = "" }, domain.ErrInvalidEnvelope},
		{"Error_UnknownVersion", func(e *domain.Envelope) { e.KeyVersion = 2 }, domain.ErrUnsupportedKeyVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope()
			tt.mutate(env)
			err := env.Validate()
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	t.Run("Error_Nil", func(t *testing.T) {
		var env *domain.Envelope
		assert.ErrorIs(t, env.Validate(), domain.ErrInvalidEnvelope)
	})
}

func TestEnvelope_EncodeDecode(t *testing.T) {
	original := validEnvelope()

	encoded := original.Encode()
	assert.Equal(t, "Y2lwaGVydGV4dA==", encoded.Ciphertext)
	assert.Equal(t, "dev-master", encoded.KeyID)
	assert.Equal(t, 1, encoded.KeyVersion)

	decoded, err := encoded.Decode()
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodedEnvelope_Decode_Errors(t *testing.T) {
	t.Run("Error_InvalidBase64", func(t *testing.T) {
		encoded := validEnvelope().Encode()
		encoded.Tag = "not base64!"
		_, err := encoded.Decode()
		assert.ErrorIs(t, err, domain.ErrInvalidEnvelope)
		assert.Contains(t, err.Error(), "tag")
	})

	t.Run("Error_ValidationFails", func(t *testing.T) {
		encoded := validEnvelope().Encode()
		encoded.KeyID = ""
		_, err := encoded.Decode()
		assert.ErrorIs(t, err, domain.ErrInvalidEnvelope)
	})
}

func TestBuildContext(t *testing.T) {
	assert.Equal(t, "patient:address|dev-master|1", domain.BuildContext("patient", "address", "dev-master", 1))
	assert.Equal(t, "t:c|kid|2", domain.BuildContext("t", "c", "kid", 2))
	assert.NotEqual(
		t,
		domain.BuildContext("patients", "name", "kid", 1),
		domain.BuildContext("patients", "patient_data", "kid", 1),
	)
}
