package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

func TestAction_Validate(t *testing.T) {
	assert.NoError(t, ActionEncryptionView.Validate())
	assert.NoError(t, ActionEncryptionDecrypt.Validate())

	err := Action("encryption_export").Validate()
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestActionValues(t *testing.T) {
	assert.Equal(t, "encryption_view", string(ActionEncryptionView))
	assert.Equal(t, "encryption_decrypt", string(ActionEncryptionDecrypt))
}
