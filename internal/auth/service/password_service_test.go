package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordService(t *testing.T) {
	service := NewPasswordService()
	assert.NotNil(t, service)
	assert.IsType(t, &passwordService{}, service)
}

func TestPasswordService_HashPassword(t *testing.T) {
	service := NewPasswordService()

	t.Run("Success_ProducesArgon2idHash", func(t *testing.T) {
		hashed, err := service.HashPassword("correct horse battery staple")
		require.NoError(t, err)

		assert.NotEqual(t, "correct horse battery staple", hashed)
		assert.Contains(t, hashed, "$argon2id$")
	})

	t.Run("Success_SaltsEachHash", func(t *testing.T) {
		first, err := service.HashPassword("same-password")
		require.NoError(t, err)
		second, err := service.HashPassword("same-password")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestPasswordService_ComparePassword(t *testing.T) {
	service := NewPasswordService()
	hashed, err := service.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	t.Run("Success_Matches", func(t *testing.T) {
		assert.True(t, service.ComparePassword("correct horse battery staple", hashed))
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		assert.False(t, service.ComparePassword("wrong", hashed))
	})

	t.Run("Error_EmptyHash", func(t *testing.T) {
		assert.False(t, service.ComparePassword("correct horse battery staple", ""))
	})

	t.Run("Error_MalformedHash", func(t *testing.T) {
		assert.False(t, service.ComparePassword("correct horse battery staple", "not-a-phc-string"))
	})
}
