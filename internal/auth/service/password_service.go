package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordService creates a PasswordService using the Moderate Argon2id policy.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// The policy is static, so this only fails on a library bug.
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}

// HashPassword hashes a plain text password using Argon2id.
func (s *passwordService) HashPassword(plainPassword string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// ComparePassword performs a constant-time comparison between a password and its hash.
func (s *passwordService) ComparePassword(plainPassword string, hashedPassword string) bool {
	if hashedPassword == "" {
		return false
	}
	ok, err := s.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}
