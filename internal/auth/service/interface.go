// Package service hashes and verifies the admin credential used by basic auth.
package service

// PasswordService hashes and verifies passwords using Argon2id.
type PasswordService interface {
	// HashPassword returns the PHC-encoded Argon2id hash of plainPassword.
	HashPassword(plainPassword string) (string, error)

	// ComparePassword reports whether plainPassword matches hashedPassword.
	// Malformed hashes never match.
	ComparePassword(plainPassword string, hashedPassword string) bool
}
