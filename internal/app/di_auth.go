package app

import (
	authService "github.com/allisson/fieldvault/internal/auth/service"
)

// PasswordService returns the Argon2id password service used by basic auth.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}
