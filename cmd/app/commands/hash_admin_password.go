package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/jellydator/validation"

	authService "github.com/allisson/fieldvault/internal/auth/service"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// adminPasswordPolicy is enforced before an admin password is hashed.
var adminPasswordPolicy = customValidation.PasswordStrength{
	MinLength:     12,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// RunHashAdminPassword reads the admin password from the first line of io.Reader,
// validates it and prints ADMIN_USERNAME and ADMIN_PASSWORD_HASH. The password is
// read from stdin rather than a flag so it stays out of shell history.
func RunHashAdminPassword(passwordService authService.PasswordService, rw IOTuple, username string) error {
	err := validation.Validate(
		username,
		validation.Required,
		customValidation.NoWhitespace,
		customValidation.NoColon,
	)
	if err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	password, err := bufio.NewReader(rw.Reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	if err := validation.Validate(password, validation.Required, adminPasswordPolicy); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	hashed, err := passwordService.HashPassword(password)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(rw.Writer, "# Admin credentials for the /v1 API")
	_, _ = fmt.Fprintf(rw.Writer, "ADMIN_USERNAME=%q\n", username)
	_, _ = fmt.Fprintf(rw.Writer, "ADMIN_PASSWORD_HASH='%s'\n", hashed)
	return nil
}
