// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength is the policy applied to the admin password before it is hashed.
type PasswordStrength struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireNumber bool
}

// Validate implements validation.Rule.
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
		)
	}

	classes := []struct {
		required bool
		match    func(rune) bool
		code     string
		message  string
	}{
		{p.RequireUpper, unicode.IsUpper, "validation_password_uppercase", "password must contain at least one uppercase letter"},
		{p.RequireLower, unicode.IsLower, "validation_password_lowercase", "password must contain at least one lowercase letter"},
		{p.RequireNumber, unicode.IsNumber, "validation_password_number", "password must contain at least one number"},
	}
	for _, class := range classes {
		if class.required && strings.IndexFunc(s, class.match) < 0 {
			return validation.NewError(class.code, class.message)
		}
	}

	return nil
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoColon rejects ':' which separates user from password in basic auth and
// segments in an encryption context.
var NoColon = validation.NewStringRuleWithError(
	func(s string) bool {
		return !strings.Contains(s, ":")
	},
	validation.NewError("validation_no_colon", "must not contain ':'"),
)

// IndexField validates a "<table>:<field>" column name as used by blind indexes.
var IndexField = validation.NewStringRuleWithError(
	func(s string) bool {
		table, field, ok := strings.Cut(s, ":")
		return ok && table != "" && field != "" && !strings.Contains(field, ":")
	},
	validation.NewError("validation_index_field", "must be <table>:<field>"),
)
