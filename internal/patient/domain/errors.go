package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

// Patient-specific error definitions.
var (
	// ErrPatientNotFound indicates no patient exists with the given id.
	ErrPatientNotFound = errors.Wrap(errors.ErrNotFound, "patient not found")

	// ErrLegacyPlaintextDisabled indicates a row holds only plaintext columns while
	// READ_LEGACY_PLAINTEXT is off. The row must be migrated before it can be read.
	ErrLegacyPlaintextDisabled = errors.Wrap(errors.ErrUnavailable, "legacy plaintext reads are disabled")

	// ErrInvalidPatientData indicates stored patient data that is not a JSON object.
	ErrInvalidPatientData = errors.Wrap(errors.ErrInvalidInput, "invalid patient data")

	// ErrInvalidField indicates a field name that is not encrypted on patients.
	ErrInvalidField = errors.Wrap(errors.ErrInvalidInput, "invalid patient field")
)

// ErrEncryptionDisabled indicates an operation that needs ENCRYPTION_ENABLED.
var ErrEncryptionDisabled = errors.Wrap(errors.ErrInvalidInput, "field encryption is disabled")
