package commands

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	validation "github.com/jellydator/validation"

	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// blindIndexOutput is the JSON shape of the blind-index command.
type blindIndexOutput struct {
	Field  string `json:"field"`
	Base64 string `json:"base64"`
	Hex    string `json:"hex"`
}

// RunBlindIndex prints the blind index of value for a "<table>:<field>" column so
// operators can look rows up directly in the database. The value is normalized
// the same way the application normalizes it before indexing.
func RunBlindIndex(
	indexer cryptoService.BlindIndexer,
	writer io.Writer,
	field string,
	value string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if err := validation.Validate(field, validation.Required, customValidation.IndexField); err != nil {
		return fmt.Errorf("invalid field %q: %w", field, err)
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value is required")
	}

	index, err := indexer.ComputeForField(field, value)
	if err != nil {
		return fmt.Errorf("failed to compute blind index: %w", err)
	}

	output := blindIndexOutput{
		Field:  field,
		Base64: base64.StdEncoding.EncodeToString(index),
		Hex:    hex.EncodeToString(index),
	}

	if format == "json" {
		return writeJSON(writer, output)
	}

	_, _ = fmt.Fprintf(writer, "field:  %s\n", output.Field)
	_, _ = fmt.Fprintf(writer, "base64: %s\n", output.Base64)
	_, _ = fmt.Fprintf(writer, "hex:    %s\n", output.Hex)
	return nil
}
