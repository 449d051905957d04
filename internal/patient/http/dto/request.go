// Package dto provides data transfer objects for patient HTTP requests and responses.
package dto

import (
	validation "github.com/jellydator/validation"

	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// CreatePatientRequest contains the plaintext values of a new patient.
type CreatePatientRequest struct {
	Name        string         `json:"name"`
	PatientData map[string]any `json:"patient_data"`
}

// Validate checks if the create patient request is valid.
func (r *CreatePatientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, 255),
		),
	)
}

// SearchPatientsRequest looks patients up by exact name. The name travels in the
// body so it never appears in access logs.
type SearchPatientsRequest struct {
	Name string `json:"name"`
}

// Validate checks if the search request is valid.
func (r *SearchPatientsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// DecryptFieldRequest selects the field an administrator wants decrypted.
// An empty field means patient_data.
type DecryptFieldRequest struct {
	Field string `json:"field"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptFieldRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Field,
			validation.Required,
			validation.In(patientDomain.FieldName, patientDomain.FieldPatientData),
		),
	)
}
