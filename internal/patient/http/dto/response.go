package dto

import (
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
	patientUsecase "github.com/allisson/fieldvault/internal/patient/usecase"
)

// PatientResponse represents a decrypted patient in API responses.
type PatientResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	PatientData map[string]any `json:"patient_data"`
	Encrypted   bool           `json:"encrypted"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ListPatientsResponse represents a list of patients.
type ListPatientsResponse struct {
	Data []PatientResponse `json:"data"`
}

// MapPatientToResponse converts a domain patient to an API response.
func MapPatientToResponse(patient *patientDomain.Patient) PatientResponse {
	data := patient.PatientData
	if data == nil {
		data = map[string]any{}
	}
	return PatientResponse{
		ID:          patient.ID.String(),
		Name:        patient.Name,
		PatientData: data,
		Encrypted:   patient.Encrypted(),
		CreatedAt:   patient.CreatedAt,
		UpdatedAt:   patient.UpdatedAt,
	}
}

// MapPatientsToListResponse converts domain patients to a list response.
func MapPatientsToListResponse(patients []*patientDomain.Patient) ListPatientsResponse {
	data := make([]PatientResponse, 0, len(patients))
	for _, patient := range patients {
		data = append(data, MapPatientToResponse(patient))
	}
	return ListPatientsResponse{Data: data}
}

// EnvelopeViewResponse is the base64 diagnostic view of a patient's envelopes.
// It never contains plaintext, unwrapped data keys or master keys.
type EnvelopeViewResponse struct {
	PatientID string                                  `json:"patient_id"`
	Envelopes map[string]cryptoDomain.EncodedEnvelope `json:"envelopes"`
}

// MapEnvelopeViewToResponse converts an envelope view to an API response.
func MapEnvelopeViewToResponse(view *patientUsecase.EnvelopeView) EnvelopeViewResponse {
	envelopes := view.Fields
	if envelopes == nil {
		envelopes = map[string]cryptoDomain.EncodedEnvelope{}
	}
	return EnvelopeViewResponse{
		PatientID: view.PatientID.String(),
		Envelopes: envelopes,
	}
}

// DecryptFieldResponse is the outcome of an administrative decrypt.
type DecryptFieldResponse struct {
	PatientID  string `json:"patient_id"`
	Field      string `json:"field"`
	KeyID      string `json:"kid,omitempty"`
	KeyVersion int    `json:"kver,omitempty"`
	OK         bool   `json:"ok"`
	Value      any    `json:"value,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MapDecryptResultToResponse converts a decrypt result to an API response.
func MapDecryptResultToResponse(result *patientUsecase.DecryptResult) DecryptFieldResponse {
	return DecryptFieldResponse{
		PatientID:  result.PatientID.String(),
		Field:      result.Field,
		KeyID:      result.KeyID,
		KeyVersion: result.KeyVersion,
		OK:         result.OK,
		Value:      result.Value,
		Error:      result.Error,
	}
}
