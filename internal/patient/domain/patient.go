// Package domain defines the patient entity and its encrypted storage layout.
//
// Each sensitive field is persisted as six columns (ciphertext, nonce, tag,
// wrapped data key, key id, key version). The envelope context for a field is
// "patients:<field>|<kid>|<kver>", built from the stored key id and version so
// that a reader derives exactly the context the writer used.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

const (
	// Entity is the table name used as the context prefix.
	Entity = "patients"
	// FieldName is the encrypted patient name.
	FieldName = "name"
	// FieldPatientData is the encrypted JSON document of clinical data.
	FieldPatientData = "patient_data"
)

// NameIndexField scopes the blind index sub-key for patient names.
const NameIndexField = Entity + ":" + FieldName

// Patient is a patient record.
//
// Name and PatientData hold plaintext in memory only. Persistence goes through
// the envelopes when encryption is enabled, or through the legacy plaintext
// columns otherwise.
type Patient struct {
	ID uuid.UUID

	Name        string         `json:"-"`
	PatientData map[string]any `json:"-"`

	NameEnvelope        *cryptoDomain.Envelope
	PatientDataEnvelope *cryptoDomain.Envelope
	// NameIndex is the blind index of the normalized name.
	NameIndex []byte

	// LegacyName and LegacyPatientData are the pre-encryption plaintext columns.
	LegacyName        *string
	LegacyPatientData []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Envelope returns the stored envelope for field, or nil.
func (p *Patient) Envelope(field string) *cryptoDomain.Envelope {
	switch field {
	case FieldName:
		return p.NameEnvelope
	case FieldPatientData:
		return p.PatientDataEnvelope
	}
	return nil
}

// SetEnvelope stores envelope for field.
func (p *Patient) SetEnvelope(field string, envelope *cryptoDomain.Envelope) {
	switch field {
	case FieldName:
		p.NameEnvelope = envelope
	case FieldPatientData:
		p.PatientDataEnvelope = envelope
	}
}

// Encrypted reports whether any field is stored as an envelope.
func (p *Patient) Encrypted() bool {
	return p.NameEnvelope != nil || p.PatientDataEnvelope != nil
}

// HasLegacyPlaintext reports whether any legacy plaintext column is populated.
func (p *Patient) HasLegacyPlaintext() bool {
	return p.LegacyName != nil || p.LegacyPatientData != nil
}

// Context returns the envelope context for field under kid and kver.
func Context(field, kid string, kver int) string {
	return cryptoDomain.BuildContext(Entity, field, kid, kver)
}

// EnvelopeContext returns the context of the envelope stored for field. The
// key id and version come from the envelope itself.
func EnvelopeContext(field string, envelope *cryptoDomain.Envelope) string {
	return Context(field, envelope.KeyID, envelope.KeyVersion)
}

// Fields lists the encrypted fields in storage order.
func Fields() []string {
	return []string{FieldName, FieldPatientData}
}

// ValidField reports whether field is an encrypted patient field.
func ValidField(field string) bool {
	return field == FieldName || field == FieldPatientData
}

// MarshalData encodes patient data as a JSON object. Nil data encodes as {}.
func MarshalData(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatientData, err)
	}
	return b, nil
}

// UnmarshalData decodes a JSON object produced by MarshalData.
func UnmarshalData(b []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatientData, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
