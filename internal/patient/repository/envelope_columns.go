// Package repository persists patients for PostgreSQL and MySQL.
package repository

import (
	"database/sql"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
)

// patientColumns is the select list shared by both drivers.
const patientColumns = `id,
	name_ct, name_nonce, name_tag, name_wrapped_dk, name_kid, name_kver, name_bidx,
	patient_data_ct, patient_data_nonce, patient_data_tag, patient_data_wrapped_dk, patient_data_kid, patient_data_kver,
	name, patient_data, created_at, updated_at`

// envelopeRow scans the six nullable columns of one encrypted field. The key id
// column marks presence; ciphertext of an empty value may legitimately be empty.
type envelopeRow struct {
	ciphertext []byte
	nonce      []byte
	tag        []byte
	wrapped    []byte
	keyID      sql.NullString
	keyVersion sql.NullInt64
}

func (r *envelopeRow) dest() []any {
	return []any{&r.ciphertext, &r.nonce, &r.tag, &r.wrapped, &r.keyID, &r.keyVersion}
}

func (r *envelopeRow) envelope() *cryptoDomain.Envelope {
	if !r.keyID.Valid {
		return nil
	}
	ciphertext := r.ciphertext
	if ciphertext == nil {
		ciphertext = []byte{}
	}
	return &cryptoDomain.Envelope{
		Ciphertext:     ciphertext,
		Nonce:          r.nonce,
		Tag:            r.tag,
		WrappedDataKey: r.wrapped,
		KeyID:          r.keyID.String,
		KeyVersion:     int(r.keyVersion.Int64),
	}
}

// envelopeArgs returns the six column values for envelope, all NULL when nil.
func envelopeArgs(envelope *cryptoDomain.Envelope) []any {
	if envelope == nil {
		return []any{nil, nil, nil, nil, nil, nil}
	}
	return []any{
		envelope.Ciphertext,
		envelope.Nonce,
		envelope.Tag,
		envelope.WrappedDataKey,
		envelope.KeyID,
		envelope.KeyVersion,
	}
}

// patientRow scans one patients row. The id target differs per driver.
type patientRow struct {
	name              envelopeRow
	patientData       envelopeRow
	nameIndex         []byte
	legacyName        sql.NullString
	legacyPatientData []byte
}

func (r *patientRow) dest(p *patientDomain.Patient, id any) []any {
	dest := []any{id}
	dest = append(dest, r.name.dest()...)
	dest = append(dest, &r.nameIndex)
	dest = append(dest, r.patientData.dest()...)
	return append(dest, &r.legacyName, &r.legacyPatientData, &p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRow) apply(p *patientDomain.Patient) {
	p.NameEnvelope = r.name.envelope()
	p.PatientDataEnvelope = r.patientData.envelope()
	p.NameIndex = r.nameIndex
	if r.legacyName.Valid {
		name := r.legacyName.String
		p.LegacyName = &name
	}
	p.LegacyPatientData = r.legacyPatientData
}

// writeArgs returns every column after id in patientColumns order, without the timestamps.
func writeArgs(p *patientDomain.Patient) []any {
	args := envelopeArgs(p.NameEnvelope)
	args = append(args, nullableBytes(p.NameIndex))
	args = append(args, envelopeArgs(p.PatientDataEnvelope)...)
	return append(args, p.LegacyName, nullableBytes(p.LegacyPatientData))
}

func nullableBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}
