package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
)

// MySQLPatientRepository implements Patient persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLPatientRepository struct {
	db *sql.DB
}

// NewMySQLPatientRepository creates a new MySQL Patient repository.
func NewMySQLPatientRepository(db *sql.DB) *MySQLPatientRepository {
	return &MySQLPatientRepository{db: db}
}

// Create inserts a patient with its envelopes, blind index and legacy columns.
func (m *MySQLPatientRepository) Create(ctx context.Context, patient *patientDomain.Patient) error {
	querier := database.GetTx(ctx, m.db)

	id, err := patient.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal patient id")
	}

	query := `INSERT INTO patients (` + patientColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args := []any{id}
	args = append(args, writeArgs(patient)...)
	args = append(args, patient.CreatedAt, patient.UpdatedAt)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to create patient")
	}
	return nil
}

// Update rewrites every stored column of a patient.
func (m *MySQLPatientRepository) Update(ctx context.Context, patient *patientDomain.Patient) error {
	querier := database.GetTx(ctx, m.db)

	id, err := patient.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal patient id")
	}

	query := `UPDATE patients SET
			  name_ct = ?, name_nonce = ?, name_tag = ?, name_wrapped_dk = ?, name_kid = ?, name_kver = ?,
			  name_bidx = ?,
			  patient_data_ct = ?, patient_data_nonce = ?, patient_data_tag = ?,
			  patient_data_wrapped_dk = ?, patient_data_kid = ?, patient_data_kver = ?,
			  name = ?, patient_data = ?, updated_at = ?
			  WHERE id = ?`

	args := writeArgs(patient)
	args = append(args, patient.UpdatedAt, id)

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update patient")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	// MySQL reports zero affected rows when nothing changed, so a miss is
	// confirmed with a lookup.
	if rows == 0 {
		if _, err := m.Get(ctx, patient.ID); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a patient by id.
func (m *MySQLPatientRepository) Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal patient id")
	}

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ?`

	patient, err := scanMySQLPatient(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, patientDomain.ErrPatientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get patient")
	}
	return patient, nil
}

// List retrieves patients newest first with offset/limit pagination.
func (m *MySQLPatientRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientDomain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	return m.query(ctx, "failed to list patients", query, limit, offset)
}

// FindByNameIndex retrieves patients whose name blind index equals index.
func (m *MySQLPatientRepository) FindByNameIndex(
	ctx context.Context,
	index []byte,
) ([]*patientDomain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients
			  WHERE name_bidx = ?
			  ORDER BY created_at DESC, id DESC`

	return m.query(ctx, "failed to find patients by name index", query, index)
}

// ListPendingRotation retrieves up to limit patients with an envelope not
// wrapped under keyID or a populated legacy plaintext column without envelope.
func (m *MySQLPatientRepository) ListPendingRotation(
	ctx context.Context,
	keyID string,
	limit int,
) ([]*patientDomain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients
			  WHERE (name_kid IS NOT NULL AND name_kid <> ?)
			  OR (patient_data_kid IS NOT NULL AND patient_data_kid <> ?)
			  OR (name_kid IS NULL AND name IS NOT NULL)
			  OR (patient_data_kid IS NULL AND patient_data IS NOT NULL)
			  ORDER BY id
			  LIMIT ?`

	return m.query(ctx, "failed to list patients pending rotation", query, keyID, keyID, limit)
}

func (m *MySQLPatientRepository) query(
	ctx context.Context,
	errMessage string,
	query string,
	args ...any,
) ([]*patientDomain.Patient, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, errMessage)
	}
	defer func() {
		_ = rows.Close()
	}()

	patients := make([]*patientDomain.Patient, 0)
	for rows.Next() {
		patient, err := scanMySQLPatient(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan patient")
		}
		patients = append(patients, patient)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate patients")
	}

	return patients, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMySQLPatient(s scanner) (*patientDomain.Patient, error) {
	var patient patientDomain.Patient
	var row patientRow
	var id []byte

	if err := s.Scan(row.dest(&patient, &id)...); err != nil {
		return nil, err
	}
	if err := patient.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal patient id")
	}
	row.apply(&patient)

	return &patient, nil
}
