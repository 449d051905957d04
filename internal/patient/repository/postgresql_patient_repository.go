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

// PostgreSQLPatientRepository implements Patient persistence for PostgreSQL.
type PostgreSQLPatientRepository struct {
	db *sql.DB
}

// NewPostgreSQLPatientRepository creates a new PostgreSQL Patient repository.
func NewPostgreSQLPatientRepository(db *sql.DB) *PostgreSQLPatientRepository {
	return &PostgreSQLPatientRepository{db: db}
}

// Create inserts a patient with its envelopes, blind index and legacy columns.
func (p *PostgreSQLPatientRepository) Create(ctx context.Context, patient *patientDomain.Patient) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO patients (` + patientColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	args := []any{patient.ID}
	args = append(args, writeArgs(patient)...)
	args = append(args, patient.CreatedAt, patient.UpdatedAt)

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to create patient")
	}
	return nil
}

// Update rewrites every stored column of a patient. Used by key rotation and
// legacy plaintext migration.
func (p *PostgreSQLPatientRepository) Update(ctx context.Context, patient *patientDomain.Patient) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE patients SET
			  name_ct = $2, name_nonce = $3, name_tag = $4, name_wrapped_dk = $5, name_kid = $6, name_kver = $7,
			  name_bidx = $8,
			  patient_data_ct = $9, patient_data_nonce = $10, patient_data_tag = $11,
			  patient_data_wrapped_dk = $12, patient_data_kid = $13, patient_data_kver = $14,
			  name = $15, patient_data = $16, updated_at = $17
			  WHERE id = $1`

	args := []any{patient.ID}
	args = append(args, writeArgs(patient)...)
	args = append(args, patient.UpdatedAt)

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update patient")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return patientDomain.ErrPatientNotFound
	}
	return nil
}

// Get retrieves a patient by id.
func (p *PostgreSQLPatientRepository) Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient patientDomain.Patient
	var row patientRow
	err := querier.QueryRowContext(ctx, query, id).Scan(row.dest(&patient, &patient.ID)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, patientDomain.ErrPatientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get patient")
	}
	row.apply(&patient)

	return &patient, nil
}

// List retrieves patients newest first with offset/limit pagination.
func (p *PostgreSQLPatientRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientDomain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

	return p.query(ctx, "failed to list patients", query, limit, offset)
}

// FindByNameIndex retrieves patients whose name blind index equals index.
func (p *PostgreSQLPatientRepository) FindByNameIndex(
	ctx context.Context,
	index []byte,
) ([]*patientDomain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients
			  WHERE name_bidx = $1
			  ORDER BY created_at DESC, id DESC`

	return p.query(ctx, "failed to find patients by name index", query, index)
}

// ListPendingRotation retrieves up to limit patients with an envelope not
// wrapped under keyID or a populated legacy plaintext column without envelope.
func (p *PostgreSQLPatientRepository) ListPendingRotation(
	ctx context.Context,
	keyID string,
	limit int,
) ([]*patientDomain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients
			  WHERE (name_kid IS NOT NULL AND name_kid <> $1)
			  OR (patient_data_kid IS NOT NULL AND patient_data_kid <> $1)
			  OR (name_kid IS NULL AND name IS NOT NULL)
			  OR (patient_data_kid IS NULL AND patient_data IS NOT NULL)
			  ORDER BY id
			  LIMIT $2`

	return p.query(ctx, "failed to list patients pending rotation", query, keyID, limit)
}

func (p *PostgreSQLPatientRepository) query(
	ctx context.Context,
	errMessage string,
	query string,
	args ...any,
) ([]*patientDomain.Patient, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, errMessage)
	}
	defer func() {
		_ = rows.Close()
	}()

	patients := make([]*patientDomain.Patient, 0)
	for rows.Next() {
		var patient patientDomain.Patient
		var row patientRow
		if err := rows.Scan(row.dest(&patient, &patient.ID)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan patient")
		}
		row.apply(&patient)
		patients = append(patients, &patient)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate patients")
	}

	return patients, nil
}
