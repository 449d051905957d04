package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/metrics"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
)

// patientUseCaseWithMetrics decorates PatientUseCase with metrics instrumentation.
type patientUseCaseWithMetrics struct {
	next    PatientUseCase
	metrics metrics.BusinessMetrics
}

// NewPatientUseCaseWithMetrics wraps a PatientUseCase with metrics recording.
func NewPatientUseCaseWithMetrics(useCase PatientUseCase, m metrics.BusinessMetrics) PatientUseCase {
	return &patientUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *patientUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, p.metrics, "patients", operation, start, err)
}

// Create records metrics for patient creation.
func (p *patientUseCaseWithMetrics) Create(
	ctx context.Context,
	input CreatePatientInput,
) (*patientDomain.Patient, error) {
	start := time.Now()
	patient, err := p.next.Create(ctx, input)
	p.record(ctx, "patient_create", start, err)
	return patient, err
}

// Get records metrics for patient retrieval.
func (p *patientUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*patientDomain.Patient, error) {
	start := time.Now()
	patient, err := p.next.Get(ctx, id)
	p.record(ctx, "patient_get", start, err)
	return patient, err
}

// List records metrics for patient listing.
func (p *patientUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientDomain.Patient, error) {
	start := time.Now()
	patients, err := p.next.List(ctx, offset, limit)
	p.record(ctx, "patient_list", start, err)
	return patients, err
}

// FindByName records metrics for blind index lookups.
func (p *patientUseCaseWithMetrics) FindByName(
	ctx context.Context,
	name string,
) ([]*patientDomain.Patient, error) {
	start := time.Now()
	patients, err := p.next.FindByName(ctx, name)
	p.record(ctx, "patient_find_by_name", start, err)
	return patients, err
}

// RotateBatch records metrics for rotation batches.
func (p *patientUseCaseWithMetrics) RotateBatch(ctx context.Context, batchSize int) (int, error) {
	start := time.Now()
	rotated, err := p.next.RotateBatch(ctx, batchSize)
	p.record(ctx, "patient_rotate_batch", start, err)
	return rotated, err
}
