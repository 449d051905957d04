// Package http provides HTTP handlers for patients and for administrative
// inspection of their encrypted fields.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/fieldvault/internal/httputil"
	"github.com/allisson/fieldvault/internal/patient/http/dto"
	patientUsecase "github.com/allisson/fieldvault/internal/patient/usecase"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// PatientHandler handles HTTP requests for patients.
type PatientHandler struct {
	patientUseCase patientUsecase.PatientUseCase
	logger         *slog.Logger
}

// NewPatientHandler creates a new patient handler.
func NewPatientHandler(patientUseCase patientUsecase.PatientUseCase, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{
		patientUseCase: patientUseCase,
		logger:         logger,
	}
}

// CreateHandler stores a new patient.
// POST /v1/patients
func (h *PatientHandler) CreateHandler(c *gin.Context) {
	var req dto.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	patient, err := h.patientUseCase.Create(c.Request.Context(), patientUsecase.CreatePatientInput{
		Name:        req.Name,
		PatientData: req.PatientData,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPatientToResponse(patient))
}

// GetHandler retrieves and decrypts a patient.
// GET /v1/patients/:id
func (h *PatientHandler) GetHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	patient, err := h.patientUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPatientToResponse(patient))
}

// ListHandler lists patients newest first.
// GET /v1/patients?offset=0&limit=50
func (h *PatientHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	patients, err := h.patientUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPatientsToListResponse(patients))
}

// SearchHandler finds patients by exact, case-insensitive name.
// POST /v1/patients/search
func (h *PatientHandler) SearchHandler(c *gin.Context) {
	var req dto.SearchPatientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	patients, err := h.patientUseCase.FindByName(c.Request.Context(), req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPatientsToListResponse(patients))
}
