package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/allisson/fieldvault/internal/httputil"
	patientDomain "github.com/allisson/fieldvault/internal/patient/domain"
	"github.com/allisson/fieldvault/internal/patient/http/dto"
	patientUsecase "github.com/allisson/fieldvault/internal/patient/usecase"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// AdminHandler exposes audited inspection of encrypted patient fields.
// Must be mounted behind admin authentication.
type AdminHandler struct {
	adminUseCase patientUsecase.AdminUseCase
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminUseCase patientUsecase.AdminUseCase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
		logger:       logger,
	}
}

func adminRequest(c *gin.Context) patientUsecase.AdminRequest {
	return patientUsecase.AdminRequest{
		Actor:     c.GetString(gin.AuthUserKey),
		RequestID: requestid.Get(c),
	}
}

// ViewEnvelopesHandler returns the stored envelopes in base64.
// GET /v1/admin/patients/:id/envelopes
func (h *AdminHandler) ViewEnvelopesHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	view, err := h.adminUseCase.ViewEnvelopes(c.Request.Context(), adminRequest(c), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEnvelopeViewToResponse(view))
}

// DecryptHandler decrypts one field. A decryption failure is a 200 response
// with ok=false and a generic error.
// POST /v1/admin/patients/:id/decrypt
func (h *AdminHandler) DecryptHandler(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.DecryptFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if req.Field == "" {
		req.Field = patientDomain.FieldPatientData
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.adminUseCase.DecryptField(c.Request.Context(), adminRequest(c), id, req.Field)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecryptResultToResponse(result))
}
