// Package http exposes the audit trail to administrators.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	auditUsecase "github.com/allisson/fieldvault/internal/audit/usecase"
	"github.com/allisson/fieldvault/internal/httputil"
)

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID        string         `json:"id"`
	RequestID string         `json:"request_id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	OK        bool           `json:"ok"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListAuditLogsResponse represents a paginated list of audit logs.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts domain audit logs to a list response.
func MapAuditLogsToListResponse(auditLogs []*auditDomain.AuditLog) ListAuditLogsResponse {
	data := make([]AuditLogResponse, 0, len(auditLogs))
	for _, a := range auditLogs {
		data = append(data, AuditLogResponse{
			ID:        a.ID.String(),
			RequestID: a.RequestID,
			Actor:     a.Actor,
			Action:    string(a.Action),
			Entity:    a.Entity,
			EntityID:  a.EntityID,
			OK:        a.Success,
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt,
		})
	}
	return ListAuditLogsResponse{Data: data}
}

// AuditLogHandler handles HTTP requests for audit logs.
type AuditLogHandler struct {
	auditLogUseCase auditUsecase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler.
func NewAuditLogHandler(auditLogUseCase auditUsecase.AuditLogUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler lists audit logs newest first.
// GET /v1/admin/audit-logs?offset=0&limit=50
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	auditLogs, err := h.auditLogUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, MapAuditLogsToListResponse(auditLogs))
}
