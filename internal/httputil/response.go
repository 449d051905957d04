// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// ErrorResponse is the JSON body of every error. RequestID lets a caller quote
// the failing request without the server echoing patient data back.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorMapping maps a domain error to a response. An empty message means the
// error text is safe to return as is.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},
	{apperrors.ErrNotImplemented, http.StatusNotImplemented, "not_implemented", ""},
	// Tampered or corrupted stored data. Logged at error level.
	{apperrors.ErrIntegrity, http.StatusInternalServerError, "decrypt_failed", "Stored data failed its integrity check"},
	// Key ids and unwrap failures stay in the log.
	{apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "The requested data cannot be decrypted at this time"},
}

func mapError(err error) (int, ErrorResponse) {
	for _, m := range errorMappings {
		if apperrors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = err.Error()
			}
			return m.status, ErrorResponse{Error: m.code, Message: message}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON error.
// Server side failures are logged at error level with the full chain, client
// errors at warn.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, response := mapError(err)
	response.RequestID = requestid.Get(c)

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c, level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", response.Error),
			slog.String("request_id", response.RequestID),
			slog.Any("error", err),
		)
	}

	c.JSON(status, response)
}

// HandleBadRequestGin writes a 400 for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", "bad request", err, logger)
}

// HandleValidationErrorGin writes a 422 for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", "validation failed", err, logger)
}

func writeClientError(c *gin.Context, status int, code, logMsg string, err error, logger *slog.Logger) {
	requestID := requestid.Get(c)
	if logger != nil {
		logger.Warn(logMsg, slog.String("request_id", requestID), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error(), RequestID: requestID})
}
