package http

import (
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authService "github.com/allisson/fieldvault/internal/auth/service"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/httputil"
)

// CustomLoggerMiddleware logs one line per request with the request id.
// Query strings and bodies are never logged since they may carry patient data.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// BasicAuthMiddleware authenticates requests against a single configured user whose
// password is stored as an Argon2id hash. The authenticated user name is stored
// under gin.AuthUserKey so handlers can attribute audit records.
func BasicAuthMiddleware(
	username string,
	passwordHash string,
	passwords authService.PasswordService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, ok := c.Request.BasicAuth()
		if !ok {
			logger.Debug("authentication failed: missing basic auth credentials")
			unauthorized(c, logger)
			return
		}

		userMatches := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		// Always verify the password so unknown users cost the same as wrong passwords.
		passwordMatches := passwords.ComparePassword(password, passwordHash)
		if !userMatches || !passwordMatches {
			logger.Warn("authentication failed: invalid credentials",
				slog.String("client_ip", c.ClientIP()))
			unauthorized(c, logger)
			return
		}

		c.Set(gin.AuthUserKey, user)
		c.Next()
	}
}

func unauthorized(c *gin.Context, logger *slog.Logger) {
	c.Header("WWW-Authenticate", `Basic realm="fieldvault"`)
	httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
	c.Abort()
}
