// Package http wires the Gin router, middleware and HTTP servers for the API.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/fieldvault/internal/audit/http"
	authService "github.com/allisson/fieldvault/internal/auth/service"
	"github.com/allisson/fieldvault/internal/config"
	"github.com/allisson/fieldvault/internal/metrics"
	patientHTTP "github.com/allisson/fieldvault/internal/patient/http"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new Server. SetupRouter must be called before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterDependencies groups the handlers and services the router needs.
type RouterDependencies struct {
	PatientHandler  *patientHTTP.PatientHandler
	AdminHandler    *patientHTTP.AdminHandler
	AuditLogHandler *auditHTTP.AuditLogHandler
	PasswordService authService.PasswordService
	MetricsProvider *metrics.Provider
}

// SetupRouter builds the Gin engine.
//
// Routes:
//
//	GET  /health
//	GET  /ready
//	POST /v1/patients
//	GET  /v1/patients
//	GET  /v1/patients/:id
//	POST /v1/patients/search
//	GET  /v1/admin/patients/:id/envelopes
//	POST /v1/admin/patients/:id/decrypt
//	GET  /v1/admin/audit-logs
//
// Every /v1 route requires basic auth. When no admin user is configured the /v1
// routes are not registered at all. Admin routes are additionally rate limited
// per client IP.
func (s *Server) SetupRouter(ctx context.Context, cfg *config.Config, deps RouterDependencies) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if cfg.AdminUsername == "" {
		s.logger.Warn("ADMIN_USERNAME not configured, /v1 routes are disabled")
		s.router = router
		return
	}

	basicAuth := BasicAuthMiddleware(cfg.AdminUsername, cfg.AdminPasswordHash, deps.PasswordService, s.logger)

	v1 := router.Group("/v1")

	patients := v1.Group("/patients")
	patients.Use(basicAuth)
	{
		patients.POST("", deps.PatientHandler.CreateHandler)
		patients.GET("", deps.PatientHandler.ListHandler)
		patients.POST("/search", deps.PatientHandler.SearchHandler)
		patients.GET("/:id", deps.PatientHandler.GetHandler)
	}

	admin := v1.Group("/admin")
	if cfg.RateLimitEnabled {
		admin.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	admin.Use(basicAuth)
	{
		admin.GET("/patients/:id/envelopes", deps.AdminHandler.ViewEnvelopesHandler)
		admin.POST("/patients/:id/decrypt", deps.AdminHandler.DecryptHandler)
		admin.GET("/audit-logs", deps.AuditLogHandler.ListHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	dbStatus := "ok"
	if s.db == nil {
		dbStatus = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("readiness check failed", slog.Any("error", err))
			dbStatus = "error"
		}
	}

	status, code := "ready", http.StatusOK
	if dbStatus != "ok" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": gin.H{"database": dbStatus},
	})
}
