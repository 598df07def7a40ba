// Package http exposes the admissions portal over a JSON REST API.
//
// Authentication is not performed here. The API sits behind a gateway
// that authenticates callers and forwards their identity in the
// X-Student-ID and X-Institution-ID headers.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campus-hub/admissions-hub/internal/application/command"
	"github.com/campus-hub/admissions-hub/internal/application/query"
	"github.com/campus-hub/admissions-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	EnableCORS     bool
	AllowedOrigins []string

	EnableMetrics      bool
	RateLimitPerMinute int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               8080,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		EnableCORS:         true,
		EnableMetrics:      true,
		RateLimitPerMinute: 120,
	}
}

// Address returns the listen address.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HealthChecker reports the state of backing services by name.
type HealthChecker interface {
	Check(ctx context.Context) map[string]error
}

// Dependencies holds everything the HTTP layer needs.
type Dependencies struct {
	SubmitApplication  *command.SubmitApplicationHandler
	ReviewApplication  *command.ReviewApplicationHandler
	ReconcileAdmission *command.ReconcileAdmissionHandler
	UploadDocument     *command.UploadDocumentHandler
	DeleteDocument     *command.DeleteDocumentHandler
	MarkNotifications  *command.MarkNotificationsHandler

	ListApplications  *query.ListApplicationsHandler
	BrowseCourses     *query.BrowseCoursesHandler
	ListDocuments     *query.ListDocumentsHandler
	ListNotifications *query.ListNotificationsHandler

	HealthChecker HealthChecker
	Logger        *logger.Logger
	Registry      *prometheus.Registry
}

// Server is the HTTP server for the admissions API.
type Server struct {
	config Config
	deps   Dependencies
	log    *logger.Logger

	httpServer *http.Server

	mu      sync.Mutex
	running bool
}

// NewServer creates a new Server.
func NewServer(config Config, deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		config: config,
		deps:   deps,
		log:    log,
	}

	s.httpServer = &http.Server{
		Addr:         config.Address(),
		Handler:      s.buildHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)

	middlewares := []Middleware{
		requestIDMiddleware(s.log),
		loggingMiddleware(),
	}
	if s.config.EnableMetrics {
		registry := s.deps.Registry
		if registry == nil {
			registry = prometheus.NewRegistry()
			s.deps.Registry = registry
		}
		middlewares = append(middlewares, metricsMiddleware(newHTTPMetrics(registry)))
	}
	middlewares = append(middlewares, recoveryMiddleware(s.log))
	if s.config.EnableCORS {
		middlewares = append(middlewares, corsMiddleware(s.config.AllowedOrigins))
	}
	if s.config.RateLimitPerMinute > 0 {
		middlewares = append(middlewares, rateLimitMiddleware(newRateLimiter(s.config.RateLimitPerMinute)))
	}

	return chain(mux, middlewares...)
}

func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Probes
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /live", s.handleLive)

	if s.config.EnableMetrics && s.deps.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{}))
	}

	// Catalog
	mux.HandleFunc("GET /api/v1/courses", s.handleListCourses)
	mux.HandleFunc("GET /api/v1/institutions", s.handleListInstitutions)

	// Applications, student side
	mux.HandleFunc("POST /api/v1/applications", s.handleSubmitApplication)
	mux.HandleFunc("GET /api/v1/applications", s.handleListStudentApplications)
	mux.HandleFunc("POST /api/v1/applications/{id}/accept", s.handleAcceptOffer)

	// Applications, institution side
	mux.HandleFunc("GET /api/v1/institution/applications", s.handleListInstitutionApplications)
	mux.HandleFunc("POST /api/v1/applications/{id}/decision", s.handleReviewApplication)

	// Documents
	mux.HandleFunc("POST /api/v1/documents", s.handleUploadDocument)
	mux.HandleFunc("GET /api/v1/documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", s.handleDeleteDocument)

	// Notifications
	mux.HandleFunc("GET /api/v1/notifications", s.handleListNotifications)
	mux.HandleFunc("GET /api/v1/notifications/unread-count", s.handleUnreadCount)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", s.handleMarkNotificationRead)
	mux.HandleFunc("POST /api/v1/notifications/read-all", s.handleMarkAllNotificationsRead)
}

// ─────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info("http server starting", logger.String("address", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// StartAsync starts the server in a goroutine and reports startup
// failures on the returned channel.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	s.log.Info("http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
