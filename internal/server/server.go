package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/creditdesk/payment-reminder/internal/database"
	"github.com/creditdesk/payment-reminder/internal/modules/clients"
	"github.com/creditdesk/payment-reminder/internal/modules/importer"
	"github.com/creditdesk/payment-reminder/internal/modules/reminders"
	"github.com/creditdesk/payment-reminder/internal/modules/transactions"
	"github.com/creditdesk/payment-reminder/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Port               int
	Log                zerolog.Logger
	DB                 *database.DB
	Scheduler          *scheduler.Scheduler
	ClientHandler      *clients.Handler
	TransactionHandler *transactions.Handler
	ImportHandler      *importer.Handler
	ReminderJob        *reminders.Job
	DevMode            bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	db     *database.DB
	sched  *scheduler.Scheduler

	clientHandler      *clients.Handler
	transactionHandler *transactions.Handler
	importHandler      *importer.Handler
	reminderJob        *reminders.Job

	startedAt time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:             chi.NewRouter(),
		log:                cfg.Log.With().Str("component", "server").Logger(),
		db:                 cfg.DB,
		sched:              cfg.Scheduler,
		clientHandler:      cfg.ClientHandler,
		transactionHandler: cfg.TransactionHandler,
		importHandler:      cfg.ImportHandler,
		reminderJob:        cfg.ReminderJob,
		startedAt:          time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// System
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		// Clients
		r.Route("/clients", func(r chi.Router) {
			s.clientHandler.Routes(r)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			s.transactionHandler.Routes(r)
		})

		// Statement import
		r.Post("/import", s.importHandler.HandleImport)

		// Reminders
		r.Route("/reminders", func(r chi.Router) {
			r.Post("/run", s.handleRunReminders)
		})
	})
}

// loggingMiddleware logs each request with method, path, status and duration
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the mux for tests
func (s *Server) Router() *chi.Mux {
	return s.router
}
