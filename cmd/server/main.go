package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creditdesk/payment-reminder/internal/clients/twilio"
	"github.com/creditdesk/payment-reminder/internal/config"
	"github.com/creditdesk/payment-reminder/internal/database"
	"github.com/creditdesk/payment-reminder/internal/events"
	"github.com/creditdesk/payment-reminder/internal/modules/clients"
	"github.com/creditdesk/payment-reminder/internal/modules/importer"
	"github.com/creditdesk/payment-reminder/internal/modules/reminders"
	"github.com/creditdesk/payment-reminder/internal/modules/transactions"
	"github.com/creditdesk/payment-reminder/internal/scheduler"
	"github.com/creditdesk/payment-reminder/internal/server"
	"github.com/creditdesk/payment-reminder/pkg/logger"
)

func main() {
	// Load configuration first so the log level is honored from the start
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Payment Reminder")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Event sink for reminder and import outcomes
	eventManager := events.NewManager(log)

	// Repositories
	clientRepo := clients.NewRepository(db.Conn(), log)
	txRepo := transactions.NewRepository(db.Conn(), log)

	// Reminder job with its WhatsApp sender
	whatsapp := twilio.NewClient(twilio.Config{
		AccountSID: cfg.TwilioSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.WhatsAppFrom,
		To:         cfg.WhatsAppTo,
		BaseURL:    cfg.TwilioBaseURL,
	}, log)

	reminderJob := reminders.NewJob(txRepo, whatsapp, eventManager, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if whatsapp.IsConfigured() {
		if err := sched.AddJob(cfg.ReminderSchedule, reminderJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.ReminderSchedule).Msg("Failed to schedule reminder job")
		}
		log.Info().Str("schedule", cfg.ReminderSchedule).Msg("Reminder job scheduled")
	} else {
		log.Warn().Msg("Twilio credentials not set, reminder job not scheduled")
	}

	// Statement import pipeline
	reconciler := importer.NewReconciler(db, clientRepo, txRepo, log)
	importHandler := importer.NewHandler(reconciler, eventManager, cfg.DefaultCreditPeriod, cfg.ImportHeaderOffset, log)

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:               cfg.Port,
		Log:                log,
		DB:                 db,
		Scheduler:          sched,
		ClientHandler:      clients.NewHandler(clientRepo, log),
		TransactionHandler: transactions.NewHandler(txRepo, log),
		ImportHandler:      importHandler,
		ReminderJob:        reminderJob,
		DevMode:            cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
