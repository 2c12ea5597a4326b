package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "servibook-backend/internal/api/http"
	"servibook-backend/internal/config"
	"servibook-backend/internal/jobs"
	"servibook-backend/internal/logger"
	"servibook-backend/internal/payment"
	"servibook-backend/internal/policy"
	"servibook-backend/internal/repository/postgres"
	"servibook-backend/internal/scheduler"
	"servibook-backend/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Servibook Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize refund policy table from config (falls back to defaults)
	table, err := cfg.PolicyTable()
	if err != nil {
		log.Fatalf("Invalid policy configuration: %v", err)
	}
	calc := policy.NewCalculator(table)

	// Initialize Payment Processor
	processor := payment.NewStripeProcessor(cfg.Payment.StripeKey, cfg.Payment.WebhookSecret)

	// Initialize Services
	clock := service.RealClock()
	refundSvc := service.NewRefundService(store.Refunds, processor)
	requestSvc := service.NewRequestService(store.Requests, store.Quotes, table, clock)
	quoteSvc := service.NewQuoteService(store.Quotes, store, clock)
	bookingSvc := service.NewBookingService(store.Bookings, store.Refunds, store, calc, refundSvc, clock)

	// Start scheduler (advisory expiry sweep + refund retries)
	jobRunner := jobs.NewJobRunner(store, refundSvc, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP API
	router := mux.NewRouter()
	httpapi.NewHandler(requestSvc, quoteSvc, bookingSvc, refundSvc).Register(router)
	httpapi.NewWebhookHandler(processor, refundSvc).Register(router)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server stopped", "error", err)
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
