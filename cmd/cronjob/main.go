package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"servibook-backend/internal/config"
	"servibook-backend/internal/jobs"
	"servibook-backend/internal/logger"
	"servibook-backend/internal/payment"
	"servibook-backend/internal/repository/postgres"
	"servibook-backend/internal/scheduler"
	"servibook-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-quotes', 'retry-failed-refunds', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Servibook Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Repositories and Services
	store := postgres.NewStore(db)
	processor := payment.NewStripeProcessor(cfg.Payment.StripeKey, cfg.Payment.WebhookSecret)
	refundSvc := service.NewRefundService(store.Refunds, processor)

	jobRunner := jobs.NewJobRunner(store, refundSvc, cfg)

	// Run a single job and exit if requested
	if *runOnce != "" {
		switch *runOnce {
		case "expire-quotes":
			jobRunner.ExpireQuotes()
		case "retry-failed-refunds":
			jobRunner.RetryFailedRefunds()
		case "all":
			jobRunner.RunAll()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		return
	}

	// Otherwise run the scheduler until interrupted
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
}
