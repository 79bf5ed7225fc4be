package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pitaka/internal/config"
	"pitaka/internal/database"
	"pitaka/internal/logger"
	"pitaka/internal/notify"
	"pitaka/internal/services"
)

// The scheduler runs the background sweeps in-process against the same
// database as the API. It is an alternative to calling the internal task
// endpoints from cron; run one or the other, not both.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	var notifier notify.Notifier = notify.NoopNotifier{}
	if appConfig.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(appConfig.WebhookURL)
	}

	db := dbManager.DB()
	ledgerService := services.NewLedgerService(db)
	creditCardService := services.NewCreditCardService(db, ledgerService)
	recurringService := services.NewRecurringService(db, notifier)
	statementService := services.NewStatementService(db, ledgerService, creditCardService, notifier)

	ticker := time.NewTicker(appConfig.SweepInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("Scheduler started, sweep interval %s", appConfig.SweepInterval)

	// Run once at startup so a freshly deployed scheduler doesn't wait a
	// full interval before catching up.
	sweep(recurringService, statementService)

	for {
		select {
		case <-ticker.C:
			sweep(recurringService, statementService)
		case sig := <-quit:
			log.Infof("Received signal %s, shutting down", sig)
			return nil
		}
	}
}

func sweep(recurring services.RecurringServicer, statements services.StatementServicer) {
	log := logger.Get()
	now := time.Now()

	processed, err := recurring.Sweep(now)
	if err != nil {
		log.Errorw("recurring sweep failed", "error", err.Error())
	} else {
		log.Infow("recurring sweep completed", "processed", processed)
	}

	created, err := statements.CheckDueStatements(now)
	if err != nil {
		log.Errorw("statement due check failed", "error", err.Error())
	} else {
		log.Infow("statement due check completed", "reminders", created)
	}
}
