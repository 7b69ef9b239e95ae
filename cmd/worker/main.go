// Package main is the entry point for the fieldstock background
// worker. It runs the feed synchronization loop without the HTTP API,
// for deployments that split the control surface from the sync work.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/domain/technician"
	"fieldstock/internal/infrastructure/storage/postgres"
	"fieldstock/internal/sync"
	"fieldstock/internal/sync/feed"
	"fieldstock/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting fieldstock worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	technicianRepo := postgres.NewTechnicianRepo(txManager)
	workOrderRepo := postgres.NewWorkOrderRepo(txManager)
	holidayRepo := postgres.NewHolidayRepo(txManager)
	overtimeRepo := postgres.NewOvertimeRepo(txManager)

	archive, err := postgres.NewFeedArchive(txManager)
	if err != nil {
		log.Fatalw("failed to create feed archive", "error", err)
	}

	feedClient := feed.NewClient(feed.Config{
		BaseURL:     mustEnv("FEED_URL"),
		Token:       mustEnv("FEED_TOKEN"),
		TokenHeader: getEnv("FEED_TOKEN_HEADER", ""),
		Timeout:     getEnvDuration("FEED_TIMEOUT", 30*time.Second),
	}, log)

	orchestrator := sync.NewOrchestrator(
		feedClient, workOrderRepo, overtimeRepo,
		technician.NewResolver(technicianRepo, log),
		holiday.NewService(holidayRepo),
		txManager, archive, log)

	scheduler := sync.NewScheduler(orchestrator,
		getEnvDuration("SYNC_INTERVAL", sync.DefaultInterval), log)
	if err := scheduler.Start(); err != nil {
		log.Fatalw("failed to start sync scheduler", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	scheduler.Stop()
	log.Info("worker stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
