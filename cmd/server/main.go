// Package main is the entry point for the fieldstock API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/domain/overtime"
	"fieldstock/internal/domain/technician"
	v1 "fieldstock/internal/infrastructure/http/v1"
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
	log.Info("starting fieldstock server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	technicianRepo := postgres.NewTechnicianRepo(txManager)
	workOrderRepo := postgres.NewWorkOrderRepo(txManager)
	holidayRepo := postgres.NewHolidayRepo(txManager)
	overtimeRepo := postgres.NewOvertimeRepo(txManager)

	archive, err := postgres.NewFeedArchive(txManager)
	if err != nil {
		log.Fatalw("failed to create feed archive", "error", err)
	}

	// --- Domain services ---
	holidayService := holiday.NewService(holidayRepo)
	overtimeService := overtime.NewService(
		overtimeRepo, workOrderRepo, technicianRepo, holidayService, txManager, log)
	resolver := technician.NewResolver(technicianRepo, log)

	// --- Synchronization ---
	feedClient := feed.NewClient(feed.Config{
		BaseURL:     mustEnv("FEED_URL"),
		Token:       mustEnv("FEED_TOKEN"),
		TokenHeader: getEnv("FEED_TOKEN_HEADER", ""),
		Timeout:     getEnvDuration("FEED_TIMEOUT", 30*time.Second),
	}, log)

	orchestrator := sync.NewOrchestrator(
		feedClient, workOrderRepo, overtimeRepo, resolver, holidayService,
		txManager, archive, log)

	scheduler := sync.NewScheduler(orchestrator,
		getEnvDuration("SYNC_INTERVAL", sync.DefaultInterval), log)
	defer scheduler.Stop()

	if getEnv("SYNC_AUTOSTART", "true") == "true" {
		if err := scheduler.Start(); err != nil {
			log.Fatalw("failed to start sync scheduler", "error", err)
		}
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		Scheduler:       scheduler,
		OvertimeService: overtimeService,
		HolidayService:  holidayService,
		TechnicianRepo:  technicianRepo,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	scheduler.Stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
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
