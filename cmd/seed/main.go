// Package main provides a CLI tool that applies the database schema
// and seeds the holiday calendar from a YAML file.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/infrastructure/storage/postgres"
	"fieldstock/pkg/logger"
)

type holidayFile struct {
	Holidays []struct {
		Day   string `yaml:"day"`
		Label string `yaml:"label"`
	} `yaml:"holidays"`
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	path := getEnv("HOLIDAYS_FILE", "holidays.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Infow("no holidays file, skipping calendar seed", "path", path)
		return
	}

	created, skipped, err := seedHolidays(ctx, pool, path)
	if err != nil {
		log.Fatalw("failed to seed holidays", "error", err)
	}
	log.Infow("holiday calendar seeded", "created", created, "skipped", skipped)
}

// seedHolidays loads the YAML calendar and inserts each day, skipping
// days already present.
func seedHolidays(ctx context.Context, pool *postgres.Pool, path string) (created, skipped int, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", path, err)
	}

	var file holidayFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", path, err)
	}

	repo := postgres.NewHolidayRepo(postgres.NewTxManager(pool))
	service := holiday.NewService(repo)

	for _, entry := range file.Holidays {
		day, err := time.ParseInLocation("2006-01-02", entry.Day, time.Local)
		if err != nil {
			return created, skipped, fmt.Errorf("invalid day %q: %w", entry.Day, err)
		}

		err = service.Create(ctx, &holiday.Holiday{Day: day, Label: entry.Label})
		switch {
		case err == nil:
			created++
		case apperror.IsDuplicate(err):
			skipped++
		default:
			return created, skipped, err
		}
	}
	return created, skipped, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
