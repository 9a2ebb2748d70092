package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	Environment    string
	Timezone       string // single IANA zone shared by period math and the scheduler

	ReminderTimes [3]string // HH:MM wall-clock times for the three reminder slots
	CleanupTime   string    // HH:MM for retention cleanup

	NotificationRetentionDays int
	ReminderConcurrency       int
	StoreTimeout              time.Duration

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPListenAddr = getEnv("HTTP_LISTEN_ADDR", ":8080")
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.Timezone = getEnv("TIMEZONE", "UTC")
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	times := strings.Split(getEnv("REMINDER_TIMES", "08:00,13:00,20:00"), ",")
	if len(times) != 3 {
		return nil, fmt.Errorf("REMINDER_TIMES must list exactly 3 comma-separated HH:MM times, got %d", len(times))
	}
	for i, t := range times {
		cfg.ReminderTimes[i] = strings.TrimSpace(t)
	}

	cfg.CleanupTime = getEnv("CLEANUP_TIME", "02:30")

	var err error
	cfg.NotificationRetentionDays, err = getEnvInt("NOTIFICATION_RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}

	cfg.ReminderConcurrency, err = getEnvInt("REMINDER_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	if cfg.ReminderConcurrency < 1 {
		return nil, fmt.Errorf("REMINDER_CONCURRENCY must be at least 1")
	}

	timeoutSecs, err := getEnvInt("STORE_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.StoreTimeout = time.Duration(timeoutSecs) * time.Second

	cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	cfg.DBMaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 25)
	if err != nil {
		return nil, err
	}
	cfg.DBConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
