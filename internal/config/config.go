package config

import (
	"os"
	"strconv"
	"time"

	"fitgrid/internal/cache"
	"fitgrid/internal/database"
	"fitgrid/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Timezone is the wall-clock zone for all recurrence arithmetic.
	// Timestamps are stored as absolute instants; this zone is applied only
	// where day/week/month stepping happens.
	Timezone string

	// HorizonDays bounds how far ahead occurrences are pre-generated.
	HorizonDays int

	// TopupCron is the worker schedule for the rolling horizon top-up pass.
	TopupCron string

	Database      database.Config
	NATS          messaging.Config
	Elasticsearch ElasticsearchConfig
	Redis         cache.Config
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Timezone:    getEnv("TIMEZONE", "Europe/Warsaw"),
		HorizonDays: getEnvInt("HORIZON_DAYS", 30),
		TopupCron:   getEnv("TOPUP_CRON", "@hourly"),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "fitgrid"),
			Password:           getEnv("DB_PASSWORD", "fitgrid123"),
			DBName:             getEnv("DB_NAME", "fitgrid"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "fitgrid"),
			ClientID:  getEnv("NATS_CLIENT_ID", "fitgrid-api"),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			TTL:      time.Duration(getEnvInt("REDIS_SCHEDULE_TTL_SEC", 30)) * time.Second,
		},
	}
}

// Location resolves the configured timezone, falling back to UTC when the
// zone name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
