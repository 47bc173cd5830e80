package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Import        ImportConfig
	Observability ObservabilityConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// Enabled turns on the Postgres account store. Without it the importer
	// runs without account matching or cross-file dedup.
	Enabled bool
}

// ImportConfig bounds a single statement import.
type ImportConfig struct {
	MaxTransactions int
	SampleMin       int
	SampleMax       int
	DefaultCurrency string
	MaxUploadBytes  int64
	BatchWorkers    int
	InboxDir        string
	InboxSchedule   string
	MerchantRules   string
	ArchiveDir      string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	ServiceName    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "budgetbuddy"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			Enabled:  getEnvAsBool("POSTGRES_ENABLED", false),
		},
		Import: ImportConfig{
			MaxTransactions: getEnvAsInt("IMPORT_MAX_TRANSACTIONS", 10000),
			SampleMin:       getEnvAsInt("IMPORT_ACCOUNT_SAMPLE_MIN", 3),
			SampleMax:       getEnvAsInt("IMPORT_ACCOUNT_SAMPLE_MAX", 20),
			DefaultCurrency: getEnv("IMPORT_DEFAULT_CURRENCY", "USD"),
			MaxUploadBytes:  int64(getEnvAsInt("IMPORT_MAX_UPLOAD_BYTES", 20<<20)),
			BatchWorkers:    getEnvAsInt("IMPORT_BATCH_WORKERS", 4),
			InboxDir:        getEnv("IMPORT_INBOX_DIR", ""),
			InboxSchedule:   getEnv("IMPORT_INBOX_SCHEDULE", "@every 5m"),
			MerchantRules:   getEnv("IMPORT_MERCHANT_RULES", ""),
			ArchiveDir:      getEnv("IMPORT_ARCHIVE_DIR", ""),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "budgetbuddy-import"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Import.MaxTransactions <= 0 {
		return nil, errors.New("IMPORT_MAX_TRANSACTIONS must be positive")
	}
	if cfg.Import.SampleMin <= 0 || cfg.Import.SampleMax < cfg.Import.SampleMin {
		return nil, fmt.Errorf("invalid account sample window %d..%d", cfg.Import.SampleMin, cfg.Import.SampleMax)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// SlogLevel maps the configured level name to a slog.Level, defaulting to info.
func (c *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
