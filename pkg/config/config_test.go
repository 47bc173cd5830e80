package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Import.MaxTransactions)
	assert.Equal(t, 3, cfg.Import.SampleMin)
	assert.Equal(t, 20, cfg.Import.SampleMax)
	assert.Equal(t, "USD", cfg.Import.DefaultCurrency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("IMPORT_MAX_TRANSACTIONS", "50")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("IMPORT_ARCHIVE_DIR", "/var/lib/budgetbuddy/statements")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Import.MaxTransactions)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "/var/lib/budgetbuddy/statements", cfg.Import.ArchiveDir)
}

func TestLoad_InvalidSampleWindow(t *testing.T) {
	t.Setenv("IMPORT_ACCOUNT_SAMPLE_MIN", "10")
	t.Setenv("IMPORT_ACCOUNT_SAMPLE_MAX", "5")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			c := LoggingConfig{Level: in}
			assert.Equal(t, want, c.SlogLevel())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", c.DSN())
}
