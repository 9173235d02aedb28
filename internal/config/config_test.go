package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test; t.Setenv restores them.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_NAME", "DATABASE_URL",
		"JWT_EXPIRATION_MINUTES", "REDIS_ADDR", "SMTP_HOST", "SWEEP_SCHEDULE")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "@tcp(localhost:3306)/sehat_sathi")
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Mailer.Host)
	assert.Equal(t, "*/15 * * * *", cfg.SweepSchedule)
}

func TestLoadConfigPostgres(t *testing.T) {
	unsetEnv(t, "DB_PORT", "DATABASE_URL")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_NAME", "clinic")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "dbname=clinic")
	assert.Contains(t, cfg.Database.DSN, "port=5432")
}

func TestLoadConfigDatabaseURLOverridesDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.DSN)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"driver", "DB_DRIVER", "sqlite"},
		{"jwt expiration", "JWT_EXPIRATION_MINUTES", "soon"},
		{"non-positive jwt expiration", "JWT_EXPIRATION_MINUTES", "0"},
		{"smtp port", "SMTP_PORT", "smtp"},
		{"redis db", "REDIS_DB", "first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
