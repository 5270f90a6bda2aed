package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TokenTTL)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "php", cfg.Stripe.Currency)
	assert.False(t, cfg.OpenFGA.Enabled)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SESSION_TOKEN_TTL", "2h")
	t.Setenv("OPENFGA_ENABLED", "true")
	t.Setenv("STRIPE_CURRENCY", "USD")

	cfg := NewConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Session.TokenTTL)
	assert.True(t, cfg.OpenFGA.Enabled)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
}

func TestNewConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("SESSION_TOKEN_TTL", "forever")
	t.Setenv("OPENFGA_ENABLED", "maybe")

	cfg := NewConfig()

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TokenTTL)
	assert.False(t, cfg.OpenFGA.Enabled)
}

func TestDatabaseConfig_ConnectionStrings(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "ministry", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ministry sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/ministry?sslmode=disable", db.URL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "production requires secret",
			mutate:  func(c *Config) { c.Server.Environment = "production"; c.Session.Secret = "short" },
			wantErr: ErrMissingSessionSecret,
		},
		{
			name: "production with long secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Session.Secret = "0123456789abcdef0123456789abcdef"
			},
		},
		{
			name:    "unknown storage type",
			mutate:  func(c *Config) { c.Storage.Type = "ftp" },
			wantErr: ErrInvalidStorageType,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Storage.Type = "s3" },
			wantErr: ErrMissingS3Bucket,
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Ministry.Timezone = "Mars/Olympus" },
			wantErr: ErrInvalidTimezone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Ministry.Timezone = "UTC"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("MINISTRY_TEST_ONLY_PORT=9999\nMINISTRY_TIMEZONE=UTC\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("MINISTRY_TEST_ONLY_PORT")
		os.Unsetenv("MINISTRY_TIMEZONE")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9999", os.Getenv("MINISTRY_TEST_ONLY_PORT"))
	assert.Equal(t, "UTC", cfg.Ministry.Timezone)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("MINISTRY_TIMEZONE", "UTC")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
