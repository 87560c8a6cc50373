package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")

	config, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 3000, config.ServerPort)
	assert.Equal(t, DriverSQLite, config.DatabaseDriver)
	assert.Equal(t, "data/doacin.db", config.DatabaseDbPath)
	assert.Equal(t, 24*time.Hour, config.JWTExpiry)
	assert.Equal(t, 100, config.DonationPoints)
	assert.Equal(t, 5*time.Minute, config.CacheTTL)
	assert.False(t, config.CacheEnabled())
	assert.False(t, config.ConectaEnabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("DONATION_POINTS", "150")
	t.Setenv("DATABASE_CACHE_ADDRESS", "localhost")

	config, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8081, config.ServerPort)
	assert.Equal(t, time.Hour, config.JWTExpiry)
	assert.Equal(t, 150, config.DonationPoints)
	assert.True(t, config.CacheEnabled())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := []byte("jwt_secret: from-file\nserver_port: 9000\nlog_format: text\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	config, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "from-file", config.JWTSecret)
	assert.Equal(t, 9000, config.ServerPort)
	assert.Equal(t, "text", config.LogFormat)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	_, err := Load(viper.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:      "secret",
		JWTExpiry:      time.Hour,
		DatabaseDriver: DriverSQLite,
		DatabaseDbPath: "data/test.db",
	}

	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{name: "valid sqlite", mutate: func(c *Config) {}},
		{
			name:     "empty sqlite path",
			mutate:   func(c *Config) { c.DatabaseDbPath = "" },
			errorMsg: "DATABASE_DB_PATH",
		},
		{
			name:     "postgres without host",
			mutate:   func(c *Config) { c.DatabaseDriver = DriverPostgres },
			errorMsg: "DATABASE_HOST",
		},
		{
			name: "valid postgres",
			mutate: func(c *Config) {
				c.DatabaseDriver = DriverPostgres
				c.DatabaseHost = "localhost"
				c.DatabaseUser = "doacin"
				c.DatabaseName = "doacin"
			},
		},
		{
			name:     "unknown driver",
			mutate:   func(c *Config) { c.DatabaseDriver = "mysql" },
			errorMsg: "unsupported database driver",
		},
		{
			name:     "zero expiry",
			mutate:   func(c *Config) { c.JWTExpiry = 0 },
			errorMsg: "JWT_EXPIRY",
		},
		{
			name:     "negative points",
			mutate:   func(c *Config) { c.DonationPoints = -1 },
			errorMsg: "DONATION_POINTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)

			err := config.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestConectaEnabled(t *testing.T) {
	config := Config{
		ConectaBaseURL:  "https://gamificacao.example",
		ConectaAuthURL:  "https://auth.example/token",
		ConectaUsername: "service",
	}
	assert.False(t, config.ConectaEnabled())

	config.ConectaPassword = "secret"
	assert.True(t, config.ConectaEnabled())
}
