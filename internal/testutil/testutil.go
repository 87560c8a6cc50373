// Package testutil builds migrated throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"doacin/cmd/migration/initialize"
	"doacin/config"
	"doacin/internal/database"
	"doacin/internal/logger"

	"github.com/stretchr/testify/require"
)

const JWTSecret = "test-secret"

func Config(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		GeneralVersion: "test",
		ServerEnv:      "test",
		LogLevel:       "error",
		DatabaseDriver: config.DriverSQLite,
		DatabaseDbPath: filepath.Join(t.TempDir(), "doacin.db"),
		CacheTTL:       time.Minute,
		JWTSecret:      JWTSecret,
		JWTExpiry:      time.Hour,
		DonationPoints: 100,
	}
}

// NewDB opens a file-backed sqlite database under t.TempDir with every
// migration applied. It is closed when the test ends.
func NewDB(t *testing.T) database.DB {
	t.Helper()
	return NewDBWithConfig(t, Config(t))
}

func NewDBWithConfig(t *testing.T, cfg config.Config) database.DB {
	t.Helper()

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, initialize.InitializeTables(db.SQL, cfg, logger.New("testutil")))
	return db
}
