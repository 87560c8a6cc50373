package seed

import (
	"path/filepath"
	"testing"

	"doacin/cmd/migration/initialize"
	"doacin/config"
	"doacin/internal/auth"
	"doacin/internal/logger"
	. "doacin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func migratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	cfg := config.Config{DatabaseDriver: config.DriverSQLite}
	require.NoError(t, initialize.InitializeTables(db, cfg, logger.New("test")))
	return db
}

func TestSeed_Idempotent(t *testing.T) {
	db := migratedDB(t)
	cfg := config.Config{SeedAdminEmail: "Admin@Doacin.Local", SeedAdminPassword: "admin-pass"}

	require.NoError(t, Seed(db, cfg, logger.New("test")))
	require.NoError(t, Seed(db, cfg, logger.New("test")))

	var points int64
	require.NoError(t, db.Model(&CollectionPoint{}).Count(&points).Error)
	assert.Equal(t, int64(len(Centres)), points)

	var admin User
	require.NoError(t, db.First(&admin, "national_id = ?", adminNationalID).Error)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "admin@doacin.local", admin.Email)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, "admin-pass"))
}

func TestSeed_SkipsAdminWithoutPassword(t *testing.T) {
	db := migratedDB(t)

	require.NoError(t, Seed(db, config.Config{}, logger.New("test")))

	var users int64
	require.NoError(t, db.Model(&User{}).Count(&users).Error)
	assert.Zero(t, users)
}
