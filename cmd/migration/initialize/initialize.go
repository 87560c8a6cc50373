package initialize

import (
	"doacin/config"
	"doacin/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

const migrationTable = "schema_migrations"

// Migrations are written in the subset of SQL shared by sqlite and
// postgres so both drivers run the same source.
var Migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "0001_users",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS users (
					id VARCHAR(64) PRIMARY KEY,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL,
					deleted_at TIMESTAMP NULL,
					name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL,
					national_id VARCHAR(32) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					phone VARCHAR(32) NULL,
					sex VARCHAR(16) NOT NULL DEFAULT '',
					birth_date TIMESTAMP NULL,
					weight DOUBLE PRECISION NULL,
					blood_type VARCHAR(4) NULL,
					is_admin BOOLEAN NOT NULL DEFAULT FALSE,
					external_capibas INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_national_id ON users (national_id)`,
				`CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON users (deleted_at)`,
			},
			Down: []string{`DROP TABLE IF EXISTS users`},
		},
		{
			Id: "0002_collection_points",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS collection_points (
					id VARCHAR(64) PRIMARY KEY,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL,
					deleted_at TIMESTAMP NULL,
					name VARCHAR(255) NOT NULL,
					address VARCHAR(500) NOT NULL,
					email VARCHAR(255) NULL,
					phone VARCHAR(32) NULL,
					maps_link VARCHAR(500) NULL,
					opening_time VARCHAR(8) NULL,
					closing_time VARCHAR(8) NULL,
					type VARCHAR(16) NOT NULL DEFAULT 'fixed',
					latitude DOUBLE PRECISION NULL,
					longitude DOUBLE PRECISION NULL,
					event_start_date TIMESTAMP NULL,
					event_end_date TIMESTAMP NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_collection_points_name ON collection_points (name)`,
				`CREATE INDEX IF NOT EXISTS idx_collection_points_deleted_at ON collection_points (deleted_at)`,
			},
			Down: []string{`DROP TABLE IF EXISTS collection_points`},
		},
		{
			Id: "0003_donations",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS donations (
					id VARCHAR(64) PRIMARY KEY,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL,
					deleted_at TIMESTAMP NULL,
					user_id VARCHAR(64) NOT NULL REFERENCES users (id),
					collection_point_id VARCHAR(64) NOT NULL REFERENCES collection_points (id),
					donation_date TIMESTAMP NOT NULL,
					status VARCHAR(16) NOT NULL DEFAULT 'pending',
					points_earned INTEGER NOT NULL DEFAULT 0,
					validated_by_qr BOOLEAN NOT NULL DEFAULT FALSE,
					notes TEXT NULL,
					confirmed_at TIMESTAMP NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_donations_user_id ON donations (user_id)`,
				`CREATE INDEX IF NOT EXISTS idx_donations_user_status ON donations (user_id, status)`,
				`CREATE INDEX IF NOT EXISTS idx_donations_collection_point_id ON donations (collection_point_id)`,
				`CREATE INDEX IF NOT EXISTS idx_donations_deleted_at ON donations (deleted_at)`,
			},
			Down: []string{`DROP TABLE IF EXISTS donations`},
		},
		{
			Id: "0004_quiz_attempts",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS quiz_attempts (
					id VARCHAR(64) PRIMARY KEY,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL,
					deleted_at TIMESTAMP NULL,
					user_id VARCHAR(64) NOT NULL REFERENCES users (id),
					score INTEGER NOT NULL,
					total INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user_id ON quiz_attempts (user_id)`,
				`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_deleted_at ON quiz_attempts (deleted_at)`,
			},
			Down: []string{`DROP TABLE IF EXISTS quiz_attempts`},
		},
	},
}

func dialect(cfg config.Config) string {
	if cfg.DatabaseDriver == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// InitializeTables applies every pending migration.
func InitializeTables(db *gorm.DB, cfg config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Applying schema migrations", "dialect", dialect(cfg))

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	migrate.SetTable(migrationTable)
	applied, err := migrate.Exec(sqlDB, dialect(cfg), Migrations, migrate.Up)
	if err != nil {
		return log.Err("failed to apply migrations", err)
	}

	log.Info("Table initialization complete", "applied", applied)
	return nil
}

// Rollback reverts the most recent steps migrations.
func Rollback(db *gorm.DB, cfg config.Config, steps int, log logger.Logger) error {
	log = log.Function("Rollback")

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	migrate.SetTable(migrationTable)
	reverted, err := migrate.ExecMax(sqlDB, dialect(cfg), Migrations, migrate.Down, steps)
	if err != nil {
		return log.Err("failed to revert migrations", err, "steps", steps)
	}

	log.Info("Reverted migrations", "reverted", reverted)
	return nil
}
