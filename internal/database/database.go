package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"doacin/config"
	logg "doacin/internal/logger"

	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CacheClient valkey.Client

// Cache holds one client per logical valkey database. Every field is nil
// when no cache server is configured; CacheBuilder treats nil as a miss.
type Cache struct {
	General   CacheClient
	Dashboard CacheClient
	Locals    CacheClient
}

const (
	generalCacheDB   = 0
	dashboardCacheDB = 1
	localsCacheDB    = 2
)

type DB struct {
	SQL   *gorm.DB
	Cache Cache
	log   logg.Logger
}

func New(config config.Config) (DB, error) {
	log := logg.New("database").Function("New")

	log.Info("Initializing database", "driver", config.DatabaseDriver)
	db := &DB{log: log}

	err := db.initializeDB(config)
	if err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	if !config.CacheEnabled() {
		log.Info("Cache not configured, running without valkey")
		return *db, nil
	}

	err = db.initializeCacheDB(config)
	if err != nil {
		_ = db.Close()
		return DB{}, log.Err("failed to initialize cache database", err)
	}

	return *db, nil
}

func TXDefer(tx *gorm.DB, log logg.Logger) {
	if tx.Error != nil {
		log.Er("failed to commit transaction", tx.Error)
		tx.Rollback()
	} else {
		err := tx.Commit().Error
		if err != nil {
			log.Er("failed to commit transaction", err)
		} else {
			log.Debug("committed transaction")
		}
	}
}

func gormConfig(cfg config.Config) *gorm.Config {
	level := logger.Warn
	if logg.ParseLevel(cfg.LogLevel) == slog.LevelDebug {
		level = logger.Info
	}

	gormLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	return &gorm.Config{
		Logger:                                   gormLogger,
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		CreateBatchSize:                          100,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}
}

func (s *DB) initializeDB(cfg config.Config) error {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return s.initializePostgresDB(gormConfig(cfg), cfg)
	case "", config.DriverSQLite:
		return s.initializeSQLiteDB(gormConfig(cfg), cfg)
	default:
		return s.log.Function("initializeDB").
			Error("unsupported database driver", "driver", cfg.DatabaseDriver)
	}
}

func (s *DB) initializeSQLiteDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializeSQLiteDB")

	dbPath := config.DatabaseDbPath
	if dbPath == "" {
		return log.Error("database path is empty", "dbPath", dbPath)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		log.Debug("Creating database directory", "dir", dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return log.Err("failed to create database directory", err, "dir", dir)
		}
	}

	log.Info("Connecting with GORM", "dbPath", dbPath)
	db, err := gorm.Open(sqlite.Open(sqliteDSN(dbPath)), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	return s.configurePool(db, log)
}

func sqliteDSN(dbPath string) string {
	if dbPath == ":memory:" {
		return dbPath
	}
	return dbPath + "?_foreign_keys=on&_busy_timeout=5000"
}

func (s *DB) initializePostgresDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializePostgresDB")

	if config.DatabaseHost == "" || config.DatabaseName == "" {
		return log.Error("postgres host or database name is empty",
			"host", config.DatabaseHost, "name", config.DatabaseName)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
	)

	log.Info("Connecting with GORM", "host", config.DatabaseHost, "name", config.DatabaseName)
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	return s.configurePool(db, log)
}

func (s *DB) configurePool(db *gorm.DB, log logg.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping database through GORM", err)
	}

	log.Info("Successfully connected with GORM")
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s.SQL = db

	return nil
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	if config.DatabaseCacheAddress == "" || config.DatabaseCachePort == 0 {
		return log.Error("cache address or port is empty",
			"address", config.DatabaseCacheAddress, "port", config.DatabaseCachePort)
	}

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)
	clients := []struct {
		target *CacheClient
		db     int
		name   string
	}{
		{&s.Cache.General, generalCacheDB, "General"},
		{&s.Cache.Dashboard, dashboardCacheDB, "Dashboard"},
		{&s.Cache.Locals, localsCacheDB, "Locals"},
	}

	for _, c := range clients {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{address},
			SelectDB:    c.db,
		})
		if err != nil {
			return log.Err("failed to create cache client", err, "cache", c.name, "address", address)
		}
		*c.target = client
		log.Info("Connected to cache", "cache", c.name, "db", c.db)
	}

	return nil
}

func (s *DB) Close() (err error) {
	if s.SQL != nil {
		sqlDB, dbErr := s.SQL.DB()
		if dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				err = s.log.Err("failed to close database", closeErr)
			}
		}
	}

	for _, client := range []CacheClient{s.Cache.General, s.Cache.Dashboard, s.Cache.Locals} {
		if client != nil {
			client.Close()
		}
	}

	return err
}

func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return s.SQL.WithContext(ctx)
}

func (s *DB) FlushAllCaches() error {
	log := s.log.Function("FlushAllCaches")
	log.Info("Flushing all cache databases")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cacheClients := []struct {
		client CacheClient
		name   string
	}{
		{s.Cache.General, "General"},
		{s.Cache.Dashboard, "Dashboard"},
		{s.Cache.Locals, "Locals"},
	}

	for _, cache := range cacheClients {
		if cache.client != nil {
			if err := cache.client.Do(ctx, cache.client.B().Flushdb().Build()).Error(); err != nil {
				return log.Err("failed to flush cache database", err, "cache", cache.name)
			}
			log.Info("Successfully flushed cache database", "cache", cache.name)
		}
	}

	return nil
}
