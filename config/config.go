package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is deliberately flat and comparable; app validation compares it
// against the zero value.
type Config struct {
	GeneralVersion string `mapstructure:"general_version"`

	ServerPort        int    `mapstructure:"server_port"`
	ServerEnv         string `mapstructure:"server_env"`
	ServerCorsOrigins string `mapstructure:"server_cors_origins"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	DatabaseDriver   string `mapstructure:"database_driver"`
	DatabaseDbPath   string `mapstructure:"database_db_path"`
	DatabaseHost     string `mapstructure:"database_host"`
	DatabasePort     int    `mapstructure:"database_port"`
	DatabaseUser     string `mapstructure:"database_user"`
	DatabasePassword string `mapstructure:"database_password"`
	DatabaseName     string `mapstructure:"database_name"`

	DatabaseCacheAddress string        `mapstructure:"database_cache_address"`
	DatabaseCachePort    int           `mapstructure:"database_cache_port"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTExpiry time.Duration `mapstructure:"jwt_expiry"`

	DonationPoints int `mapstructure:"donation_points"`

	ConectaBaseURL       string        `mapstructure:"conecta_base_url"`
	ConectaAuthURL       string        `mapstructure:"conecta_auth_url"`
	ConectaClientID      string        `mapstructure:"conecta_client_id"`
	ConectaUsername      string        `mapstructure:"conecta_username"`
	ConectaPassword      string        `mapstructure:"conecta_password"`
	ConectaChallengeID   string        `mapstructure:"conecta_challenge_id"`
	ConectaRequirementID string        `mapstructure:"conecta_requirement_id"`
	ConectaTimeout       time.Duration `mapstructure:"conecta_timeout"`

	SeedAdminEmail    string `mapstructure:"seed_admin_email"`
	SeedAdminPassword string `mapstructure:"seed_admin_password"`
}

var defaults = map[string]any{
	"general_version":        "0.1.0",
	"server_port":            3000,
	"server_env":             "development",
	"server_cors_origins":    "*",
	"log_level":              "info",
	"log_format":             "json",
	"database_driver":        DriverSQLite,
	"database_db_path":       "data/doacin.db",
	"database_host":          "",
	"database_port":          5432,
	"database_user":          "",
	"database_password":      "",
	"database_name":          "",
	"database_cache_address": "",
	"database_cache_port":    6379,
	"cache_ttl":              5 * time.Minute,
	"jwt_secret":             "",
	"jwt_expiry":             24 * time.Hour,
	"donation_points":        100,
	"conecta_base_url":       "",
	"conecta_auth_url":       "",
	"conecta_client_id":      "app-recife",
	"conecta_username":       "",
	"conecta_password":       "",
	"conecta_challenge_id":   "",
	"conecta_requirement_id": "",
	"conecta_timeout":        10 * time.Second,
	"seed_admin_email":       "admin@doacin.local",
	"seed_admin_password":    "",
}

// InitConfig reads defaults, an optional config.yaml in the working
// directory or ./config, and environment variables (SERVER_PORT,
// JWT_SECRET, ...), in increasing priority.
func InitConfig() (Config, error) {
	return Load(viper.New())
}

func Load(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}

	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}

	if c.DonationPoints < 0 {
		return errors.New("DONATION_POINTS must not be negative")
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseDbPath == "" {
			return errors.New("DATABASE_DB_PATH is required for sqlite")
		}
	case DriverPostgres:
		if c.DatabaseHost == "" || c.DatabaseUser == "" || c.DatabaseName == "" {
			return errors.New("DATABASE_HOST, DATABASE_USER and DATABASE_NAME are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	return nil
}

// ConectaEnabled reports whether enough settings exist to talk to the
// external gamification service.
func (c Config) ConectaEnabled() bool {
	return c.ConectaBaseURL != "" && c.ConectaAuthURL != "" &&
		c.ConectaUsername != "" && c.ConectaPassword != ""
}

// CacheEnabled reports whether a valkey server is configured.
func (c Config) CacheEnabled() bool {
	return c.DatabaseCacheAddress != "" && c.DatabaseCachePort != 0
}

func (c Config) IsDevelopment() bool {
	return c.ServerEnv == "development"
}
