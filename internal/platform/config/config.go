package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers selectable through DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     slog.Level

	DBDriver    string
	DatabaseURL string
	SQLitePath  string
	AutoMigrate bool

	JWTSecret         string
	JWTIssuer         string
	JWTExpiryDuration time.Duration

	RateLimit          string // ulule limiter format, e.g. "100-M"
	CORSAllowedOrigins []string
	BalanceCacheSize   int
	AuditNATSURL       string // empty disables audit fan-out
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "bookkeeping.db")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "bookkeeping-engine")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("BALANCE_CACHE_SIZE", 1024)
	v.SetDefault("AUDIT_NATS_URL", "")
	v.AutomaticEnv()

	cfg := &Config{
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		DBDriver:         strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:      v.GetString("PGSQL_URL"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		AutoMigrate:      v.GetBool("AUTO_MIGRATE"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		RateLimit:        v.GetString("RATE_LIMIT"),
		BalanceCacheSize: v.GetInt("BALANCE_CACHE_SIZE"),
		AuditNATSURL:     v.GetString("AUDIT_NATS_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT environment variable not set, using default", slog.String("port", cfg.Port))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL '%s': %w", v.GetString("LOG_LEVEL"), err)
	}

	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil || jwtExpiryDuration <= 0 {
		jwtExpiryDuration = time.Hour
		slog.Warn("Invalid value for JWT_EXPIRY_DURATION, using default",
			slog.String("value", jwtExpiryStr), slog.String("default", jwtExpiryDuration.String()))
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction {
		secret, err := utils.GenerateSigningSecret(32)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		slog.Warn("JWT_SECRET not set. Using a random secret for this process; tokens will not survive a restart.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that prevents the service from starting.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when DB_DRIVER is '%s'", DriverPostgres)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER is '%s'", DriverSQLite)
		}
	case DriverMemory:
		if c.IsProduction {
			return fmt.Errorf("DB_DRIVER '%s' is not allowed in production", DriverMemory)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER '%s' (want %s, %s or %s)", c.DBDriver, DriverPostgres, DriverSQLite, DriverMemory)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.BalanceCacheSize <= 0 {
		return fmt.Errorf("BALANCE_CACHE_SIZE must be positive, got %d", c.BalanceCacheSize)
	}
	return nil
}

// StoreDSN returns the connection string of the configured SQL driver, "" for memory.
func (c *Config) StoreDSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return c.DatabaseURL
	case DriverSQLite:
		return c.SQLitePath
	}
	return ""
}
