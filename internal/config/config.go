package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultDSN           = "host=localhost user=postgres password=postgres dbname=inventory port=5432 sslmode=disable"
	defaultCORSOrigins   = "http://localhost:5173"
	defaultAdminPassword = "admin123"
)

// Startup integrity check modes.
const (
	StockCheckVerify  = "verify"
	StockCheckRebuild = "rebuild"
	StockCheckOff     = "off"
)

// Database dialects accepted by DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPPort             string
	DatabaseDriver       string
	DatabaseDSN          string
	JWTSecret            string
	TokenTTL             time.Duration
	CORSOrigins          string
	LogLevel             string
	LowStockThreshold    decimal.Decimal
	DefaultAdminPassword string
	MaxUploadSizeBytes   int64
	StockCheckOnStartup  string
}

// Load reads the configuration from the environment, after merging an
// optional .env file. It exits the process on invalid settings.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file loaded, using process environment:", err)
	}
	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	for _, w := range cfg.Warnings() {
		log.Println("[WARN]", w)
	}
	return cfg
}

// FromEnv builds a Config from environment variables and defaults.
// It only fails on values that cannot be parsed; see Validate for the rest.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:       strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseDSN:          getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		CORSOrigins:          getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", defaultAdminPassword),
		StockCheckOnStartup:  strings.ToLower(getEnv("STOCK_CHECK_ON_STARTUP", StockCheckVerify)),
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	threshold, err := decimal.NewFromString(getEnv("LOW_STOCK_THRESHOLD", "10"))
	if err != nil {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err)
	}
	cfg.LowStockThreshold = threshold

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE_BYTES: %w", err)
	}
	cfg.MaxUploadSizeBytes = maxUpload

	return cfg, nil
}

// Validate rejects settings the server cannot safely run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}
	switch c.DatabaseDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER %q is not one of postgres, mysql, sqlite", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is not set")
	}
	switch c.StockCheckOnStartup {
	case StockCheckVerify, StockCheckRebuild, StockCheckOff:
	default:
		return fmt.Errorf("STOCK_CHECK_ON_STARTUP %q is not one of verify, rebuild, off", c.StockCheckOnStartup)
	}
	if c.LowStockThreshold.IsNegative() {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.MaxUploadSizeBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_BYTES must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// Warnings lists development defaults still in use.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDriver == DriverPostgres && c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN uses the default value, set your own connection for production")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if c.DefaultAdminPassword == defaultAdminPassword {
		out = append(out, "DEFAULT_ADMIN_PASSWORD uses the default value, change the admin password after first login")
	}
	return out
}

// CORSOriginList splits CORSOrigins on commas and trims each entry.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
