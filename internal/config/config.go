package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Env      Environment `envconfig:"ENV" default:"development"`
	LogLevel string      `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool        `envconfig:"DEBUG" default:"false"`

	// Application
	App AppConfig

	// Server
	Server ServerConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Inspection history
	History HistoryConfig

	// Page capture
	Capture CaptureConfig

	// Rate Limits
	RateLimits RateLimitConfig

	// Security
	Security SecurityConfig
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"locateflow"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"APP_LOG_LEVEL" default:"info"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	MaxRequestSize  int64         `envconfig:"SERVER_MAX_REQUEST_SIZE" default:"10485760"` // 10MB
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"locateflow"`
	Password        string        `envconfig:"DB_PASSWORD" default:""`
	Database        string        `envconfig:"DB_NAME" default:"locateflow"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"1m"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	Host         string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port         int           `envconfig:"REDIS_PORT" default:"6379"`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"5"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	CacheTTL     time.Duration `envconfig:"REDIS_CACHE_TTL" default:"15m"`
}

// Addr returns Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HistoryConfig holds inspection history settings
type HistoryConfig struct {
	Enabled       bool          `envconfig:"HISTORY_ENABLED" default:"true"`
	Retention     time.Duration `envconfig:"HISTORY_RETENTION" default:"720h"` // 30 days
	MaxPageSize   int           `envconfig:"HISTORY_MAX_PAGE_SIZE" default:"100"`
	CleanupPeriod time.Duration `envconfig:"HISTORY_CLEANUP_PERIOD" default:"1h"`
}

// CaptureConfig holds browser page capture settings
type CaptureConfig struct {
	Enabled     bool          `envconfig:"CAPTURE_ENABLED" default:"false"`
	Browser     string        `envconfig:"CAPTURE_BROWSER" default:"chromium"`
	Headless    bool          `envconfig:"CAPTURE_HEADLESS" default:"true"`
	NavTimeout  time.Duration `envconfig:"CAPTURE_NAV_TIMEOUT" default:"30s"`
	WaitState   string        `envconfig:"CAPTURE_WAIT_STATE" default:"networkidle"`
	MaxPageSize int64         `envconfig:"CAPTURE_MAX_PAGE_SIZE" default:"5242880"` // 5MB
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMin int  `envconfig:"RATE_LIMIT_REQUESTS_PER_MIN" default:"60"`
	BurstSize      int  `envconfig:"RATE_LIMIT_BURST_SIZE" default:"10"`
}

// SecurityConfig holds security settings
type SecurityConfig struct {
	// API Keys
	APIKeyHeader string `envconfig:"SECURITY_API_KEY_HEADER" default:"X-API-Key"`

	// CORS
	CORSEnabled        bool     `envconfig:"CORS_ENABLED" default:"true"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// TLS
	TLSEnabled  bool   `envconfig:"TLS_ENABLED" default:"false"`
	TLSCertFile string `envconfig:"TLS_CERT_FILE" default:""`
	TLSKeyFile  string `envconfig:"TLS_KEY_FILE" default:""`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with defaults for missing required fields (for CLI tools)
func LoadWithDefaults() (*Config, error) {
	var cfg Config

	// Try to load from env, but don't fail on missing required fields
	envconfig.Process("", &cfg)

	if cfg.Database.Password == "" {
		cfg.Database.Password = "locateflow"
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errors []string

	// Validate database in non-development mode
	if c.Env != EnvDevelopment {
		if c.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD is required in non-development mode")
		}
	}

	// Validate TLS in production
	if c.Env == EnvProduction {
		if c.Security.TLSEnabled && (c.Security.TLSCertFile == "" || c.Security.TLSKeyFile == "") {
			errors = append(errors, "TLS_CERT_FILE and TLS_KEY_FILE are required when TLS is enabled")
		}
	}

	if c.History.Enabled && c.History.MaxPageSize <= 0 {
		errors = append(errors, "HISTORY_MAX_PAGE_SIZE must be positive")
	}

	switch c.Capture.Browser {
	case "chromium", "firefox", "webkit":
	default:
		errors = append(errors, fmt.Sprintf("unsupported CAPTURE_BROWSER %q", c.Capture.Browser))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
