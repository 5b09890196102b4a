// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Env       string          `yaml:"env"` // development, production, test
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	FrontendURL  string        `yaml:"frontend_url"` // CORS origin
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig configures tokens and password hashing.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	JWTExpiry  time.Duration `yaml:"jwt_expiry"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// RateLimitConfig configures the two request limiters. Limiting is on
// unless explicitly disabled.
type RateLimitConfig struct {
	Disabled bool          `yaml:"disabled"`
	Window   time.Duration `yaml:"window"`
	Max      int           `yaml:"max"`
	BlockFor time.Duration `yaml:"block_for"`

	StrictWindow   time.Duration `yaml:"strict_window"`
	StrictMax      int           `yaml:"strict_max"`
	StrictBlockFor time.Duration `yaml:"strict_block_for"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics. The endpoint is served
// unless explicitly disabled.
type MetricsConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"` // default /metrics
}

// IsProduction reports whether the server runs in production mode.
// Production suppresses internal error details in responses.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from a YAML file, applies CAFE_* environment
// overrides, defaults and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	CAFE_ENV               - development, production or test (default: development)
//	CAFE_SERVER_HOST       - Server host (default: 0.0.0.0)
//	CAFE_SERVER_PORT       - Server port (default: 8080)
//	CAFE_FRONTEND_URL      - Allowed CORS origin
//	CAFE_DATABASE_DSN      - Database path (default: cafeapi.db)
//	CAFE_JWT_SECRET        - JWT signing secret, min 32 chars (required)
//	CAFE_JWT_EXPIRY        - Token lifetime (default: 24h)
//	CAFE_BCRYPT_COST       - bcrypt cost, 10-15 (default: 12)
//	CAFE_RATELIMIT_WINDOW  - Default limiter window (default: 15m)
//	CAFE_RATELIMIT_MAX     - Default limiter points (default: 100)
//	CAFE_LOG_LEVEL         - debug, info, warn, error (default: info)
//	CAFE_LOG_FORMAT        - json or console (default: json)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if os.Getenv("CAFE_JWT_SECRET") != "" {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set CAFE_JWT_SECRET")
}

// applyEnvOverrides applies CAFE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CAFE_ENV"); v != "" {
		cfg.Env = v
	}

	// Server configuration
	if v := os.Getenv("CAFE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CAFE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CAFE_FRONTEND_URL"); v != "" {
		cfg.Server.FrontendURL = v
	}
	if v := os.Getenv("CAFE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("CAFE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Database configuration
	if v := os.Getenv("CAFE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Auth configuration
	if v := os.Getenv("CAFE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CAFE_JWT_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.JWTExpiry = d
		}
	}
	if v := os.Getenv("CAFE_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.BcryptCost = n
		}
	}

	// Rate limit configuration
	if v := os.Getenv("CAFE_RATELIMIT_DISABLED"); v != "" {
		cfg.RateLimit.Disabled = parseBool(v)
	}
	if v := os.Getenv("CAFE_RATELIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RateLimit.Window = d
		}
	}
	if v := os.Getenv("CAFE_RATELIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Max = n
		}
	}
	if v := os.Getenv("CAFE_RATELIMIT_BLOCK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RateLimit.BlockFor = d
		}
	}

	// Logging configuration
	if v := os.Getenv("CAFE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CAFE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("CAFE_METRICS_DISABLED"); v != "" {
		cfg.Metrics.Disabled = parseBool(v)
	}
	if v := os.Getenv("CAFE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "cafeapi.db"
	}

	if cfg.Auth.JWTExpiry == 0 {
		cfg.Auth.JWTExpiry = 24 * time.Hour
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = 12
	}

	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 15 * time.Minute
	}
	if cfg.RateLimit.Max == 0 {
		cfg.RateLimit.Max = 100
	}
	if cfg.RateLimit.BlockFor == 0 {
		cfg.RateLimit.BlockFor = time.Minute
	}
	if cfg.RateLimit.StrictWindow == 0 {
		cfg.RateLimit.StrictWindow = 15 * time.Minute
	}
	if cfg.RateLimit.StrictMax == 0 {
		cfg.RateLimit.StrictMax = 5
	}
	if cfg.RateLimit.StrictBlockFor == 0 {
		cfg.RateLimit.StrictBlockFor = 15 * time.Minute
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	validEnvs := map[string]bool{"development": true, "production": true, "test": true}
	if !validEnvs[cfg.Env] {
		return fmt.Errorf("env must be development, production or test, got %q", cfg.Env)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set CAFE_JWT_SECRET)")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if cfg.Auth.BcryptCost < 10 || cfg.Auth.BcryptCost > 15 {
		return fmt.Errorf("auth.bcrypt_cost must be between 10 and 15, got %d", cfg.Auth.BcryptCost)
	}

	if cfg.RateLimit.Max < 1 {
		return fmt.Errorf("rate_limit.max must be positive, got %d", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Window < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}

	return nil
}
