// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite response cache

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Liturgical calendar API
	APIURL      string        // Base URL of the calendar API
	Locale      string        // BCP-47 tag sent as Accept-Language and used for the table
	YearType    string        // CIVIL or LITURGICAL
	Nation      string        // National calendar id, optional
	Diocese     string        // Diocesan calendar id, optional
	CacheTTL    time.Duration // How long a cached response is served without revalidation
	HTTPTimeout time.Duration // Timeout of one API request

	// Scheduling and presentation
	RefreshSchedule  string // Cron expression for refetching the calendar
	TableOptionsPath string // YAML table options, optional
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Year types accepted by the calendar API.
const (
	YearTypeCivil      = "CIVIL"
	YearTypeLiturgical = "LITURGICAL"
)

// DefaultAPIURL is the public Liturgical Calendar API.
const DefaultAPIURL = "https://litcal.johnromanodorazio.com/api/v5"

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is a no-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Database
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/litcal.db")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Calendar API
	cfg.APIURL = strings.TrimRight(getEnv("LITCAL_API_URL", DefaultAPIURL), "/")
	cfg.Locale = getEnv("LITCAL_LOCALE", "en")
	cfg.YearType = strings.ToUpper(getEnv("LITCAL_YEAR_TYPE", YearTypeCivil))
	cfg.Nation = getEnv("LITCAL_NATION", "")
	cfg.Diocese = getEnv("LITCAL_DIOCESE", "")
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", 6*time.Hour)
	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", 15*time.Second)

	// Scheduling and presentation
	cfg.RefreshSchedule = getEnv("REFRESH_SCHEDULE", "0 */6 * * *")
	cfg.TableOptionsPath = getEnv("TABLE_OPTIONS_PATH", "")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	// Validate database path is set
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	// Validate log format
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	// Calendar API
	if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("LITCAL_API_URL must be an absolute http(s) URL; got %q", c.APIURL))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("LITCAL_LOCALE must be a BCP-47 tag; got %q", c.Locale))
	}
	switch c.YearType {
	case YearTypeCivil, YearTypeLiturgical:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LITCAL_YEAR_TYPE must be one of: CIVIL, LITURGICAL; got %q", c.YearType))
	}
	if c.Nation != "" && c.Diocese != "" {
		errs = append(errs, errors.New("LITCAL_NATION and LITCAL_DIOCESE are mutually exclusive"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}

	// Scheduling
	if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
		errs = append(errs, fmt.Errorf("REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration reads a Go duration ("90s", "6h") with a default fallback.
// A bare integer is taken as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
