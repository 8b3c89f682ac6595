package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Supported gateway drivers.
const (
	DriverSQLite = "sqlite"
	DriverGorm   = "gorm"
)

// Config holds all configuration options for the task manager
type Config struct {
	Gateway     GatewayConfig     `yaml:"gateway"`
	Session     SessionConfig     `yaml:"session"`
	Validation  ValidationConfig  `yaml:"validation"`
	Display     DisplayConfig     `yaml:"display"`
	Application ApplicationConfig `yaml:"application"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
}

// GatewayConfig holds persistence gateway configuration
type GatewayConfig struct {
	Driver         string        `yaml:"driver" env:"UT_GATEWAY"`
	Dir            string        `yaml:"dir" env:"UT_DB_DIR"`
	Filename       string        `yaml:"filename" env:"UT_DB_FILENAME"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"UT_DB_QUERY_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"UT_DB_DIR_PERMISSIONS"`
}

// SessionConfig holds the externally supplied identity
type SessionConfig struct {
	UserID string `yaml:"user" env:"UT_USER"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMaxLength int `yaml:"title_max_length" env:"UT_VALIDATION_TITLE_MAX"`
	NameMaxLength  int `yaml:"name_max_length" env:"UT_VALIDATION_NAME_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	DateFormat string `yaml:"date_format" env:"UT_DISPLAY_DATE_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"UT_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"UT_APP_VERBOSE"`
}

// ScheduleConfig holds the digest and refresh schedule used by the watch command
type ScheduleConfig struct {
	DigestInterval  time.Duration `yaml:"digest_interval" env:"UT_DIGEST_INTERVAL"`
	DailyDigestAt   string        `yaml:"daily_digest_at" env:"UT_DAILY_DIGEST_AT"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"UT_REFRESH_INTERVAL"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Driver:         DriverSQLite,
			Dir:            DefaultDir(),
			Filename:       "uptask.db",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		Validation: ValidationConfig{
			TitleMaxLength: 500,
			NameMaxLength:  100,
		},
		Display: DisplayConfig{
			DateFormat: "2006-01-02",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Schedule: ScheduleConfig{
			DigestInterval:  time.Hour,
			DailyDigestAt:   "09:00",
			RefreshInterval: 30 * time.Second,
		},
	}
}

// DefaultDir returns the per-user data directory.
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".uptask")
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Gateway.Dir, c.Gateway.Filename)
}

// GetQueryTimeout returns the gateway query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Gateway.QueryTimeout
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Gateway configuration
	if driver := os.Getenv("UT_GATEWAY"); driver != "" {
		c.Gateway.Driver = strings.ToLower(driver)
	}
	if dir := os.Getenv("UT_DB_DIR"); dir != "" {
		c.Gateway.Dir = dir
	}
	if filename := os.Getenv("UT_DB_FILENAME"); filename != "" {
		c.Gateway.Filename = filename
	}
	if timeout := os.Getenv("UT_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Gateway.QueryTimeout = ParseDurationWithFallback(timeout, c.Gateway.QueryTimeout)
	}
	if perms := os.Getenv("UT_DB_DIR_PERMISSIONS"); perms != "" {
		c.Gateway.DirPermissions = ParseUint32WithFallback(perms, 8, c.Gateway.DirPermissions)
	}

	// Session configuration
	if user := os.Getenv("UT_USER"); user != "" {
		c.Session.UserID = user
	}

	// Validation configuration
	if maxLen := os.Getenv("UT_VALIDATION_TITLE_MAX"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}
	if maxLen := os.Getenv("UT_VALIDATION_NAME_MAX"); maxLen != "" {
		c.Validation.NameMaxLength = ParseIntWithFallback(maxLen, c.Validation.NameMaxLength)
	}

	// Display configuration
	if format := os.Getenv("UT_DISPLAY_DATE_FORMAT"); format != "" {
		c.Display.DateFormat = format
	}

	// Application configuration
	if timeout := os.Getenv("UT_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("UT_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Schedule configuration
	if interval := os.Getenv("UT_DIGEST_INTERVAL"); interval != "" {
		c.Schedule.DigestInterval = ParseDurationWithFallback(interval, c.Schedule.DigestInterval)
	}
	if at := os.Getenv("UT_DAILY_DIGEST_AT"); at != "" {
		c.Schedule.DailyDigestAt = at
	}
	if interval := os.Getenv("UT_REFRESH_INTERVAL"); interval != "" {
		c.Schedule.RefreshInterval = ParseDurationWithFallback(interval, c.Schedule.RefreshInterval)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate gateway configuration
	switch c.Gateway.Driver {
	case DriverSQLite, DriverGorm:
	default:
		return &ConfigError{Field: "gateway.driver", Message: "gateway driver must be one of sqlite, gorm"}
	}
	if c.Gateway.Dir == "" {
		return &ConfigError{Field: "gateway.dir", Message: "database directory cannot be empty"}
	}
	if c.Gateway.Filename == "" {
		return &ConfigError{Field: "gateway.filename", Message: "database filename cannot be empty"}
	}
	if c.Gateway.QueryTimeout <= 0 {
		return &ConfigError{Field: "gateway.query_timeout", Message: "query timeout must be positive"}
	}

	// Validate validation configuration
	if c.Validation.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}
	if c.Validation.NameMaxLength < 1 {
		return &ConfigError{Field: "validation.name_max_length", Message: "name maximum length must be at least 1"}
	}

	// Validate display configuration
	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	// Validate schedule configuration
	if c.Schedule.DigestInterval < time.Minute {
		return &ConfigError{Field: "schedule.digest_interval", Message: "digest interval must be at least 1m"}
	}
	if c.Schedule.RefreshInterval < time.Second {
		return &ConfigError{Field: "schedule.refresh_interval", Message: "refresh interval must be at least 1s"}
	}
	if _, _, err := ParseClock(c.Schedule.DailyDigestAt); err != nil {
		return &ConfigError{Field: "schedule.daily_digest_at", Message: err.Error()}
	}

	return nil
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
