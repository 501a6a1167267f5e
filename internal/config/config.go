package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	API         APIConfig         `yaml:"api"`
	Calendar    CalendarConfig    `yaml:"calendar"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains the HTTP listener settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// APIConfig points at the booking REST backend
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CalendarConfig tunes the booking calendar
type CalendarConfig struct {
	Mode                   string            `yaml:"mode"` // "timeline" or "calendar"
	Weekly                 bool              `yaml:"weekly"`
	Palette                []string          `yaml:"palette"`
	CarColors              map[string]string `yaml:"car_colors"`
	DefaultDurationHours   int               `yaml:"default_duration_hours"`
	MinimumDurationMinutes int               `yaml:"minimum_duration_minutes"`
}

// PreferencesConfig selects where the topbar filter set is persisted
type PreferencesConfig struct {
	Type string `yaml:"type"` // "local" or "postgres"
	Dir  string `yaml:"dir"`
	Key  string `yaml:"key"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RefreshCalendar string `yaml:"refresh_calendar"`
	CheckToken      string `yaml:"check_token"`
	TokenWarnHours  int    `yaml:"token_warn_hours"`
}

// Load reads configuration from a YAML file. A .env file next to the
// working directory is loaded first so its values feed the env overrides.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// API
	if val := os.Getenv("BOOKING_API_URL"); val != "" {
		c.API.BaseURL = val
	}
	if val := os.Getenv("BOOKING_API_TOKEN"); val != "" {
		c.API.Token = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}

	// Preferences
	if val := os.Getenv("PREFERENCES_DIR"); val != "" {
		c.Preferences.Dir = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("booking API base URL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("booking API base URL must be http(s): %s", c.API.BaseURL)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 15
	}

	// Calendar defaults
	switch c.Calendar.Mode {
	case "":
		c.Calendar.Mode = "timeline"
	case "timeline", "calendar":
	default:
		return fmt.Errorf("invalid calendar mode: %s", c.Calendar.Mode)
	}
	if c.Calendar.DefaultDurationHours == 0 {
		c.Calendar.DefaultDurationHours = 24
	}
	if c.Calendar.MinimumDurationMinutes == 0 {
		c.Calendar.MinimumDurationMinutes = 60
	}

	// Preferences
	switch c.Preferences.Type {
	case "", "local":
		c.Preferences.Type = "local"
		if c.Preferences.Dir == "" {
			c.Preferences.Dir = "./data/preferences"
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for postgres preferences")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required for postgres preferences")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required for postgres preferences")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported preferences type: %s", c.Preferences.Type)
	}
	if c.Preferences.Key == "" {
		c.Preferences.Key = "topbarFilters"
	}

	// Scheduler defaults
	if c.Scheduler.RefreshCalendar == "" {
		c.Scheduler.RefreshCalendar = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.CheckToken == "" {
		c.Scheduler.CheckToken = "0 0 * * * *" // hourly
	}
	if c.Scheduler.TokenWarnHours <= 0 {
		c.Scheduler.TokenWarnHours = 24
	}

	return nil
}

// APITimeout returns the REST call timeout
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
