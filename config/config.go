package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Server contains HTTP listener configuration
type Server struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeoutSec  int    `toml:"read_timeout_sec"`
	WriteTimeoutSec int    `toml:"write_timeout_sec"`
}

// Fallback is the static place rendered when neither the venue address nor
// device location resolves
type Fallback struct {
	Latitude    float64 `toml:"latitude"`
	Longitude   float64 `toml:"longitude"`
	DisplayName string  `toml:"display_name"`
	Timezone    string  `toml:"timezone"` // IANA name or "auto"
}

// Forecast contains forecast provider configuration
type Forecast struct {
	BaseURL      string `toml:"base_url"`
	TimeoutSec   int    `toml:"timeout_sec"`
	ForecastDays int    `toml:"forecast_days"` // daily/hourly horizon requested from the provider
}

// Geocoding contains geocoding provider configuration
type Geocoding struct {
	BaseURL     string `toml:"base_url"`
	MinScore    int    `toml:"min_score"`    // candidate confidence threshold (0-3 match signals)
	AcceptFirst bool   `toml:"accept_first"` // trust the provider's first result below the threshold
}

// Cache contains forecast cache configuration
type Cache struct {
	Path            string `toml:"path"` // SQLite database file; empty selects the default
	CooldownMinutes int    `toml:"cooldown_minutes"`
	StaleMinutes    int    `toml:"stale_minutes"`
	SweepMinutes    int    `toml:"sweep_minutes"` // background stale-sweep interval, 0 disables
}

// Logging contains logging configuration with rotation and cross-platform support
type Logging struct {
	Enabled         bool   `toml:"enabled"`          // Enable file logging
	Directory       string `toml:"directory"`        // Log directory (relative or absolute)
	FilenamePattern string `toml:"filename_pattern"` // Log filename with date patterns
	Level           string `toml:"level"`            // Log level: debug, info, warn, error
	MaxFiles        int    `toml:"max_files"`        // Number of log files to keep
	MaxSizeMB       int    `toml:"max_size_mb"`      // Rotate when file exceeds this size
	ConsoleOutput   bool   `toml:"console_output"`   // Also output to console
}

// Config represents the complete application configuration
type Config struct {
	Server    Server    `toml:"server"`
	Fallback  Fallback  `toml:"fallback"`
	Forecast  Forecast  `toml:"forecast"`
	Geocoding Geocoding `toml:"geocoding"`
	Cache     Cache     `toml:"cache"`
	Logging   Logging   `toml:"logging"`
}

// LoadConfig reads and parses a TOML configuration file
func LoadConfig(configPath string) (*Config, error) {
	cleanPath := filepath.Clean(configPath)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: cleanPath,
			}
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var config Config
	err = toml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML configuration: %w", err)
	}

	config.ApplyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

// ApplyDefaults sets default values for optional configuration fields
func (c *Config) ApplyDefaults() {
	// Default server settings
	if strings.TrimSpace(c.Server.Host) == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = 10
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = 30
	}

	// Default fallback place: the business's home area, so the panel never
	// renders an empty state
	if c.Fallback.Latitude == 0 && c.Fallback.Longitude == 0 {
		c.Fallback.Latitude = 40.7357
		c.Fallback.Longitude = -74.1724
	}
	if strings.TrimSpace(c.Fallback.DisplayName) == "" {
		c.Fallback.DisplayName = "Newark, NJ"
	}
	if strings.TrimSpace(c.Fallback.Timezone) == "" {
		c.Fallback.Timezone = "auto"
	}

	// Default forecast provider settings
	if strings.TrimSpace(c.Forecast.BaseURL) == "" {
		c.Forecast.BaseURL = "https://api.open-meteo.com"
	}
	if c.Forecast.TimeoutSec <= 0 {
		c.Forecast.TimeoutSec = 10
	}
	if c.Forecast.ForecastDays <= 0 {
		c.Forecast.ForecastDays = 16
	}

	// Default geocoding settings
	if strings.TrimSpace(c.Geocoding.BaseURL) == "" {
		c.Geocoding.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocoding.MinScore <= 0 {
		c.Geocoding.MinScore = 2
	}
	// AcceptFirst defaults to false in TOML; the sample config enables it

	// Default cache settings
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = filepath.Join(os.TempDir(), "andaaz-forecast-cache.db")
	}
	if c.Cache.CooldownMinutes <= 0 {
		c.Cache.CooldownMinutes = 10
	}
	if c.Cache.StaleMinutes <= 0 {
		c.Cache.StaleMinutes = 30
	}
	if c.Cache.SweepMinutes < 0 {
		c.Cache.SweepMinutes = 0
	}

	// Default logging settings
	if strings.TrimSpace(c.Logging.Directory) == "" {
		c.Logging.Directory = "logs"
	}
	if strings.TrimSpace(c.Logging.FilenamePattern) == "" {
		c.Logging.FilenamePattern = "andaaz-YYYYMMDD.log"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxFiles <= 0 {
		c.Logging.MaxFiles = 7 // Keep 7 days of logs by default
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 10 // 10MB default rotation size
	}
}

// applyEnvOverrides lets deployment environments override the file-based
// settings without editing it. godotenv loads any .env file in main before
// this runs.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ANDAAZ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("ANDAAZ_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("ANDAAZ_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ANDAAZ_FORECAST_URL"); v != "" {
		c.Forecast.BaseURL = v
	}
	if v := os.Getenv("ANDAAZ_GEOCODING_URL"); v != "" {
		c.Geocoding.BaseURL = v
	}
}

// ConfigNotFoundError represents a missing configuration file
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s\n\nTo create a sample configuration file, run:\n  %s --generate-config", e.Path, filepath.Base(os.Args[0]))
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	var messages []string
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// Validate checks the configuration for correctness and completeness
func (c *Config) Validate() error {
	var errors []ValidationError

	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateFallback()...)
	errors = append(errors, c.validateForecast()...)
	errors = append(errors, c.validateGeocoding()...)
	errors = append(errors, c.validateCache()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return &MultiValidationError{Errors: errors}
	}

	return nil
}

// validateServer checks listener configuration
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", c.Server.Port),
		})
	}

	return errors
}

// validateFallback checks the static fallback place
func (c *Config) validateFallback() []ValidationError {
	var errors []ValidationError

	if c.Fallback.Latitude < -90 || c.Fallback.Latitude > 90 {
		errors = append(errors, ValidationError{
			Field:   "fallback.latitude",
			Message: fmt.Sprintf("latitude must be between -90 and 90, got %.6f", c.Fallback.Latitude),
		})
	}

	if c.Fallback.Longitude < -180 || c.Fallback.Longitude > 180 {
		errors = append(errors, ValidationError{
			Field:   "fallback.longitude",
			Message: fmt.Sprintf("longitude must be between -180 and 180, got %.6f", c.Fallback.Longitude),
		})
	}

	if strings.TrimSpace(c.Fallback.DisplayName) == "" {
		errors = append(errors, ValidationError{
			Field:   "fallback.display_name",
			Message: "display name is required so the panel never shows an empty place",
		})
	}

	return errors
}

// validateForecast checks forecast provider configuration
func (c *Config) validateForecast() []ValidationError {
	var errors []ValidationError

	if !strings.HasPrefix(c.Forecast.BaseURL, "http://") && !strings.HasPrefix(c.Forecast.BaseURL, "https://") {
		errors = append(errors, ValidationError{
			Field:   "forecast.base_url",
			Message: fmt.Sprintf("base_url must be an http(s) URL, got '%s'", c.Forecast.BaseURL),
		})
	}

	if c.Forecast.TimeoutSec < 1 || c.Forecast.TimeoutSec > 120 {
		errors = append(errors, ValidationError{
			Field:   "forecast.timeout_sec",
			Message: fmt.Sprintf("timeout_sec must be between 1 and 120, got %d", c.Forecast.TimeoutSec),
		})
	}

	if c.Forecast.ForecastDays < 5 || c.Forecast.ForecastDays > 16 {
		errors = append(errors, ValidationError{
			Field:   "forecast.forecast_days",
			Message: fmt.Sprintf("forecast_days must be between 5 and 16 (provider horizon), got %d", c.Forecast.ForecastDays),
		})
	}

	return errors
}

// validateGeocoding checks geocoding provider configuration
func (c *Config) validateGeocoding() []ValidationError {
	var errors []ValidationError

	if !strings.HasPrefix(c.Geocoding.BaseURL, "http://") && !strings.HasPrefix(c.Geocoding.BaseURL, "https://") {
		errors = append(errors, ValidationError{
			Field:   "geocoding.base_url",
			Message: fmt.Sprintf("base_url must be an http(s) URL, got '%s'", c.Geocoding.BaseURL),
		})
	}

	if c.Geocoding.MinScore < 1 || c.Geocoding.MinScore > 3 {
		errors = append(errors, ValidationError{
			Field:   "geocoding.min_score",
			Message: fmt.Sprintf("min_score must be between 1 and 3 match signals, got %d", c.Geocoding.MinScore),
		})
	}

	return errors
}

// validateCache checks cache configuration
func (c *Config) validateCache() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Cache.Path) != "" {
		cacheDir := filepath.Dir(c.Cache.Path)
		if cacheDir != "." && cacheDir != "" {
			if err := os.MkdirAll(cacheDir, 0755); err != nil {
				errors = append(errors, ValidationError{
					Field:   "cache.path",
					Message: fmt.Sprintf("cannot create cache directory: %v", err),
				})
			}
		}
	}

	if c.Cache.CooldownMinutes < 1 || c.Cache.CooldownMinutes > 120 {
		errors = append(errors, ValidationError{
			Field:   "cache.cooldown_minutes",
			Message: fmt.Sprintf("cooldown_minutes must be between 1 and 120, got %d", c.Cache.CooldownMinutes),
		})
	}

	if c.Cache.StaleMinutes < c.Cache.CooldownMinutes {
		errors = append(errors, ValidationError{
			Field:   "cache.stale_minutes",
			Message: fmt.Sprintf("stale_minutes (%d) must not be shorter than cooldown_minutes (%d)", c.Cache.StaleMinutes, c.Cache.CooldownMinutes),
		})
	}

	return errors
}

// validateLogging checks logging configuration
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	validLevels := []string{"debug", "info", "warn", "error"}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level != "" {
		valid := false
		for _, validLevel := range validLevels {
			if level == validLevel {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, ValidationError{
				Field:   "logging.level",
				Message: fmt.Sprintf("level must be one of: %s, got '%s'", strings.Join(validLevels, ", "), c.Logging.Level),
			})
		}
	}

	if c.Logging.MaxFiles < 0 || c.Logging.MaxFiles > 365 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_files",
			Message: fmt.Sprintf("max_files must be between 0 and 365, got %d", c.Logging.MaxFiles),
		})
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxSizeMB > 1000 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Message: fmt.Sprintf("max_size_mb must be between 0 and 1000, got %d", c.Logging.MaxSizeMB),
		})
	}

	if c.Logging.Enabled {
		if strings.TrimSpace(c.Logging.Directory) == "" {
			errors = append(errors, ValidationError{
				Field:   "logging.directory",
				Message: "directory is required when logging is enabled",
			})
		}

		if strings.TrimSpace(c.Logging.FilenamePattern) == "" {
			errors = append(errors, ValidationError{
				Field:   "logging.filename_pattern",
				Message: "filename_pattern is required when logging is enabled",
			})
		}
	}

	return errors
}

// GenerateSampleConfig creates a sample configuration file at the specified path
func GenerateSampleConfig(configPath string) error {
	sampleConfig := `# Andaaz Decorations — forecast panel service configuration

[server]
host = "0.0.0.0"
port = 8080
read_timeout_sec = 10
write_timeout_sec = 30

[fallback]
# Static place rendered when neither the venue address nor the visitor's
# device location resolves. Defaults to the business's home area.
latitude = 40.7357
longitude = -74.1724
display_name = "Newark, NJ"
timezone = "auto"

[forecast]
# Open-Meteo compatible forecast endpoint
base_url = "https://api.open-meteo.com"
timeout_sec = 10

# Days of hourly/daily horizon to request (5-16). 16 covers event dates
# near the provider's maximum.
forecast_days = 16

[geocoding]
# Nominatim-compatible search endpoint
base_url = "https://nominatim.openstreetmap.org"

# How many of the three match signals (region, city, postal code) a
# candidate needs to win outright (1-3)
min_score = 2

# Below min_score, trust the provider's first-ranked result anyway
accept_first = true

[cache]
# SQLite database holding forecast snapshots, per-key refresh timestamps,
# and the display unit preference (leave empty for a temp-dir default)
path = ""

# Minimum minutes between two refresh attempts for the same location
cooldown_minutes = 10

# Snapshot age in minutes at which the panel shows a stale indicator
stale_minutes = 30

# Background stale-sweep interval in minutes (0 disables the sweep)
sweep_minutes = 15

[logging]
enabled = true
directory = "logs"
filename_pattern = "andaaz-YYYYMMDD.log"  # YYYY=year, MM=month, DD=day
level = "info"                            # debug, info, warn, error
max_files = 7
max_size_mb = 10
console_output = true
`

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}

	return nil
}
