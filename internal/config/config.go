// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rerun-tv/rerun/internal/models"
)

const (
	defaultServerPort         = 8080
	defaultServerHost         = "0.0.0.0"
	defaultReadTimeout        = 30 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultDatabasePath       = "./data/rerun.db"
	defaultLogLevel           = "info"
	defaultLogPretty          = false
	defaultMediaPath          = "./media"
	defaultSchedulePath       = "./data/schedules"
	defaultCommercialInterval = 30 // minutes between breaks
	defaultCommercialDuration = 2  // minimum minutes per break
	envPrefix                 = "RERUN"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Library   LibraryConfig
	Broadcast BroadcastConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// LibraryConfig holds media library configuration
type LibraryConfig struct {
	MediaPath        string
	SchedulePath     string
	SupportedFormats []string
	TVDBAPIKey       string
}

// SeasonalWindow biases content selection toward a seasonal tag while the
// window is active. It never restricts content to the window.
type SeasonalWindow struct {
	Start  string  `mapstructure:"start"` // MM-DD
	End    string  `mapstructure:"end"`   // MM-DD
	Weight float64 `mapstructure:"weight"`
}

// BroadcastConfig holds the scheduling engine tunables and channel lineup
type BroadcastConfig struct {
	CommercialInterval int // minutes of content between commercial breaks
	CommercialDuration int // minimum minutes per commercial break
	DefaultChannel     string
	Channels           []models.Channel
	Seasonal           map[string]SeasonalWindow
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rerun")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional; defaults and env vars cover everything else
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.migrationspath", "file://./migrations")

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("library.mediapath", defaultMediaPath)
	v.SetDefault("library.schedulepath", defaultSchedulePath)
	v.SetDefault("library.supportedformats", []string{"mp4", "mkv", "avi", "mov", "m4v", "wmv"})

	v.SetDefault("broadcast.commercialinterval", defaultCommercialInterval)
	v.SetDefault("broadcast.commercialduration", defaultCommercialDuration)
	v.SetDefault("broadcast.seasonal", map[string]SeasonalWindow{
		"halloween":    {Start: "10-01", End: "10-31", Weight: 0.7},
		"thanksgiving": {Start: "11-15", End: "11-30", Weight: 0.7},
		"christmas":    {Start: "12-01", End: "12-26", Weight: 0.7},
		"valentines":   {Start: "02-07", End: "02-14", Weight: 0.7},
	})
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Broadcast.CommercialInterval <= 0 {
		return fmt.Errorf("invalid commercial interval: %d minutes (must be > 0)", c.Broadcast.CommercialInterval)
	}
	if c.Broadcast.CommercialDuration <= 0 {
		return fmt.Errorf("invalid commercial duration: %d minutes (must be > 0)", c.Broadcast.CommercialDuration)
	}

	seen := make(map[string]bool, len(c.Broadcast.Channels))
	for _, ch := range c.Broadcast.Channels {
		if ch.ID == "" {
			return errors.New("channel with empty id in configuration")
		}
		if seen[ch.ID] {
			return fmt.Errorf("duplicate channel id: %s", ch.ID)
		}
		seen[ch.ID] = true
	}

	for name, window := range c.Broadcast.Seasonal {
		if err := validateMonthDay(window.Start); err != nil {
			return fmt.Errorf("seasonal window %q: invalid start: %w", name, err)
		}
		if err := validateMonthDay(window.End); err != nil {
			return fmt.Errorf("seasonal window %q: invalid end: %w", name, err)
		}
		if window.Weight < 0 || window.Weight > 1 {
			return fmt.Errorf("seasonal window %q: weight %v out of range [0, 1]", name, window.Weight)
		}
	}

	return nil
}

// Channel looks up a configured channel by id
func (c *Config) Channel(id string) (*models.Channel, bool) {
	for i := range c.Broadcast.Channels {
		if c.Broadcast.Channels[i].ID == id {
			return &c.Broadcast.Channels[i], true
		}
	}
	return nil, false
}

// validateMonthDay checks an MM-DD string
func validateMonthDay(s string) error {
	if _, err := time.Parse("01-02", s); err != nil {
		return fmt.Errorf("%q is not a valid MM-DD date", s)
	}
	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
