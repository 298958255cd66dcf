package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete pincode tool configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Import   ImportConfig   `mapstructure:"import"`
}

// APIConfig controls the outbound postal lookup API
type APIConfig struct {
	// BaseURL is the API root; lookups go to {BaseURL}/pincode/{code}
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds a single lookup (0 = no client timeout)
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig controls the web server
type ServerConfig struct {
	Port string `mapstructure:"port"`
	// SessionIdle is how long an unused form is kept before it is discarded
	SessionIdle time.Duration `mapstructure:"session_idle"`
}

// DatabaseConfig controls the optional lookup history store
type DatabaseConfig struct {
	// URL is a PostgreSQL DSN; history is disabled when empty
	URL string `mapstructure:"url"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR
	Level string `mapstructure:"level"`
	// Format is "text" or "json"
	Format string `mapstructure:"format"`
	// File is where the terminal form writes its log (default: <config dir>/tui.log)
	File string `mapstructure:"file"`
}

// ImportConfig controls batch imports
type ImportConfig struct {
	// Delay is the pause between two lookups of a batch
	Delay time.Duration `mapstructure:"delay"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.postalpincode.in",
			Timeout: 0,
		},
		Server: ServerConfig{
			Port:        "8080",
			SessionIdle: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Import: ImportConfig{
			Delay: time.Second,
		},
	}
}

// SetDefaults registers all defaults with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.timeout", defaults.API.Timeout)

	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("server.session_idle", defaults.Server.SessionIdle)

	viper.SetDefault("database.url", defaults.Database.URL)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("import.delay", defaults.Import.Delay)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// PORT and DATABASE_URL are honoured for container deployments
	if port := os.Getenv("PORT"); port != "" && !portConfigured() {
		cfg.Server.Port = port
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && cfg.Database.URL == "" {
		cfg.Database.URL = dsn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// portConfigured reports whether server.port was set in the config file
// or through PINCODE_SERVER_PORT
func portConfigured() bool {
	return viper.InConfig("server.port") || os.Getenv("PINCODE_SERVER_PORT") != ""
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		problems = append(problems, "api.timeout must not be negative")
	}
	if c.Server.Port == "" {
		problems = append(problems, "server.port must be set")
	}
	if c.Server.SessionIdle <= 0 {
		problems = append(problems, "server.session_idle must be positive")
	}
	if c.Import.Delay < 0 {
		problems = append(problems, "import.delay must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LogFile returns the terminal form's log path
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(ConfigDir(), "tui.log")
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pincode")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pincode"
	}
	return filepath.Join(home, ".config", "pincode")
}
