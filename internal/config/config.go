// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/streambox/internal/constants"
	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/pkg/security"
)

const (
	// Default configuration file name
	defaultConfigFile = "config.json"
	// Default database path
	defaultDatabasePath = "./data/streambox.db"
	// Default upload directory
	defaultUploadDir = "./uploads"
	// Default admin password, matching the front end's demo setup
	defaultAdminPassword = "admin123"
	defaultJWTSecret     = "your-secret-key-change-this"
)

// Config holds the application configuration.
// It supports loading from a JSON file overridden by environment variables.
type Config struct {
	Port string `json:"PORT"`

	// Upstream provider
	TMDBAPIKeys      []string      `json:"TMDB_API_KEYS"`
	TMDBBaseURL      string        `json:"TMDB_BASE_URL"`
	TMDBImageBaseURL string        `json:"TMDB_IMAGE_BASE_URL"`
	UpstreamTimeout  time.Duration `json:"-"`
	TimeoutSeconds   int           `json:"TMDB_TIMEOUT"`

	// Admin access
	AdminPassword  string        `json:"ADMIN_PASSWORD"`
	JWTSecret      string        `json:"JWT_SECRET_KEY"`
	TokenTTL       time.Duration `json:"-"`
	LoginRateBurst int64         `json:"LOGIN_RATE_BURST"`
	LoginRateLimit int64         `json:"LOGIN_RATE_LIMIT"`

	// Storage settings
	DatabasePath string `json:"DATABASE_PATH"`
	UploadDir    string `json:"UPLOAD_DIR"`

	// Logging
	LogLevel      string `json:"LOG_LEVEL"`
	LogFormat     string `json:"LOG_FORMAT"`
	LogFile       string `json:"LOG_FILE"`
	LogMaxSizeMB  int    `json:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `json:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `json:"LOG_MAX_AGE_DAYS"`
}

// Load reads configuration from an optional JSON file and environment variables.
// Environment variables take precedence over file values.
// Returns an error if the configuration is invalid.
func Load() (*Config, error) {
	cfg := Default()

	configFile := getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFromFile(configFile); err != nil {
		// Ignore file not found errors
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	return &Config{
		Port:             constants.DefaultPort,
		TMDBBaseURL:      constants.TMDBBaseURL,
		TMDBImageBaseURL: constants.TMDBImageBaseURL,
		TimeoutSeconds:   int(constants.UpstreamTimeout / time.Second),
		AdminPassword:    defaultAdminPassword,
		JWTSecret:        defaultJWTSecret,
		TokenTTL:         constants.AdminTokenTTL,
		LoginRateBurst:   constants.LoginRateBurst,
		LoginRateLimit:   constants.LoginRateLimit,
		DatabasePath:     defaultDatabasePath,
		UploadDir:        defaultUploadDir,
		LogLevel:         constants.DefaultLogLevel,
		LogFormat:        "text",
		LogMaxSizeMB:     50,
		LogMaxBackups:    3,
		LogMaxAgeDays:    14,
	}
}

// loadFromFile loads configuration from a JSON file.
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

// loadFromEnv applies environment overrides.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("TMDB_API_KEYS"); v != "" {
		c.TMDBAPIKeys = splitList(v)
	}
	if v := os.Getenv("TMDB_BASE_URL"); v != "" {
		c.TMDBBaseURL = v
	}
	if v := os.Getenv("TMDB_IMAGE_BASE_URL"); v != "" {
		c.TMDBImageBaseURL = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.LogFile = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"TMDB_TIMEOUT", &c.TimeoutSeconds},
		{"LOG_MAX_SIZE_MB", &c.LogMaxSizeMB},
		{"LOG_MAX_BACKUPS", &c.LogMaxBackups},
		{"LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.NewConfigurationError(fmt.Sprintf("%s must be an integer", e.key), err)
		}
		*e.dst = n
	}
	return nil
}

// Validate checks if the configuration is valid and derives computed fields.
func (c *Config) Validate() error {
	c.TMDBAPIKeys = security.NewAPIKeyValidator().SanitizeAll(c.TMDBAPIKeys)
	if len(c.TMDBAPIKeys) == 0 {
		return apperrors.NewConfigurationError("TMDB_API_KEYS must contain at least one key", nil)
	}

	for name, raw := range map[string]string{
		"TMDB_BASE_URL":       c.TMDBBaseURL,
		"TMDB_IMAGE_BASE_URL": c.TMDBImageBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return apperrors.NewConfigurationError(fmt.Sprintf("%s is not an absolute URL: %q", name, raw), err)
		}
	}
	c.TMDBBaseURL = strings.TrimRight(c.TMDBBaseURL, "/")
	c.TMDBImageBaseURL = strings.TrimRight(c.TMDBImageBaseURL, "/")

	if c.TimeoutSeconds <= 0 {
		return apperrors.NewConfigurationError("TMDB_TIMEOUT must be positive", nil)
	}
	c.UpstreamTimeout = time.Duration(c.TimeoutSeconds) * time.Second

	if c.AdminPassword == "" {
		return apperrors.NewConfigurationError("ADMIN_PASSWORD must not be empty", nil)
	}
	if c.JWTSecret == "" {
		return apperrors.NewConfigurationError("JWT_SECRET_KEY must not be empty", nil)
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = constants.AdminTokenTTL
	}
	if c.LoginRateBurst <= 0 {
		c.LoginRateBurst = constants.LoginRateBurst
	}
	if c.LoginRateLimit <= 0 {
		c.LoginRateLimit = constants.LoginRateLimit
	}
	if c.Port == "" {
		c.Port = constants.DefaultPort
	}

	return nil
}

// UsesDefaultSecrets reports whether the admin password or token secret were left at
// their built-in values.
func (c *Config) UsesDefaultSecrets() bool {
	return c.AdminPassword == defaultAdminPassword || c.JWTSecret == defaultJWTSecret
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
