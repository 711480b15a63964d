package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for investtrack
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Auth        AuthConfig     `toml:"auth"`
	Analysis    AnalysisConfig `toml:"analysis"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects the storage backend and holds the SurrealDB
// connection settings.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "surrealdb" (default) or "memory"
	Address   string `toml:"address"` // e.g. ws://localhost:8000/rpc
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// AuthConfig holds JWT and login throttling configuration.
type AuthConfig struct {
	JWTSecret      string  `toml:"jwt_secret"`
	TokenExpiry    string  `toml:"token_expiry"`     // duration string, default "24h"
	LoginRateLimit float64 `toml:"login_rate_limit"` // login attempts per second per client
	LoginBurst     int     `toml:"login_burst"`
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// AnalysisConfig holds server-wide projection defaults. Users may override
// them with stored settings or per-request parameters.
type AnalysisConfig struct {
	Years      int     `toml:"years"`
	GrowthRate float64 `toml:"growth_rate"`
	TaxRate    float64 `toml:"tax_rate"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   "surrealdb",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "investtrack",
			Database:  "investtrack",
			Username:  "root",
			Password:  "root",
		},
		Auth: AuthConfig{
			JWTSecret:      "dev-jwt-secret-change-in-production",
			TokenExpiry:    "24h",
			LoginRateLimit: 1,
			LoginBurst:     5,
		},
		Analysis: AnalysisConfig{
			Years:      10,
			GrowthRate: 10,
			TaxRate:    15,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/investtrack.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("INVESTTRACK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("INVESTTRACK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("INVESTTRACK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("INVESTTRACK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("INVESTTRACK_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("INVESTTRACK_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("INVESTTRACK_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("INVESTTRACK_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	if v := os.Getenv("INVESTTRACK_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("INVESTTRACK_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of settings that must be changed before
// running in production.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "dev-jwt-secret-change-in-production" {
		missing = append(missing, "auth.jwt_secret")
	}
	if c.Storage.Backend != "memory" && c.Storage.Address == "" {
		missing = append(missing, "storage.address")
	}
	return missing
}
