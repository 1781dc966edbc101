package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the sheet server
type Config struct {
	Server ServerConfig
	API    APIConfig
	Redis  RedisConfig
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Addr string
	// SchemaDir holds extra schema documents merged over the embedded ones
	SchemaDir string
	Staged    bool
}

// APIConfig holds game API configuration
type APIConfig struct {
	BaseURL       string
	RetryAttempts int
	RetryDelay    time.Duration
}

// RedisConfig holds the entity cache configuration. An empty Addr disables
// the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a cache should be wired.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:      getEnvOrDefault("SHEETFORM_ADDR", ":8080"),
			SchemaDir: os.Getenv("SHEETFORM_SCHEMA_DIR"),
			Staged:    getEnvAsBoolOrDefault("SHEETFORM_STAGED", false),
		},
		API: APIConfig{
			BaseURL:       os.Getenv("SHEETFORM_API_URL"),
			RetryAttempts: getEnvAsIntOrDefault("SHEETFORM_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDurationOrDefault("SHEETFORM_RETRY_DELAY", time.Second),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("SHEETFORM_REDIS_ADDR"),
			Password: os.Getenv("SHEETFORM_REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("SHEETFORM_REDIS_DB", 0),
			TTL:      getEnvAsDurationOrDefault("SHEETFORM_CACHE_TTL", 30*time.Second),
		},
	}

	// Validate required fields
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("SHEETFORM_API_URL is required")
	}
	if parsed, err := url.Parse(cfg.API.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("SHEETFORM_API_URL must be an absolute URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.RetryAttempts < 1 {
		return nil, fmt.Errorf("SHEETFORM_RETRY_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
