package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultAdminEmail is used when ADMIN_EMAIL is not set.
const DefaultAdminEmail = "admin@acme.com"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Backing stores
	DatabaseURL string
	RedisURL    string

	// Admin bootstrap
	Admin AdminConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// AdminConfig holds the boot-time admin provisioning settings
type AdminConfig struct {
	Email string
	// Password empty means no auto-provisioning; the setup wizard runs
	// instead.
	Password string
}

// ObservabilityConfig holds logging settings
type ObservabilityConfig struct {
	LogLevel string
	LogJSON  bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("KUBESTRO_HOST", "0.0.0.0"),
			Port:            getEnv("KUBESTRO_PORT", "8080"),
			ReadTimeout:     getEnvDuration("KUBESTRO_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("KUBESTRO_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("KUBESTRO_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("KUBESTRO_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("KUBESTRO_HEALTH_PORT", "9090"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", DefaultAdminEmail),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Observability: ObservabilityConfig{
			LogLevel: getEnv("KUBESTRO_LOG_LEVEL", "info"),
			LogJSON:  getEnvBool("KUBESTRO_LOG_JSON", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	return nil
}

// Addr returns the host:port of the main HTTP server.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// HealthAddr returns the host:port of the health/metrics server.
func (c *ServerConfig) HealthAddr() string {
	return c.Host + ":" + c.HealthPort
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
