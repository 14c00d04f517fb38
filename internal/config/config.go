package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/store"
)

// Config holds the runtime settings of the deployment portal
type Config struct {
	Port                 int
	DatabaseDriver       string
	DatabasePath         string
	PostgresURL          string
	CORSOrigins          []string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SessionCookieSecure  bool
	LogLevel             string
	LogDevelopment       bool
}

// Default returns the configuration used when no environment is set
func Default() Config {
	return Config{
		Port:                 8080,
		DatabaseDriver:       store.DriverSqlite,
		DatabasePath:         "deployportal.db",
		CORSOrigins:          []string{"http://localhost:4200"},
		SessionTTL:           12 * time.Hour,
		SessionSweepInterval: 15 * time.Minute,
		LogLevel:             "info",
	}
}

// Load reads the configuration from environment variables on top of Default
func Load() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.DatabaseDriver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	cfg.PostgresURL = os.Getenv("POSTGRES_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = durationEnv("SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval); err != nil {
		return nil, err
	}
	if cfg.SessionCookieSecure, err = boolEnv("SESSION_COOKIE_SECURE", cfg.SessionCookieSecure); err != nil {
		return nil, err
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if cfg.LogDevelopment, err = boolEnv("LOG_DEVELOPMENT", cfg.LogDevelopment); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings can start a server
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.DatabaseDriver {
	case store.DriverSqlite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite driver")
		}
	case store.DriverPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must name at least one origin")
	}
	for _, origin := range c.CORSOrigins {
		// Credentialed CORS cannot use a wildcard origin
		if strings.Contains(origin, "*") {
			return fmt.Errorf("CORS_ORIGINS must list explicit origins, got %q", origin)
		}
	}
	return nil
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DatabaseDriver == store.DriverPostgres {
		return c.PostgresURL
	}
	return c.DatabasePath
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
