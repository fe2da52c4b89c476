package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string
	Env            string
	RequestTimeout time.Duration
	CORSHosts      []string

	DB       DatabaseConfig
	Redis    RedisConfig
	Security SecurityConfig
	Worker   WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// Redis and the auth throttle falls back to process memory.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// SecurityConfig contains the secrets and session lifetimes. Any of the
// secrets may be empty: sessions then never verify and API keys are stored
// without a revealable ciphertext.
type SecurityConfig struct {
	AdminPassword          string
	AdminSessionSecret     string
	PartnerSessionSecret   string
	APIKeyEncryptionSecret string
	AdminSessionTTL        time.Duration
	PartnerSessionTTL      time.Duration

	// Failed authentication attempts allowed per client IP within AuthFailWindow.
	AuthFailLimit  int
	AuthFailWindow time.Duration
}

// WorkerConfig configures the API key usage stamping.
type WorkerConfig struct {
	KeyUsageSync          bool
	KeyUsageFlushInterval time.Duration
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.CORSHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Secrets
	cfg.Security = SecurityConfig{
		AdminPassword:          os.Getenv("ADMIN_PASSWORD"),
		AdminSessionSecret:     os.Getenv("ADMIN_SESSION_SECRET"),
		PartnerSessionSecret:   os.Getenv("PARTNER_SESSION_SECRET"),
		APIKeyEncryptionSecret: os.Getenv("API_KEY_ENCRYPTION_SECRET"),
		AuthFailLimit:          getEnvInt("AUTH_FAIL_LIMIT", 20),
	}

	cfg.Worker.KeyUsageSync = getEnvBool("API_KEY_USAGE_SYNC", false)

	// Durations
	var err error
	if cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if cfg.Security.AdminSessionTTL, err = parseDurationEnv("ADMIN_SESSION_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_SESSION_TTL: %w", err)
	}
	if cfg.Security.PartnerSessionTTL, err = parseDurationEnv("PARTNER_SESSION_TTL", "336h"); err != nil {
		return nil, fmt.Errorf("invalid PARTNER_SESSION_TTL: %w", err)
	}
	if cfg.Security.AuthFailWindow, err = parseDurationEnv("AUTH_FAIL_WINDOW", "1m"); err != nil {
		return nil, fmt.Errorf("invalid AUTH_FAIL_WINDOW: %w", err)
	}
	if cfg.Security.AuthFailWindow == 0 {
		return nil, errors.New("AUTH_FAIL_WINDOW must be > 0")
	}
	if cfg.Security.AuthFailLimit < 1 {
		return nil, errors.New("AUTH_FAIL_LIMIT must be >= 1")
	}
	if cfg.Worker.KeyUsageFlushInterval, err = parseDurationEnv("KEY_USAGE_FLUSH_INTERVAL", "5s"); err != nil {
		return nil, fmt.Errorf("invalid KEY_USAGE_FLUSH_INTERVAL: %w", err)
	}
	if cfg.Worker.KeyUsageFlushInterval == 0 {
		return nil, errors.New("KEY_USAGE_FLUSH_INTERVAL must be > 0")
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	return cfg, nil
}

// MissingSecrets lists the unset secrets so startup can warn about the
// features that will stay disabled.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.Security.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if c.Security.AdminSessionSecret == "" {
		missing = append(missing, "ADMIN_SESSION_SECRET")
	}
	if c.Security.PartnerSessionSecret == "" {
		missing = append(missing, "PARTNER_SESSION_SECRET")
	}
	if c.Security.APIKeyEncryptionSecret == "" {
		missing = append(missing, "API_KEY_ENCRYPTION_SECRET")
	}
	return missing
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
