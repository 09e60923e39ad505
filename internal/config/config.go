package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Revocation backends.
const (
	RevocationNone   = "none"
	RevocationMemory = "memory"
	RevocationRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int
	AppEnv     string
	LogLevel   string

	DatabaseDriver string // sqlite or postgres
	DatabaseURL    string

	JWTSecret string
	TokenTTL  time.Duration

	ClientURL string // Allowed CORS and websocket origin

	RevocationBackend string
	RedisURL          string

	AMQPURL      string // Empty disables event publishing
	AMQPExchange string

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	problems []string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseDriver:    strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:       getEnv("DATABASE_URL", "./expenses.db"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		ClientURL:         getEnv("CLIENT_URL", "http://localhost:5173"),
		RevocationBackend: strings.ToLower(getEnv("REVOCATION_BACKEND", RevocationNone)),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AMQPURL:           os.Getenv("AMQP_URL"),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "expenses"),
	}
	cfg.ServerPort = cfg.getEnvInt("PORT", 8008)
	cfg.TokenTTL = cfg.getEnvDuration("TOKEN_TTL", 24*time.Hour)
	cfg.AuthRateLimitRPS = cfg.getEnvFloat("AUTH_RATE_LIMIT_RPS", 5)
	cfg.AuthRateLimitBurst = cfg.getEnvInt("AUTH_RATE_LIMIT_BURST", 10)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.problems...)

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		problems = append(problems, fmt.Sprintf("invalid PORT %d: must be between 1 and 65535", c.ServerPort))
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("invalid DATABASE_DRIVER %q: must be sqlite or postgres", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	switch c.RevocationBackend {
	case RevocationNone, RevocationMemory:
	case RevocationRedis:
		if c.RedisURL == "" {
			problems = append(problems, "REDIS_URL is required when REVOCATION_BACKEND=redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid REVOCATION_BACKEND %q: must be none, memory or redis", c.RevocationBackend))
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		problems = append(problems, "AMQP_EXCHANGE is required when AMQP_URL is set")
	}
	if c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst < 1 {
		problems = append(problems, "AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func (c *Config) getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s %q: must be an integer", key, value))
		return fallback
	}
	return n
}

func (c *Config) getEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s %q: must be a number", key, value))
		return fallback
	}
	return f
}

func (c *Config) getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s %q: must be a duration such as 24h", key, value))
		return fallback
	}
	return d
}
