package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/logger"
)

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port       string
	CORSOrigin string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// MigrationsPath is the directory holding the SQL migrations.
	MigrationsPath string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Location is the zone month windows and zone-less dates are evaluated in.
	Location *time.Location
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug("no .env file found, using process environment")
	}

	config := &Config{
		Env: getEnv("ENV", "development"),

		// Server
		Port:       getEnv("PORT", "8080"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fintrack"),
		DBPassword: getEnv("DB_PASSWORD", "fintrack"),
		DBName:     getEnv("DB_NAME", "fintrack"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "data/fintrack.db"),

		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		// Sessions
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-change-me"),
	}

	switch config.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", config.DBDriver)
	}

	ttlStr := getEnv("SESSION_TTL", "168h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		logger.Get().Warnf("invalid SESSION_TTL value '%s', falling back to 168h", ttlStr)
		ttl = 7 * 24 * time.Hour
	}
	config.SessionTTL = ttl

	tz := getEnv("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}
	config.Location = loc

	if config.IsProduction() && config.SessionSecret == "default-secret-change-me" {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}

	return config, nil
}

// IsProduction reports whether the app runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
