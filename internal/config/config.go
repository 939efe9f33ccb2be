package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is constructed once in main
// and passed to the components that need it; nothing reads the environment
// after startup.
type Config struct {
	ServerPort     int
	DatabasePath   string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	StatsSchedule  string
}

// Load loads configuration from a .env file (if present) and environment
// variables, applying defaults. JWT_SECRET has no default: running with a
// guessable signing key is worse than not starting.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "5000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	ttlStr := getEnv("TOKEN_TTL", "720h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttlStr, err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	origins := strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./raterly.db"),
		JWTSecret:      secret,
		TokenTTL:       ttl,
		AllowedOrigins: origins,
		StatsSchedule:  getEnv("STATS_SCHEDULE", "@every 1m"),
	}, nil
}

// Helper to get an environment variable with a default value. Empty counts
// as unset.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
