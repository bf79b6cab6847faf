// Package config loads and validates application configuration from environment variables.
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
	"github.com/redis/go-redis/v9"

	"github.com/moonwavetravel/backend/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret signs and verifies access tokens. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"] (Next.js dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// RedisURL enables the Redis change feed shared by several API instances.
	// Empty means an in-process feed.
	RedisURL string

	// Redis holds the options parsed from RedisURL, nil when it is empty.
	Redis *redis.Options

	// RedisChannel is the Pub/Sub channel for change events.
	RedisChannel string

	// StorageDir is where uploaded cover images are written. Defaults to "./data/media".
	StorageDir string

	// PublicBaseURL prefixes the URLs of stored media. Defaults to http://localhost:<Port>.
	PublicBaseURL string

	// MaxBodyBytes limits request bodies. Defaults to 5 MiB to fit cover uploads.
	MaxBodyBytes int64

	// MutationRate and MutationBurst configure the per-user write rate limit.
	MutationRate  float64
	MutationBurst int

	// ShutdownTimeout bounds graceful shutdown. Defaults to 15s.
	ShutdownTimeout time.Duration

	// RunMigrations applies pending goose migrations at startup. Defaults to true.
	RunMigrations bool
}

// LoadDotEnv reads a .env file from the working directory into the process
// environment, if one exists. Variables already set are not overridden.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error wrapping domain.ErrConfig that lists any required variables
// that are not set and any values that do not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RedisURL:     os.Getenv("REDIS_URL"),
		RedisChannel: getEnv("REDIS_CHANNEL", "moonwave:changes"),
		StorageDir:   getEnv("STORAGE_DIR", "./data/media"),
	}
	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	var err error
	if cfg.RedisURL != "" {
		if cfg.Redis, err = redis.ParseURL(cfg.RedisURL); err != nil {
			invalid = append(invalid, "REDIS_URL")
		}
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "5242880"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	if cfg.MutationRate, err = strconv.ParseFloat(getEnv("MUTATION_RATE_PER_SEC", "5"), 64); err != nil || cfg.MutationRate <= 0 {
		invalid = append(invalid, "MUTATION_RATE_PER_SEC")
	}
	if cfg.MutationBurst, err = strconv.Atoi(getEnv("MUTATION_BURST", "20")); err != nil || cfg.MutationBurst <= 0 {
		invalid = append(invalid, "MUTATION_BURST")
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "15s")); err != nil || cfg.ShutdownTimeout <= 0 {
		invalid = append(invalid, "SHUTDOWN_TIMEOUT")
	}
	if cfg.RunMigrations, err = strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true")); err != nil {
		invalid = append(invalid, "RUN_MIGRATIONS")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid values for: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("%w: %s", domain.ErrConfig, strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
