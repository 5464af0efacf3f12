// Package config loads application configuration from environment variables.
// All variables use the INGEST_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Curriculum source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Log        LogConfig
	Curriculum CurriculumConfig
	Ingest     IngestConfig
	Review     ReviewConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	Host         string
	MaxBodyBytes int64
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// every PostgreSQL-backed component.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
	Migrate  bool
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL
// disables the curriculum snapshot cache.
type CacheConfig struct {
	URL string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// CurriculumConfig selects where reference data comes from.
type CurriculumConfig struct {
	Source   string // "file" or "postgres"
	Path     string
	CacheKey string
	CacheTTL time.Duration
}

// IngestConfig holds normalizer settings.
type IngestConfig struct {
	Workers   int
	Delimiter string
	Subject   string
}

// ReviewConfig controls where normalized batches are handed for review.
type ReviewConfig struct {
	Persist bool
}

// Load reads configuration from environment variables with INGEST_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         envInt("INGEST_SERVER_PORT", 8080),
			Host:         envStr("INGEST_SERVER_HOST", "0.0.0.0"),
			MaxBodyBytes: int64(envInt("INGEST_SERVER_MAX_BODY_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			URL:      envStr("INGEST_DATABASE_URL", ""),
			MaxConns: envInt("INGEST_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("INGEST_DATABASE_MIN_CONNS", 1),
			Migrate:  envBool("INGEST_DATABASE_MIGRATE", true),
		},
		Cache: CacheConfig{
			URL: envStr("INGEST_CACHE_URL", ""),
		},
		Log: LogConfig{
			Level:  envStr("INGEST_LOG_LEVEL", "info"),
			Format: envStr("INGEST_LOG_FORMAT", "json"),
		},
		Curriculum: CurriculumConfig{
			Source:   strings.ToLower(envStr("INGEST_CURRICULUM_SOURCE", SourceFile)),
			Path:     envStr("INGEST_CURRICULUM_PATH", "./curriculum"),
			CacheKey: envStr("INGEST_CURRICULUM_CACHE_KEY", "qbank:curriculum"),
			CacheTTL: envDuration("INGEST_CURRICULUM_CACHE_TTL", 10*time.Minute),
		},
		Ingest: IngestConfig{
			Workers:   envInt("INGEST_WORKERS", 0),
			Delimiter: envStr("INGEST_DELIMITER", "/"),
			Subject:   envStr("INGEST_DEFAULT_SUBJECT", ""),
		},
		Review: ReviewConfig{
			Persist: envBool("INGEST_REVIEW_PERSIST", false),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	switch c.Curriculum.Source {
	case SourceFile:
		if c.Curriculum.Path == "" {
			return fmt.Errorf("INGEST_CURRICULUM_PATH is required for the file source")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("INGEST_DATABASE_URL is required for the postgres curriculum source")
		}
	default:
		return fmt.Errorf("INGEST_CURRICULUM_SOURCE must be 'file' or 'postgres', got %q", c.Curriculum.Source)
	}

	if c.Review.Persist && c.Database.URL == "" {
		return fmt.Errorf("INGEST_DATABASE_URL is required when INGEST_REVIEW_PERSIST is set")
	}

	if c.Ingest.Workers < 0 {
		return fmt.Errorf("INGEST_WORKERS must not be negative, got %d", c.Ingest.Workers)
	}

	if c.Ingest.Delimiter == "" {
		return fmt.Errorf("INGEST_DELIMITER must not be empty")
	}

	return nil
}

// HasDatabase reports whether a PostgreSQL URL is configured.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// HasCache reports whether a Redis URL is configured.
func (c *Config) HasCache() bool { return c.Cache.URL != "" }

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
