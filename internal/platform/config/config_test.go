package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets all INGEST_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"INGEST_SERVER_PORT",
		"INGEST_SERVER_HOST",
		"INGEST_SERVER_MAX_BODY_BYTES",
		"INGEST_DATABASE_URL",
		"INGEST_DATABASE_MAX_CONNS",
		"INGEST_DATABASE_MIN_CONNS",
		"INGEST_DATABASE_MIGRATE",
		"INGEST_CACHE_URL",
		"INGEST_LOG_LEVEL",
		"INGEST_LOG_FORMAT",
		"INGEST_CURRICULUM_SOURCE",
		"INGEST_CURRICULUM_PATH",
		"INGEST_CURRICULUM_CACHE_KEY",
		"INGEST_CURRICULUM_CACHE_TTL",
		"INGEST_WORKERS",
		"INGEST_DELIMITER",
		"INGEST_DEFAULT_SUBJECT",
		"INGEST_REVIEW_PERSIST",
	}
	for _, v := range envVars {
		_ = os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes != 10<<20 {
		t.Errorf("Server.MaxBodyBytes = %d, want 10MiB", cfg.Server.MaxBodyBytes)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty", cfg.Database.URL)
	}
	if !cfg.Database.Migrate {
		t.Error("Database.Migrate should default to true")
	}
	if cfg.Curriculum.Source != SourceFile {
		t.Errorf("Curriculum.Source = %q, want file", cfg.Curriculum.Source)
	}
	if cfg.Curriculum.CacheTTL != 10*time.Minute {
		t.Errorf("Curriculum.CacheTTL = %v, want 10m", cfg.Curriculum.CacheTTL)
	}
	if cfg.Ingest.Delimiter != "/" {
		t.Errorf("Ingest.Delimiter = %q, want /", cfg.Ingest.Delimiter)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.HasDatabase() || cfg.HasCache() {
		t.Error("no database or cache should be configured by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want defaults to be valid", err)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)

	t.Setenv("INGEST_SERVER_PORT", "9090")
	t.Setenv("INGEST_DATABASE_URL", "postgres://custom:5432/db")
	t.Setenv("INGEST_CACHE_URL", "redis://custom:6379")
	t.Setenv("INGEST_CURRICULUM_SOURCE", "Postgres")
	t.Setenv("INGEST_CURRICULUM_CACHE_TTL", "90s")
	t.Setenv("INGEST_WORKERS", "4")
	t.Setenv("INGEST_DEFAULT_SUBJECT", "chemistry")
	t.Setenv("INGEST_REVIEW_PERSIST", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Curriculum.Source != SourcePostgres {
		t.Errorf("Curriculum.Source = %q, want postgres", cfg.Curriculum.Source)
	}
	if cfg.Curriculum.CacheTTL != 90*time.Second {
		t.Errorf("Curriculum.CacheTTL = %v, want 90s", cfg.Curriculum.CacheTTL)
	}
	if cfg.Ingest.Workers != 4 {
		t.Errorf("Ingest.Workers = %d, want 4", cfg.Ingest.Workers)
	}
	if cfg.Ingest.Subject != "chemistry" {
		t.Errorf("Ingest.Subject = %q, want chemistry", cfg.Ingest.Subject)
	}
	if !cfg.Review.Persist {
		t.Error("Review.Persist should be true")
	}
	if !cfg.HasDatabase() || !cfg.HasCache() {
		t.Error("database and cache should be configured")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("INGEST_SERVER_PORT", "not-a-number")
	t.Setenv("INGEST_CURRICULUM_CACHE_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want fallback 8080", cfg.Server.Port)
	}
	if cfg.Curriculum.CacheTTL != 10*time.Minute {
		t.Errorf("Curriculum.CacheTTL = %v, want fallback 10m", cfg.Curriculum.CacheTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"defaults", nil, false},
		{"unknown source", map[string]string{"INGEST_CURRICULUM_SOURCE": "s3"}, true},
		{"postgres source without database", map[string]string{"INGEST_CURRICULUM_SOURCE": "postgres"}, true},
		{"persist without database", map[string]string{"INGEST_REVIEW_PERSIST": "true"}, true},
		{"negative workers", map[string]string{"INGEST_WORKERS": "-1"}, true},
		{"postgres source with database", map[string]string{
			"INGEST_CURRICULUM_SOURCE": "postgres",
			"INGEST_DATABASE_URL":      "postgres://localhost/qbank",
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
