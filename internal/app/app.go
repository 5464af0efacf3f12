// Package app assembles the normalizer and its collaborators from
// configuration. Both cmd/server and cmd/qbimport start from here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-qbank/internal/curriculum"
	"github.com/p-n-ai/pai-qbank/internal/diagnostics"
	"github.com/p-n-ai/pai-qbank/internal/ingest"
	"github.com/p-n-ai/pai-qbank/internal/platform/cache"
	"github.com/p-n-ai/pai-qbank/internal/platform/config"
	"github.com/p-n-ai/pai-qbank/internal/platform/database"
	"github.com/p-n-ai/pai-qbank/internal/review"
)

// App holds the wired components. DB and Cache are nil when not configured.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *database.DB
	Cache      *cache.Cache
	Hierarchy  *curriculum.Hierarchy
	Normalizer *ingest.Normalizer
	Reviews    review.Store
	Events     diagnostics.EventLogger
}

// New connects to the configured platform services, loads the curriculum
// once and builds the normalizer. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.DB = db
		if cfg.Database.Migrate {
			if err := db.Migrate(ctx); err != nil {
				a.Close()
				return nil, fmt.Errorf("migrating database: %w", err)
			}
		}
	}

	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			// The cache only fronts curriculum loads; run without it.
			logger.Warn("cache unavailable, continuing without it", "error", err)
		} else {
			a.Cache = c
		}
	}

	src, err := a.curriculumSource()
	if err != nil {
		a.Close()
		return nil, err
	}
	h, err := curriculum.LoadHierarchy(ctx, src)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Hierarchy = h
	logger.Info("normalizer ready",
		"source", cfg.Curriculum.Source,
		"units", len(h.Units()),
		"topics", len(h.Topics()),
		"subtopics", len(h.Subtopics()),
		"workers", cfg.Ingest.Workers,
	)

	a.Events = a.eventLogger()

	if cfg.Review.Persist {
		store, err := review.NewPostgresStore(a.DB.Pool)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating review store: %w", err)
		}
		a.Reviews = store
	} else {
		a.Reviews = review.NewMemoryStore()
	}

	a.Normalizer = ingest.New(curriculum.NewMatcher(h), ingest.Options{
		Delimiter: cfg.Ingest.Delimiter,
		Subject:   cfg.Ingest.Subject,
		Workers:   cfg.Ingest.Workers,
		Logger:    logger,
		Events:    a.Events,
	})
	return a, nil
}

func (a *App) curriculumSource() (curriculum.Source, error) {
	var src curriculum.Source
	switch a.Config.Curriculum.Source {
	case config.SourcePostgres:
		ps, err := curriculum.NewPostgresSource(a.DB.Pool)
		if err != nil {
			return nil, fmt.Errorf("creating curriculum source: %w", err)
		}
		src = ps
	default:
		src = curriculum.NewFileSource(a.Config.Curriculum.Path)
	}

	if a.Cache != nil {
		src = curriculum.NewCachedSource(src, a.Cache, a.Config.Curriculum.CacheKey, a.Config.Curriculum.CacheTTL)
	}
	return src, nil
}

func (a *App) eventLogger() diagnostics.EventLogger {
	loggers := diagnostics.MultiEventLogger{diagnostics.NewSlogEventLogger(a.Logger)}
	if a.DB != nil {
		loggers = append(loggers, diagnostics.NewPostgresEventLogger(a.DB.Pool))
	}
	return loggers
}

// HealthChecks returns the readiness probes of the connected services.
func (a *App) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if a.DB != nil {
		checks["database"] = a.DB.HealthCheck
	}
	if a.Cache != nil {
		checks["cache"] = a.Cache.HealthCheck
	}
	return checks
}

// Close releases platform connections.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("closing cache", "error", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
