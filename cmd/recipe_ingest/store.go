package main

import (
	"context"
	"fmt"

	"github.com/jonathan/recipe-ingest/internal/cache"
	"github.com/jonathan/recipe-ingest/internal/config"
	"github.com/jonathan/recipe-ingest/internal/db"
	"github.com/jonathan/recipe-ingest/internal/pipeline"
	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/store/memstore"
	"github.com/jonathan/recipe-ingest/internal/store/sqlite"
)

// cachePrefix namespaces catalog responses in a shared Redis.
const cachePrefix = "recipe_ingest:"

// recipeStore is an open store plus the run history it supports, if any.
type recipeStore struct {
	store.Store
	history pipeline.RunHistory
}

// openStore is a variable so tests can share one in-memory store across commands.
var openStore = openConfiguredStore

func openConfiguredStore(ctx context.Context, c *config.Config) (*recipeStore, error) {
	switch c.Store.Backend {
	case config.BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		if c.Store.AutoMigrate {
			if err := db.RunMigrations(c.Store.DatabaseURL); err != nil {
				return nil, err
			}
		}
		database, err := db.Connect(ctx, c.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &recipeStore{Store: database, history: runHistory{db: database}}, nil

	case config.BackendSQLite:
		if c.Store.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
		s, err := sqlite.Open(ctx, c.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &recipeStore{Store: s}, nil

	case config.BackendMemory:
		return &recipeStore{Store: memstore.New()}, nil
	}
	return nil, fmt.Errorf("unknown store backend: %s", c.Store.Backend)
}

// runHistory records finished runs in the ingestion_runs table.
type runHistory struct {
	db *db.DB
}

func (h runHistory) RecordRun(ctx context.Context, stats *pipeline.Stats, runErr error) error {
	return h.db.SaveRun(ctx, toRun(stats, runErr))
}

func toRun(stats *pipeline.Stats, runErr error) db.Run {
	run := db.Run{
		ID:        stats.RunID,
		Source:    stats.Source,
		DryRun:    stats.DryRun,
		State:     string(stats.State),
		Fetched:   stats.Fetched,
		Processed: stats.Processed,
		Saved:     stats.Saved,
		Skipped:   stats.Skipped,
		Errored:   stats.Errored,
		StartedAt: stats.StartedAt,
		EndedAt:   stats.EndedAt,
	}
	if runErr != nil {
		msg := runErr.Error()
		run.ErrorMessage = &msg
	}
	return run
}

// openCatalogCache returns Redis when configured, otherwise a process-local cache.
func openCatalogCache(ctx context.Context, c *config.Config) (cache.Cache, func() error, error) {
	if c.Catalog.RedisURL == "" {
		return cache.NewMemory(), func() error { return nil }, nil
	}
	r, err := cache.NewRedis(ctx, c.Catalog.RedisURL, cachePrefix)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}
