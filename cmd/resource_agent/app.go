package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonathan/resource-curator/internal/config"
	"github.com/jonathan/resource-curator/internal/llm"
	"github.com/jonathan/resource-curator/internal/logger"
	"github.com/jonathan/resource-curator/internal/observability"
	"github.com/jonathan/resource-curator/internal/pipeline"
	"github.com/jonathan/resource-curator/internal/search"
	"github.com/jonathan/resource-curator/internal/service"
	"github.com/jonathan/resource-curator/internal/store"
)

// app holds the wired dependencies of one CLI invocation.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   store.Store
	service *service.Service
	closers []func() error
}

// loadApp reads configuration and opens storage. Commands that never run
// the pipeline stop here.
func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.verbose {
		cfg.Verbose = true
	}

	log, err := logger.New(cfg.LoggerOptions())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error { log.Sync(); return nil })

	st, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st.Close)
	a.service = service.New(st, nil, log)
	return a, nil
}

// buildApp is loadApp plus tracing, the language model, search and the pipeline.
func buildApp(ctx context.Context, opts *rootOptions, out io.Writer) (*app, error) {
	a, err := loadApp(ctx, opts)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	shutdown, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error { return shutdown(context.Background()) })

	// A nil client makes query synthesis use the deterministic fallback.
	var client llm.Client
	if cfg.LLM.APIKey != "" {
		gemini, err := llm.NewClient(ctx, cfg.LLMOptions(), cfg.LLM.APIKey)
		if err != nil {
			a.Close()
			return nil, err
		}
		client = gemini
		a.closers = append(a.closers, gemini.Close)
	} else {
		a.log.Warn("GEMINI_API_KEY not set, queries will use the fallback templates")
	}

	searcher, err := a.buildSearcher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(a.log)}
	if cfg.Verbose {
		pipeOpts = append(pipeOpts, pipeline.WithPrinter(observability.NewPrinter(out)))
	}
	p := pipeline.New(client, searcher, a.store, cfg.PipelineOptions(), pipeOpts...)
	a.service = service.New(a.store, p, a.log)
	return a, nil
}

// buildSearcher returns the cached Google searcher, or a searcher that
// always fails when credentials are missing so runs still yield empty bundles.
func (a *app) buildSearcher(ctx context.Context) (search.Searcher, error) {
	cfg := a.cfg
	if cfg.Search.APIKey == "" || cfg.Search.EngineID == "" {
		a.log.Warn("GOOGLE_SEARCH_API_KEY or GOOGLE_SEARCH_CX not set, searches will return nothing")
		return search.SearcherFunc(func(_ context.Context, query string) ([]search.Result, error) {
			return nil, &search.ProviderError{Query: query, Message: "search is not configured"}
		}), nil
	}

	google, err := search.NewGoogleSearcher(ctx, cfg.SearchOptions())
	if err != nil {
		return nil, err
	}

	var cache search.Cache
	if cfg.Search.RedisURL != "" {
		redisCache, err := search.NewRedisCache(cfg.Search.RedisURL, cfg.Search.CacheTTL.Std())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisCache.Close)
		cache = redisCache
	} else {
		cache = search.NewMemoryCache(cfg.Search.CacheSize, cfg.Search.CacheTTL.Std())
	}
	return search.NewCachedSearcher(google, cache, a.log), nil
}

// openStore picks PostgreSQL when a database URL is configured, SQLite otherwise.
func openStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		log.Info("using postgres storage")
		return pg, nil
	}

	sqlite, err := store.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	log.Info("using sqlite storage", "path", cfg.SQLitePath)
	return sqlite, nil
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
