package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/config"
	"github.com/kailas-cloud/dataextract/internal/db"
	dbFile "github.com/kailas-cloud/dataextract/internal/db/file"
	dbRedis "github.com/kailas-cloud/dataextract/internal/db/redis"
	"github.com/kailas-cloud/dataextract/internal/demo"
	"github.com/kailas-cloud/dataextract/internal/entity"
	"github.com/kailas-cloud/dataextract/internal/metadata"
	"github.com/kailas-cloud/dataextract/internal/metrics"
	"github.com/kailas-cloud/dataextract/internal/provider/clock"
	embeddingprov "github.com/kailas-cloud/dataextract/internal/provider/embedding"
	"github.com/kailas-cloud/dataextract/internal/provider/expression"
	"github.com/kailas-cloud/dataextract/internal/repository/catalogcache"
	openaiEmb "github.com/kailas-cloud/dataextract/internal/transport/openai"
	"github.com/kailas-cloud/dataextract/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/dataextract/internal/usecase/health"
)

// app holds the wired services shared by every subcommand.
type app struct {
	store    db.Store
	registry *entity.Registry
	cache    *catalogcache.Cache
	dict     *dictionary.Service
	health   *healthuc.Service
}

func (a *app) Close() { a.store.Close() }

// buildApp is the composition root.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := newStore(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("create catalog store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.Redis.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("catalog store not ready: %w", err)
	}
	logger.Info("Connected to catalog store", zap.String("driver", cfg.Cache.Driver))

	registry := entity.NewRegistry()
	if err := demo.Register(registry); err != nil {
		store.Close()
		return nil, err
	}

	reader, err := newReader(registry, cfg.Metadata)
	if err != nil {
		store.Close()
		return nil, err
	}

	cache := catalogcache.New(store, catalogcache.Options{
		Key:   cfg.Cache.Key,
		Debug: cfg.Cache.Debug,
	}, metrics.CatalogCacheTotal, logger)

	dict := dictionary.New(reader, registry, cache, logger).
		WithMetrics(metrics.CatalogBuildDuration, metrics.CatalogFields)

	embedder, err := addProviders(dict, registry, cfg.Providers, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	// Pass nil interface (not typed nil pointer) when embedding is off.
	var embeddingChecker healthuc.EmbeddingChecker
	if embedder != nil {
		embeddingChecker = embedder
	}

	return &app{
		store:    store,
		registry: registry,
		cache:    cache,
		dict:     dict,
		health:   healthuc.New(store, embeddingChecker),
	}, nil
}

func newStore(cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.CacheDriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
	case config.CacheDriverFile:
		return dbFile.NewStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// newReader chains struct tags, the embedded demo YAML and configured YAML files.
func newReader(registry *entity.Registry, cfg config.MetadataConfig) (metadata.Reader, error) {
	builtin, err := metadata.ParseYAML(demo.Metadata)
	if err != nil {
		return nil, fmt.Errorf("demo metadata: %w", err)
	}
	chain := metadata.Chain{metadata.NewTagReader(registry), builtin}
	for _, path := range cfg.YAMLFiles {
		r, err := metadata.LoadYAML(path)
		if err != nil {
			return nil, err
		}
		chain = append(chain, r)
	}
	return chain, nil
}

// addProviders registers providers in catalog order: expressions (cacheable),
// then clock and embedding (computed per request). The embedder is returned
// for health checks; nil when embedding is off.
func addProviders(
	dict *dictionary.Service,
	registry *entity.Registry,
	cfg config.ProvidersConfig,
	logger *zap.Logger,
) (*openaiEmb.Embedder, error) {
	if len(cfg.Expressions) > 0 {
		rules := make([]expression.Rule, len(cfg.Expressions))
		for i, e := range cfg.Expressions {
			rules[i] = expression.Rule{Field: e.Field, Type: e.Type, Class: e.Class, Expr: e.Expr}
		}
		exprProvider, err := expression.New(rules, registry, logger)
		if err != nil {
			return nil, fmt.Errorf("expression provider: %w", err)
		}
		dict.AddProvider(exprProvider, true)
	}

	if cfg.Clock.Enabled {
		dict.AddProvider(clock.New(nil), false)
	}

	if !cfg.Embedding.Enabled() {
		return nil, nil
	}

	metrics.RegisterEmbeddingMetrics()
	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	var budget *embeddingprov.Budget
	if cfg.Embedding.Budget.DailyTokenLimit > 0 {
		action, err := embeddingprov.ParseBudgetAction(cfg.Embedding.Budget.Action)
		if err != nil {
			return nil, err
		}
		budget = embeddingprov.NewBudget(cfg.Embedding.Budget.DailyTokenLimit, action, logger)
	}

	dict.AddProvider(embeddingprov.New(embedder, cfg.Embedding.Model, budget, logger), false)
	logger.Info("Embedding provider enabled",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
	)
	return embedder, nil
}
