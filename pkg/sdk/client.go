package dataextract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/db"
	dbFile "github.com/kailas-cloud/dataextract/internal/db/file"
	dbRedis "github.com/kailas-cloud/dataextract/internal/db/redis"
	"github.com/kailas-cloud/dataextract/internal/entity"
	"github.com/kailas-cloud/dataextract/internal/metadata"
	"github.com/kailas-cloud/dataextract/internal/provider/clock"
	embeddingprov "github.com/kailas-cloud/dataextract/internal/provider/embedding"
	"github.com/kailas-cloud/dataextract/internal/provider/expression"
	"github.com/kailas-cloud/dataextract/internal/repository/catalogcache"
	"github.com/kailas-cloud/dataextract/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/dataextract/internal/usecase/health"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the dataextract SDK entry point. It is safe for concurrent use;
// a Pass is not.
type Client struct {
	store     db.Store
	registry  *entity.Registry
	cache     *catalogcache.Cache
	dict      *dictionary.Service
	healthSvc healthUseCase
	logger    *zap.Logger
	keepNulls bool
	obs       *observer
}

// New creates a Client, registers its classes and connects to the catalog
// store. The provided context is used for the initial readiness check; the
// catalog itself is built lazily or by WarmUp.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("dataextract: catalog store required (use WithFileCache or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("dataextract: catalog store not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "file":
		s, err := dbFile.NewStore(cfg.dir)
		if err != nil {
			return nil, fmt.Errorf("dataextract: create file store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("dataextract: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("dataextract: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := cfg.zapLogger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := entity.NewRegistry()
	for _, cs := range cfg.classes {
		if err := registry.Register(cs.name, cs.sample); err != nil {
			return nil, fmt.Errorf("dataextract: register %s: %w", cs.name, err)
		}
	}

	reader := metadata.Chain{metadata.NewTagReader(registry)}
	for i, data := range cfg.yaml {
		r, err := metadata.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("dataextract: metadata document %d: %w", i, err)
		}
		reader = append(reader, r)
	}
	for _, path := range cfg.yamlFiles {
		r, err := metadata.LoadYAML(path)
		if err != nil {
			return nil, fmt.Errorf("dataextract: %w", err)
		}
		reader = append(reader, r)
	}

	cache := catalogcache.New(store, catalogcache.Options{
		Key:   cfg.cacheKey,
		Debug: cfg.debug,
	}, obs.catalogCacheCounter(), logger)
	dict := dictionary.New(reader, registry, cache, logger)

	if len(cfg.expressions) > 0 {
		rules := make([]expression.Rule, len(cfg.expressions))
		for i, e := range cfg.expressions {
			rules[i] = expression.Rule{Field: e.Field, Type: e.Type, Class: e.Class, Expr: e.Expr}
		}
		p, err := expression.New(rules, registry, logger)
		if err != nil {
			return nil, fmt.Errorf("dataextract: expressions: %w", err)
		}
		dict.AddProvider(p, true)
	}
	for _, pe := range cfg.providers {
		dict.AddProvider(&providerAdapter{inner: pe.provider}, pe.cacheable)
	}
	if cfg.clock {
		dict.AddProvider(clock.New(nil), false)
	}

	// Pass nil interface (not typed nil pointer) when embedding is off.
	var embeddingChecker healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		adapter := &embedderAdapter{inner: cfg.embedder}
		dict.AddProvider(embeddingprov.New(adapter, cfg.embeddingModel, nil, logger), false)
		embeddingChecker = adapter
	}

	return &Client{
		store:     store,
		registry:  registry,
		cache:     cache,
		dict:      dict,
		healthSvc: healthuc.New(store, embeddingChecker),
		logger:    logger,
		keepNulls: cfg.keepNulls,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks catalog store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Classes returns the registered class names in registration order.
func (c *Client) Classes() []string {
	return c.registry.Classes()
}

// WarmUp rebuilds the catalog and persists it.
func (c *Client) WarmUp(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("catalog.warmup", start, err) }()

	return c.dict.WarmUp(ctx)
}

// ClearCache drops the persisted catalog; the next read rebuilds it.
func (c *Client) ClearCache(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("catalog.clear", start, err) }()

	return c.cache.ClearCache(ctx)
}

// Fields lists the names of available fields having one of types, all types
// when none are given. Global names come before namespaced ones.
func (c *Client) Fields(ctx context.Context, types ...FieldType) (names []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("catalog.fields", start, err) }()

	return c.dict.AvailableFields(ctx, types...)
}

// Catalog returns every catalog record, persisted records first.
func (c *Client) Catalog(ctx context.Context) (infos []FieldInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("catalog.get", start, err) }()

	cat, err := c.dict.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	infos = make([]FieldInfo, 0, len(cat.Persisted)+len(cat.Ephemeral))
	for _, f := range cat.Persisted {
		infos = append(infos, infoOf(f, false))
	}
	for _, f := range cat.Ephemeral {
		infos = append(infos, infoOf(f, true))
	}
	return infos, nil
}
