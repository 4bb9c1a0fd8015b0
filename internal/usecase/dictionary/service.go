// Package dictionary assembles the field catalog from class metadata and
// registered providers.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
)

const buildKey = "catalog"

type registration struct {
	provider provider.Provider
	cachable bool
}

// Service builds and serves the field catalog. Safe for concurrent use.
type Service struct {
	reader   ElementReader
	entities EntitySource
	cache    CatalogCache
	logger   *zap.Logger

	mu        sync.RWMutex
	providers []registration

	builds singleflight.Group

	buildDuration *prometheus.HistogramVec
	fieldsGauge   *prometheus.GaugeVec
}

// New creates a dictionary service.
func New(reader ElementReader, entities EntitySource, cache CatalogCache, logger *zap.Logger) *Service {
	return &Service{
		reader:   reader,
		entities: entities,
		cache:    cache,
		logger:   logger,
	}
}

// WithMetrics attaches a build duration histogram (label "source") and a
// catalog size gauge (label "partition"). Either may be nil.
func (s *Service) WithMetrics(buildDuration *prometheus.HistogramVec, fields *prometheus.GaugeVec) *Service {
	s.buildDuration = buildDuration
	s.fieldsGauge = fields
	return s
}

// AddProvider registers a provider. Registration order is kept in the catalog.
// Fields of non-cacheable providers are never persisted.
func (s *Service) AddProvider(p provider.Provider, cachable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = append(s.providers, registration{provider: p, cachable: cachable})
}

// Providers returns the registered providers in registration order.
func (s *Service) Providers() []provider.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]provider.Provider, len(s.providers))
	for i, r := range s.providers {
		out[i] = r.provider
	}
	return out
}

// Optional reports whether warm-up may be skipped. It may not: a cold cache
// under concurrent load makes every process scan metadata at once.
func (s *Service) Optional() bool { return false }

// DeclaredFields returns the records sourced from class metadata, served
// from the cache when present.
func (s *Service) DeclaredFields(ctx context.Context) ([]field.Field, error) {
	if s.cache.HasCache(ctx) {
		cached, err := s.cache.GetCache(ctx)
		switch {
		case err == nil:
			return declaredOnly(cached), nil
		case !recoverable(err):
			return nil, fmt.Errorf("read catalog cache: %w", err)
		}
		s.logger.Warn("Catalog cache unusable, scanning metadata", zap.Error(err))
	}
	return s.scan(ctx)
}

// Catalog returns the full catalog, building and persisting it on a cache miss.
func (s *Service) Catalog(ctx context.Context) (Catalog, error) {
	return s.catalog(ctx, false)
}

// WarmUp drops any cached catalog and rebuilds it. Persistence failures are
// returned, unlike in Catalog where they are only logged.
func (s *Service) WarmUp(ctx context.Context) error {
	if err := s.cache.ClearCache(ctx); err != nil {
		return fmt.Errorf("clear catalog cache: %w", err)
	}
	s.builds.Forget(buildKey)

	c, err := s.catalog(ctx, true)
	if err != nil {
		return fmt.Errorf("warm up: %w", err)
	}
	s.logger.Info("Catalog warmed up",
		zap.Int("persisted", len(c.Persisted)),
		zap.Int("ephemeral", len(c.Ephemeral)),
	)
	return nil
}

// AvailableFields returns distinct field names, optionally restricted to
// types. Global names come first, then namespaced ones, each group sorted.
func (s *Service) AvailableFields(ctx context.Context, types ...field.Type) ([]string, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, f := range c.All() {
		if len(types) > 0 && !slices.Contains(types, f.Type()) {
			continue
		}
		if _, ok := seen[f.Name()]; ok {
			continue
		}
		seen[f.Name()] = struct{}{}
		names = append(names, f.Name())
	}

	SortNames(names)
	return names, nil
}

// SortNames orders field names globals first, then alphabetically.
func SortNames(names []string) {
	slices.SortStableFunc(names, func(a, b string) int {
		na, nb := field.IsNamespaced(a), field.IsNamespaced(b)
		switch {
		case na && !nb:
			return 1
		case !na && nb:
			return -1
		}
		return strings.Compare(a, b)
	})
}

func (s *Service) catalog(ctx context.Context, strict bool) (Catalog, error) {
	start := time.Now()

	persisted, source, err := s.persisted(ctx, strict)
	if err != nil {
		return Catalog{}, err
	}

	ephemeral, err := s.providerFields(ctx, false)
	if err != nil {
		return Catalog{}, err
	}

	s.observe(source, start, len(persisted), len(ephemeral))
	return Catalog{Persisted: persisted, Ephemeral: ephemeral}, nil
}

// persisted returns the cacheable partition, from the cache or from a fresh
// scan. Concurrent cold builds share one scan.
func (s *Service) persisted(ctx context.Context, strict bool) ([]field.Field, string, error) {
	if s.cache.HasCache(ctx) {
		cached, err := s.cache.GetCache(ctx)
		if err == nil {
			return cached, "cache", nil
		}
		if !recoverable(err) {
			return nil, "", fmt.Errorf("read catalog cache: %w", err)
		}
		s.logger.Warn("Catalog cache unusable, rebuilding", zap.Error(err))
	}

	v, err, shared := s.builds.Do(buildKey, func() (any, error) {
		// A flight that finished since the check above already stored it.
		if s.cache.HasCache(ctx) {
			if cached, err := s.cache.GetCache(ctx); err == nil {
				return cached, nil
			}
		}

		fields, err := s.scan(ctx)
		if err != nil {
			return nil, err
		}
		cacheable, err := s.providerFields(ctx, true)
		if err != nil {
			return nil, err
		}
		fields = append(fields, cacheable...)

		if err := s.cache.StoreInCache(ctx, fields); err != nil {
			if strict {
				return nil, fmt.Errorf("store catalog: %w", err)
			}
			s.logger.Warn("Failed to persist catalog", zap.Error(err))
		}
		return fields, nil
	})
	if err != nil {
		return nil, "", err
	}

	fields := v.([]field.Field)
	if shared {
		fields = slices.Clone(fields)
	}
	return fields, "scan", nil
}

// scan walks every class in entity order and emits one record per field named
// by each element, in reader order.
func (s *Service) scan(_ context.Context) ([]field.Field, error) {
	var out []field.Field
	for _, class := range s.entities.Classes() {
		elements, err := s.reader.Elements(class)
		if err != nil {
			return nil, fmt.Errorf("scan class %s: %w", class, err)
		}
		for _, el := range elements {
			for _, name := range el.Fields() {
				f, err := field.NewDeclared(name, el.Type(), class, el.Getter())
				if err != nil {
					return nil, fmt.Errorf("scan class %s: %w", class, err)
				}
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func (s *Service) providerFields(ctx context.Context, cachable bool) ([]field.Field, error) {
	s.mu.RLock()
	regs := slices.Clone(s.providers)
	s.mu.RUnlock()

	var out []field.Field
	for i, r := range regs {
		if r.cachable != cachable {
			continue
		}
		fields, err := r.provider.ProvidedFields(ctx)
		if err != nil {
			return nil, fmt.Errorf("provider #%d fields: %w", i, err)
		}
		out = append(out, fields...)
	}
	return out, nil
}

func (s *Service) observe(source string, start time.Time, persisted, ephemeral int) {
	if s.buildDuration != nil {
		s.buildDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
	if s.fieldsGauge != nil {
		s.fieldsGauge.WithLabelValues("persisted").Set(float64(persisted))
		s.fieldsGauge.WithLabelValues("ephemeral").Set(float64(ephemeral))
	}
}

// recoverable reports cache errors that a rebuild fixes.
func recoverable(err error) bool {
	return errors.Is(err, domain.ErrCacheMiss) || errors.Is(err, domain.ErrCacheCorrupt)
}
