package dataextract

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type classSample struct {
	name   string
	sample any
}

type providerEntry struct {
	provider  Provider
	cacheable bool
}

type clientConfig struct {
	driver   string // "file" or "redis"
	dir      string
	addrs    []string
	password string
	cacheKey string
	debug    bool

	classes     []classSample
	yaml        [][]byte
	yamlFiles   []string
	expressions []Expression
	providers   []providerEntry
	clock       bool

	embedder       Embedder
	embeddingModel string

	keepNulls bool

	logger     *slog.Logger
	zapLogger  *zap.Logger
	metricsReg prometheus.Registerer
}

// WithFileCache persists the field catalog as a file under dir.
func WithFileCache(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "file"
		c.dir = dir
	})
}

// WithRedis persists the field catalog in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCacheKey overrides the key the catalog is stored under.
// Processes sharing a store but not a class set need distinct keys.
func WithCacheKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheKey = key
	})
}

// WithDebug disables catalog caching: every catalog read rescans metadata.
func WithDebug() Option {
	return optionFunc(func(c *clientConfig) {
		c.debug = true
	})
}

// WithClass registers a class under name. sample is a value or pointer of
// the class type; interface classes are registered with a nil pointer to
// the interface, e.g. (*Named)(nil).
func WithClass(name string, sample any) Option {
	return optionFunc(func(c *clientConfig) {
		c.classes = append(c.classes, classSample{name: name, sample: sample})
	})
}

// WithMetadataYAML adds a YAML metadata document. Struct tags are read
// first, then YAML documents in the order given.
func WithMetadataYAML(data []byte) Option {
	return optionFunc(func(c *clientConfig) {
		c.yaml = append(c.yaml, data)
	})
}

// WithMetadataFile adds a YAML metadata file, read when the client is created.
func WithMetadataFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.yamlFiles = append(c.yamlFiles, path)
	})
}

// WithExpression adds a computed field. Expression fields are cached with
// the declared catalog.
func WithExpression(e Expression) Option {
	return optionFunc(func(c *clientConfig) {
		c.expressions = append(c.expressions, e)
	})
}

// WithProvider adds a custom field provider. A cacheable provider must list
// the same fields on every call.
func WithProvider(p Provider, cacheable bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.providers = append(c.providers, providerEntry{provider: p, cacheable: cacheable})
	})
}

// WithClock adds the export.* fields stamped at extraction time.
func WithClock() Option {
	return optionFunc(func(c *clientConfig) {
		c.clock = true
	})
}

// WithEmbedder adds the embedding.* fields, computed for objects exposing
// a Text() string method.
func WithEmbedder(e Embedder, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.embeddingModel = model
	})
}

// WithNullValues keeps fields whose getter returned nil. By default they
// are left out of the result.
func WithNullValues() Option {
	return optionFunc(func(c *clientConfig) {
		c.keepNulls = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithZapLogger routes the engine's own logs (catalog builds, passes) to l.
// Silent by default.
func WithZapLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.zapLogger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
