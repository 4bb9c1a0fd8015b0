package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	CacheDriverFile  = "file"
	CacheDriverRedis = "redis"
)

// Config holds the dataextract configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	Providers ProvidersConfig `yaml:"providers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // optional, rotated with lumberjack
	// Rotation limits, used only with File.
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBatchSize    int `yaml:"max_batch_size"`
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// CacheConfig selects where the field catalog is persisted.
type CacheConfig struct {
	Driver string      `yaml:"driver"` // file, redis (default: file)
	Dir    string      `yaml:"dir"`    // file driver only
	Key    string      `yaml:"key"`
	Debug  bool        `yaml:"debug"` // disables caching
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// MetadataConfig lists declarative metadata sources besides struct tags.
type MetadataConfig struct {
	YAMLFiles []string `yaml:"yaml_files"`
}

// ProvidersConfig configures the built-in field providers.
type ProvidersConfig struct {
	Embedding   EmbeddingConfig    `yaml:"embedding"`
	Expressions []ExpressionConfig `yaml:"expressions"`
	Clock       ClockConfig        `yaml:"clock"`
}

// EmbeddingConfig holds the embedding provider settings. Disabled without a model.
type EmbeddingConfig struct {
	Provider   string       `yaml:"provider"` // metric label, e.g. openai, nebius
	APIKey     string       `yaml:"api_key"`
	BaseURL    string       `yaml:"base_url"`
	Model      string       `yaml:"model"`
	Dimensions int          `yaml:"dimensions"`
	Budget     BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit int64  `yaml:"daily_token_limit"` // 0 = unlimited
	Action          string `yaml:"action"`            // "reject" | "warn" (default)
}

// ExpressionConfig declares a field computed by an expr-lang expression over
// objects of class; the object is bound to the variable "obj".
type ExpressionConfig struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"` // default: string
	Class string `yaml:"class"`
	Expr  string `yaml:"expr"`
}

// ClockConfig toggles the extraction timestamp provider.
type ClockConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Enabled reports whether the embedding provider is configured.
func (e EmbeddingConfig) Enabled() bool { return e.Model != "" }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables, decodes, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBatchSize <= 0 {
		c.HTTP.MaxBatchSize = 500
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 4 << 20
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheDriverFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = filepath.Join(os.TempDir(), "dataextract")
	}
	if c.Cache.Redis.ReadinessTimeout <= 0 {
		c.Cache.Redis.ReadinessTimeout = 10
	}
	if c.Providers.Embedding.Provider == "" {
		c.Providers.Embedding.Provider = "openai"
	}
	if c.Logging.File != "" {
		if c.Logging.MaxSizeMB <= 0 {
			c.Logging.MaxSizeMB = 100
		}
		if c.Logging.MaxBackups <= 0 {
			c.Logging.MaxBackups = 5
		}
		if c.Logging.MaxAgeDays <= 0 {
			c.Logging.MaxAgeDays = 30
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case CacheDriverFile:
	case CacheDriverRedis:
		if len(c.Cache.Redis.Addrs) == 0 {
			return fmt.Errorf("cache.redis.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver must be %q or %q, got %q", CacheDriverFile, CacheDriverRedis, c.Cache.Driver)
	}
	switch c.Providers.Embedding.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"providers.embedding.budget.action must be \"warn\" or \"reject\", got %q",
			c.Providers.Embedding.Budget.Action,
		)
	}
	if c.Providers.Embedding.Enabled() && c.Providers.Embedding.APIKey == "" {
		return fmt.Errorf("providers.embedding.api_key is required when a model is set")
	}
	for i, r := range c.Providers.Expressions {
		if r.Field == "" || r.Class == "" || r.Expr == "" {
			return fmt.Errorf("providers.expressions[%d]: field, class and expr are required", i)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
