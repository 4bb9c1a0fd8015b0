package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Embedding = EmbeddingConfig{
		APIKey: "test-key",
		Model:  "text-embedding-3-small",
		Budget: BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `providers.embedding.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"", "warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Providers.Embedding.Budget.Action = action
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_CacheDriver(t *testing.T) {
	tests := []struct {
		name    string
		cache   CacheConfig
		wantErr string
	}{
		{"file", CacheConfig{Driver: "file"}, ""},
		{"redis", CacheConfig{Driver: "redis", Redis: RedisConfig{Addrs: []string{"localhost:6379"}}}, ""},
		{"redis without addrs", CacheConfig{Driver: "redis"}, "cache.redis.addrs is required"},
		{"unknown", CacheConfig{Driver: "memcached"}, "cache.driver must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache = tt.cache
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_EmbeddingRequiresKey(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Embedding.Model = "text-embedding-3-small"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for model without api key")
	}
}

func TestValidate_Port(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for port 0")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Logging: LoggingConfig{File: "/var/log/dataextract.log"}}
	cfg.ApplyDefaults()

	if cfg.Cache.Driver != CacheDriverFile {
		t.Errorf("Cache.Driver = %q, expected file", cfg.Cache.Driver)
	}
	if cfg.Cache.Dir == "" {
		t.Error("Cache.Dir must default to a temp directory")
	}
	if cfg.HTTP.MaxBatchSize != 500 {
		t.Errorf("HTTP.MaxBatchSize = %d, expected 500", cfg.HTTP.MaxBatchSize)
	}
	if cfg.Logging.MaxSizeMB != 100 || cfg.Logging.MaxBackups != 5 || cfg.Logging.MaxAgeDays != 30 {
		t.Errorf("unexpected rotation defaults %+v", cfg.Logging)
	}
}

func TestParse(t *testing.T) {
	t.Setenv("DATAEXTRACT_TEST_PORT", "9090")
	data := []byte(`
http:
  port: ${DATAEXTRACT_TEST_PORT}
cache:
  driver: ${DATAEXTRACT_TEST_DRIVER:-file}
  dir: /tmp/catalog
  debug: true
metadata:
  yaml_files:
    - config/metadata.yaml
providers:
  clock:
    enabled: true
  expressions:
    - field: order.gross
      type: float
      class: demo.Order
      expr: obj.Total * 1.21
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("HTTP.Port = %d, expected 9090", cfg.HTTP.Port)
	}
	if cfg.Cache.Driver != "file" || !cfg.Cache.Debug || cfg.Cache.Dir != "/tmp/catalog" {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if len(cfg.Metadata.YAMLFiles) != 1 {
		t.Errorf("expected 1 metadata file, got %d", len(cfg.Metadata.YAMLFiles))
	}
	if !cfg.Providers.Clock.Enabled {
		t.Error("expected clock provider enabled")
	}
	if len(cfg.Providers.Expressions) != 1 || cfg.Providers.Expressions[0].Class != "demo.Order" {
		t.Errorf("unexpected expressions %+v", cfg.Providers.Expressions)
	}
	if cfg.Providers.Embedding.Enabled() {
		t.Error("embedding must be disabled without a model")
	}
}

func TestParse_InvalidExpressionRule(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 8080\nproviders:\n  expressions:\n    - field: x\n"))
	if err == nil {
		t.Fatal("expected error for incomplete expression rule")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 8081\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("HTTP.Port = %d, expected 8081", cfg.HTTP.Port)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DATAEXTRACT_TEST_SET", "value")
	got := string(expandEnvVars([]byte("a: ${DATAEXTRACT_TEST_SET}\nb: ${DATAEXTRACT_TEST_UNSET:-fallback}\nc: ${DATAEXTRACT_TEST_UNSET}")))
	want := "a: value\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars = %q, want %q", got, want)
	}
}
