package catalogcache

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/db"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// mockKVStore is an in-memory store with optional hooks and call counters.
type mockKVStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	getCalls int
	setCalls int
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte) error
	existsFn func(ctx context.Context, key string) (bool, error)
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte)}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	m.getCalls++
	fn := m.getFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.setCalls++
	fn := m.setFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockKVStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockKVStore) gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

func newTestCache(t *testing.T, debug bool) (*Cache, *mockKVStore) {
	t.Helper()
	ms := newMockKVStore()
	return New(ms, Options{Debug: debug}, nil, zap.NewNop()), ms
}

func sampleCatalog(t *testing.T) []field.Field {
	t.Helper()
	name, err := field.NewDeclared("name", field.String, "demo.Customer", "Name")
	if err != nil {
		t.Fatal(err)
	}
	since, err := field.NewDeclared("customer.since", field.DateTime, "demo.Customer", "Since")
	if err != nil {
		t.Fatal(err)
	}
	return []field.Field{
		name,
		since,
		field.MustNew("export.extracted_at", field.DateTime),
	}
}
