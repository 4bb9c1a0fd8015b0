package dictionary

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/element"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
)

// --- Mocks ---

type stubEntities []string

func (s stubEntities) Classes() []string { return s }

type stubReader struct {
	elements map[string][]element.Element
	err      error
	calls    atomic.Int64
}

func (r *stubReader) Elements(class string) ([]element.Element, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return r.elements[class], nil
}

// mockCache mimics catalogcache.Cache without a backing store.
type mockCache struct {
	mu         sync.Mutex
	fields     []field.Field
	has        bool
	debug      bool
	getErr     error
	storeErr   error
	storeCalls int
	clearCalls int
}

func (m *mockCache) HasCache(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.debug && m.has
}

func (m *mockCache) GetCache(_ context.Context) ([]field.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.debug || !m.has {
		return nil, domain.ErrCacheMiss
	}
	return append([]field.Field(nil), m.fields...), nil
}

func (m *mockCache) StoreInCache(_ context.Context, fields []field.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeCalls++
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.debug {
		return nil
	}
	m.fields = append([]field.Field(nil), fields...)
	m.has = true
	return nil
}

func (m *mockCache) ClearCache(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	m.fields = nil
	m.has = false
	return nil
}

// --- Fixtures ---

func mustElement(t *testing.T, ft field.Type, getter string, fields ...string) element.Element {
	t.Helper()
	el, err := element.New(ft, fields, getter)
	if err != nil {
		t.Fatalf("element.New: %v", err)
	}
	return el
}

func staticProvider(fields ...field.Field) provider.Provider {
	return provider.Func{
		Fields: func(context.Context) ([]field.Field, error) { return fields, nil },
		Extract: func(context.Context, any) ([]*collected.Data, error) {
			return nil, nil
		},
	}
}

func newFixture(t *testing.T) (*Service, *stubReader, *mockCache) {
	t.Helper()
	reader := &stubReader{elements: map[string][]element.Element{
		"demo.Customer": {
			mustElement(t, field.String, "Name", "name", "customer.name"),
			mustElement(t, field.DateTime, "Since", "customer.since"),
		},
		"demo.Address": {
			mustElement(t, field.String, "City", "address.city"),
		},
	}}
	cache := &mockCache{}
	svc := New(reader, stubEntities{"demo.Customer", "demo.Address"}, cache, zap.NewNop())
	return svc, reader, cache
}

func providerFunc(fields func() []field.Field) provider.Provider {
	return provider.Func{
		Fields: func(context.Context) ([]field.Field, error) { return fields(), nil },
	}
}

func providerErr(err error) provider.Provider {
	return provider.Func{
		Fields: func(context.Context) ([]field.Field, error) { return nil, err },
	}
}
