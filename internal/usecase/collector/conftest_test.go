package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
	"github.com/kailas-cloud/dataextract/internal/entity"
)

// --- Fixtures ---

var errLedgerOffline = errors.New("ledger offline")

type customer struct {
	name     string
	since    time.Time
	nickname *string
	balance  float64
}

func (c *customer) Name() string             { return c.name }
func (c *customer) Since() time.Time         { return c.since }
func (c *customer) Nickname() *string        { return c.nickname }
func (c *customer) Balance() float64         { return c.balance }
func (c *customer) Ledger() (float64, error) { return 0, errLedgerOffline }

type vip struct {
	customer
	tier int
}

func (v *vip) Tier() int { return v.tier }

type address struct {
	city string
	zip  string
}

func (a address) City() string { return a.city }
func (a address) Zip() string  { return a.zip }

func newRegistry(t *testing.T) *entity.Registry {
	t.Helper()
	r := entity.NewRegistry()
	r.MustRegister("customer", &customer{})
	r.MustRegister("vip", &vip{})
	r.MustRegister("address", address{})
	return r
}

type stubDictionary struct {
	fields    []field.Field
	providers []provider.Provider
	err       error
}

func (d *stubDictionary) DeclaredFields(_ context.Context) ([]field.Field, error) {
	return d.fields, d.err
}

func (d *stubDictionary) Providers() []provider.Provider { return d.providers }

func declared(t *testing.T, name string, ft field.Type, class, getter string) field.Field {
	t.Helper()
	f, err := field.NewDeclared(name, ft, class, getter)
	if err != nil {
		t.Fatalf("field.NewDeclared: %v", err)
	}
	return f
}

func newCollector(t *testing.T, fields ...field.Field) (*Collector, *stubDictionary) {
	t.Helper()
	dict := &stubDictionary{fields: fields}
	return New(dict, newRegistry(t), zap.NewNop()), dict
}

func strPtr(s string) *string { return &s }
