package dataextract

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
)

// Provider computes fields that are not declared on a class.
type Provider interface {
	// Fields lists every field Extract may return.
	Fields(ctx context.Context) ([]Field, error)
	// Extract returns the values obj contributes. A field may appear once
	// per type.
	Extract(ctx context.Context, obj any) ([]Value, error)
}

// providerAdapter wraps public Provider to satisfy internal provider.Provider.
type providerAdapter struct {
	inner Provider
}

var _ provider.Provider = (*providerAdapter)(nil)

func (a *providerAdapter) ProvidedFields(ctx context.Context) ([]field.Field, error) {
	fs, err := a.inner.Fields(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider fields: %w", err)
	}
	out := make([]field.Field, 0, len(fs))
	for _, f := range fs {
		ff, err := field.New(f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, ff)
	}
	return out, nil
}

func (a *providerAdapter) ExtractData(ctx context.Context, obj any) ([]*collected.Data, error) {
	vals, err := a.inner.Extract(ctx, obj)
	if err != nil {
		return nil, fmt.Errorf("provider extract: %w", err)
	}

	var out []*collected.Data
	byName := make(map[string]*collected.Data, len(vals))
	for _, v := range vals {
		d, ok := byName[v.Field]
		if !ok {
			d, err = collected.New(v.Field)
			if err != nil {
				return nil, err
			}
			byName[v.Field] = d
			out = append(out, d)
		}
		if err := d.Add(v.Type, v.Value); err != nil {
			return nil, err
		}
	}
	return out, nil
}
