// Package provider defines the contract for pluggable field providers.
package provider

import (
	"context"

	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// Provider computes fields that cannot be declared on a class, for example
// fields needing an external service.
type Provider interface {
	// ProvidedFields lists the fields this provider may emit (name and type only).
	ProvidedFields(ctx context.Context) ([]field.Field, error)
	// ExtractData returns collected values for obj. Fields it does not apply to are omitted.
	ExtractData(ctx context.Context, obj any) ([]*collected.Data, error)
}

// Texter is implemented by objects exposing free text to text-based providers.
type Texter interface {
	Text() string
}

// Func adapts plain functions to Provider.
type Func struct {
	Fields  func(ctx context.Context) ([]field.Field, error)
	Extract func(ctx context.Context, obj any) ([]*collected.Data, error)
}

// ProvidedFields implements Provider.
func (f Func) ProvidedFields(ctx context.Context) ([]field.Field, error) {
	if f.Fields == nil {
		return nil, nil
	}
	return f.Fields(ctx)
}

// ExtractData implements Provider.
func (f Func) ExtractData(ctx context.Context, obj any) ([]*collected.Data, error) {
	if f.Extract == nil {
		return nil, nil
	}
	return f.Extract(ctx, obj)
}
