package dictionary

import (
	"context"

	"github.com/kailas-cloud/dataextract/internal/domain/element"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// ElementReader returns the declarative metadata attached to a class.
type ElementReader interface {
	Elements(class string) ([]element.Element, error)
}

// EntitySource lists every class identifier that may carry metadata.
type EntitySource interface {
	Classes() []string
}

// CatalogCache persists the cacheable part of the catalog.
type CatalogCache interface {
	HasCache(ctx context.Context) bool
	GetCache(ctx context.Context) ([]field.Field, error)
	StoreInCache(ctx context.Context, fields []field.Field) error
	ClearCache(ctx context.Context) error
}
