package chi

import (
	"context"

	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/usecase/collector"
	"github.com/kailas-cloud/dataextract/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/dataextract/internal/usecase/health"
)

// Dictionary serves the field catalog.
type Dictionary interface {
	collector.Dictionary
	AvailableFields(ctx context.Context, types ...field.Type) ([]string, error)
	Catalog(ctx context.Context) (dictionary.Catalog, error)
	WarmUp(ctx context.Context) error
}

// CatalogCache drops the persisted catalog.
type CatalogCache interface {
	ClearCache(ctx context.Context) error
}

// Classes instantiates registered classes and dispatches getters on them.
type Classes interface {
	collector.Entities
	New(class string) (any, error)
	Classes() []string
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
