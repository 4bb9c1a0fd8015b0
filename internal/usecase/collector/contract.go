package collector

import (
	"context"

	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
)

// Dictionary supplies the declared catalog and the registered providers.
type Dictionary interface {
	DeclaredFields(ctx context.Context) ([]field.Field, error)
	Providers() []provider.Provider
}

// Entities answers is-a questions and invokes getters by name.
type Entities interface {
	IsA(obj any, class string) bool
	Call(obj any, getter string) (any, error)
}
