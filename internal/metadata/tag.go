// Package metadata provides declarative field metadata sources.
package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kailas-cloud/dataextract/internal/domain/element"
)

// TypeResolver resolves class identifiers to Go types.
type TypeResolver interface {
	Type(class string) (reflect.Type, error)
}

// TagReader reads elements from `dataextract` tags on blank marker fields.
type TagReader struct {
	types TypeResolver
	memo  sync.Map // class -> []element.Element
}

// NewTagReader creates a struct tag reader.
func NewTagReader(types TypeResolver) *TagReader {
	return &TagReader{types: types}
}

// Elements returns the elements declared on class, in field order.
func (r *TagReader) Elements(class string) ([]element.Element, error) {
	if cached, ok := r.memo.Load(class); ok {
		return cached.([]element.Element), nil
	}

	t, err := r.types.Type(class)
	if err != nil {
		return nil, fmt.Errorf("resolve class: %w", err)
	}

	var out []element.Element
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.Name != "_" {
				continue
			}
			tag, ok := sf.Tag.Lookup(element.Tag)
			if !ok {
				continue
			}
			els, err := element.ParseTag(tag)
			if err != nil {
				return nil, fmt.Errorf("class %s field #%d: %w", class, i, err)
			}
			out = append(out, els...)
		}
	}

	r.memo.Store(class, out)
	return out, nil
}
