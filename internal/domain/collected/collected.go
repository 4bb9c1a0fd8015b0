// Package collected holds the per-pass value container for a single field.
package collected

import (
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// Data holds at most one value per type for one field name.
type Data struct {
	name   string
	values map[field.Type]any
}

// New validates name and creates an empty container.
func New(name string) (*Data, error) {
	if err := field.ValidateName(name); err != nil {
		return nil, err
	}
	return &Data{name: name, values: make(map[field.Type]any)}, nil
}

// Of is a convenience constructor for a single typed value.
func Of(name string, ft field.Type, value any) (*Data, error) {
	d, err := New(name)
	if err != nil {
		return nil, err
	}
	if err := d.Add(ft, value); err != nil {
		return nil, err
	}
	return d, nil
}

// Field returns the field name.
func (d *Data) Field() string { return d.name }

// Add stores value for ft, replacing any previous value of that type.
func (d *Data) Add(ft field.Type, value any) error {
	if _, err := field.ParseType(string(ft)); err != nil {
		return err
	}
	d.values[ft] = value
	return nil
}

// Has reports whether a value of type ft is held.
func (d *Data) Has(ft field.Type) (bool, error) {
	if _, err := field.ParseType(string(ft)); err != nil {
		return false, err
	}
	_, ok := d.values[ft]
	return ok, nil
}

// Get returns the value of type ft, or nil when absent.
func (d *Data) Get(ft field.Type) (any, error) {
	if _, err := field.ParseType(string(ft)); err != nil {
		return nil, err
	}
	return d.values[ft], nil
}

// First returns the value of the first type in types that is held.
// The order of types is the priority order.
func (d *Data) First(types []field.Type) (any, field.Type, bool) {
	for _, t := range types {
		if v, ok := d.values[t]; ok {
			return v, t, true
		}
	}
	return nil, "", false
}

// Types returns the held types in supported-type order.
func (d *Data) Types() []field.Type {
	var out []field.Type
	for _, t := range field.Types() {
		if _, ok := d.values[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns an independent copy.
func (d *Data) Clone() *Data {
	c := &Data{name: d.name, values: make(map[field.Type]any, len(d.values))}
	for k, v := range d.values {
		c.values[k] = v
	}
	return c
}
