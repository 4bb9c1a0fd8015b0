// Package entity keeps the closed set of classes that carry field metadata.
//
// A class is a registered Go type under a stable identifier. The registry
// answers is-a questions and invokes getters through dispatch tables built
// once per concrete type, so no per-call method lookup by name happens.
package entity

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// FieldGetter lets an object serve getters itself. Returning an error wrapping
// domain.ErrUnknownGetter falls back to the object's methods.
type FieldGetter interface {
	GetField(getter string) (any, error)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type class struct {
	name string
	typ  reflect.Type
}

type getterFunc func(recv reflect.Value) (any, error)

// Registry maps class identifiers to Go types.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]class
	order   []string

	dispatch sync.Map // reflect.Type (pointer type) -> map[string]getterFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]class)}
}

// Register adds a class. sample is a value or pointer of a struct type, or a
// nil pointer to an interface type, e.g. (*Named)(nil).
func (r *Registry) Register(name string, sample any) error {
	if err := field.ValidateClass(name); err != nil {
		return err
	}
	if sample == nil {
		return fmt.Errorf("register %s: %w", name, domain.ErrNotObject)
	}

	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct && t.Kind() != reflect.Interface {
		return fmt.Errorf("register %s: %s is not a struct or interface: %w", name, t, domain.ErrNotObject)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[name]; ok {
		return fmt.Errorf("register %s: %w", name, domain.ErrAlreadyRegistered)
	}
	r.classes[name] = class{name: name, typ: t}
	r.order = append(r.order, name)

	if t.Kind() == reflect.Struct {
		r.table(reflect.PointerTo(t))
	}
	return nil
}

// MustRegister is Register for composition roots; it panics on error.
func (r *Registry) MustRegister(name string, sample any) {
	if err := r.Register(name, sample); err != nil {
		panic(err)
	}
}

// Classes returns registered class identifiers in registration order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Type returns the Go type registered for name.
func (r *Registry) Type(name string) (reflect.Type, error) {
	r.mu.RLock()
	c, ok := r.classes[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("class %s: %w", name, domain.ErrUnknownClass)
	}
	return c.typ, nil
}

// New returns a pointer to a fresh zero value of a struct class.
func (r *Registry) New(name string) (any, error) {
	t, err := r.Type(name)
	if err != nil {
		return nil, err
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("class %s is an interface and cannot be instantiated: %w", name, domain.ErrUnknownClass)
	}
	return reflect.New(t).Interface(), nil
}

// IsA reports whether obj is an instance of the class: the same type, a
// pointer to it, a struct embedding it, or an implementation of it when the
// class is an interface. Unknown classes match nothing.
func (r *Registry) IsA(obj any, name string) bool {
	if obj == nil {
		return false
	}
	t, err := r.Type(name)
	if err != nil {
		return false
	}
	return isA(reflect.TypeOf(obj), t)
}

func isA(t, target reflect.Type) bool {
	if target.Kind() == reflect.Interface {
		if t.Implements(target) {
			return true
		}
		return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(target)
	}
	return embeds(t, target, make(map[reflect.Type]bool))
}

// embeds walks anonymous fields; seen stops self-embedding types.
func embeds(t, target reflect.Type, seen map[reflect.Type]bool) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == target {
		return true
	}
	if t.Kind() != reflect.Struct || seen[t] {
		return false
	}
	seen[t] = true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && embeds(f.Type, target, seen) {
			return true
		}
	}
	return false
}

// IsObject reports whether v is an object: a struct or a non-nil pointer to one.
func IsObject(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Struct:
		return true
	case reflect.Pointer:
		return !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// Call invokes getter on obj. Typed nil results are normalized to nil.
func (r *Registry) Call(obj any, getter string) (any, error) {
	if !IsObject(obj) {
		return nil, domain.ErrNotObject
	}

	if fg, ok := obj.(FieldGetter); ok {
		v, err := fg.GetField(getter)
		if err == nil {
			return normalize(v), nil
		}
		if !errors.Is(err, domain.ErrUnknownGetter) {
			return nil, fmt.Errorf("get %s: %w", getter, err)
		}
	}

	recv := reflect.ValueOf(obj)
	if recv.Kind() != reflect.Pointer {
		p := reflect.New(recv.Type())
		p.Elem().Set(recv)
		recv = p
	}

	fn, ok := r.table(recv.Type())[getter]
	if !ok {
		return nil, fmt.Errorf("%s on %s: %w", getter, recv.Type().Elem(), domain.ErrUnknownGetter)
	}
	return fn(recv)
}

// table returns the dispatch table of a pointer-to-struct type, building it on first use.
func (r *Registry) table(pt reflect.Type) map[string]getterFunc {
	if cached, ok := r.dispatch.Load(pt); ok {
		return cached.(map[string]getterFunc)
	}

	tbl := make(map[string]getterFunc)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		mt := m.Type // receiver is In(0)
		if mt.NumIn() != 1 || mt.IsVariadic() {
			continue
		}
		var fn getterFunc
		switch {
		case mt.NumOut() == 1:
			idx := m.Index
			fn = func(recv reflect.Value) (any, error) {
				return normalizeValue(recv.Method(idx).Call(nil)[0]), nil
			}
		case mt.NumOut() == 2 && mt.Out(1) == errorType:
			idx, name := m.Index, m.Name
			fn = func(recv reflect.Value) (any, error) {
				out := recv.Method(idx).Call(nil)
				if !out[1].IsNil() {
					return nil, fmt.Errorf("get %s: %w", name, out[1].Interface().(error))
				}
				return normalizeValue(out[0]), nil
			}
		default:
			continue
		}
		tbl[m.Name] = guardEmbedded(promotionPath(pt.Elem(), m.Name), fn)
	}

	actual, _ := r.dispatch.LoadOrStore(pt, tbl)
	return actual.(map[string]getterFunc)
}

// promotionPath returns the field indices leading to the shallowest embedded
// field whose method set has name, or nil when no embedded field has it.
func promotionPath(t reflect.Type, name string) []int {
	type step struct {
		typ  reflect.Type
		path []int
	}
	level := []step{{typ: t}}
	seen := make(map[reflect.Type]bool)
	for len(level) > 0 {
		var next []step
		for _, s := range level {
			if seen[s.typ] {
				continue
			}
			seen[s.typ] = true
			for i := 0; i < s.typ.NumField(); i++ {
				f := s.typ.Field(i)
				if !f.Anonymous {
					continue
				}
				path := append(append([]int(nil), s.path...), i)
				if f.Type.Kind() == reflect.Interface {
					if _, ok := f.Type.MethodByName(name); ok {
						return path
					}
					continue
				}
				base := f.Type
				if base.Kind() == reflect.Pointer {
					base = base.Elem()
				}
				if _, ok := reflect.PointerTo(base).MethodByName(name); ok {
					return path
				}
				if base.Kind() == reflect.Struct {
					next = append(next, step{typ: base, path: path})
				}
			}
		}
		level = next
	}
	return nil
}

// guardEmbedded makes a getter promoted through a nil embedded pointer or
// interface yield nil, so it is treated like any other null value. A getter
// the struct declares itself still runs normally.
func guardEmbedded(path []int, fn getterFunc) getterFunc {
	if len(path) == 0 {
		return fn
	}
	return func(recv reflect.Value) (v any, err error) {
		if !nilAlong(recv.Elem(), path) {
			return fn(recv)
		}
		defer func() {
			if recover() != nil {
				v, err = nil, nil
			}
		}()
		return fn(recv)
	}
}

func nilAlong(v reflect.Value, path []int) bool {
	for _, i := range path {
		v = v.Field(i)
		switch v.Kind() {
		case reflect.Pointer:
			if v.IsNil() {
				return true
			}
			v = v.Elem()
		case reflect.Interface:
			return v.IsNil()
		}
	}
	return false
}

func normalize(v any) any {
	if v == nil {
		return nil
	}
	return normalizeValue(reflect.ValueOf(v))
}

func normalizeValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	case reflect.Invalid:
		return nil
	}
	return v.Interface()
}
