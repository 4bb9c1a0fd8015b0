// Package collector extracts field values from objects using the field
// catalog and the registered providers.
package collector

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/entity"
)

// Extraction modes, used as metric label.
const (
	ModePush   = "push"
	ModeSingle = "single"
)

// Collector accumulates field values over one pass of pushed objects.
// Not safe for concurrent use; concurrent passes need separate collectors.
type Collector struct {
	dict     Dictionary
	entities Entities
	logger   *zap.Logger
	baseLog  *zap.Logger

	passID string
	data   map[string]*collected.Data
	// source class per field; empty when the value came from a provider
	source map[string]string

	extractions *prometheus.CounterVec
}

// New creates a collector with an empty pass.
func New(dict Dictionary, entities Entities, logger *zap.Logger) *Collector {
	c := &Collector{dict: dict, entities: entities, baseLog: logger}
	c.reset()
	return c
}

// WithMetrics attaches an extraction counter with labels "mode" and "status".
func (c *Collector) WithMetrics(extractions *prometheus.CounterVec) *Collector {
	c.extractions = extractions
	return c
}

// PassID identifies the current pass in logs.
func (c *Collector) PassID() string { return c.passID }

// FieldCount returns the number of fields collected so far.
func (c *Collector) FieldCount() int { return len(c.data) }

// Clear drops everything collected and starts a new pass.
func (c *Collector) Clear() {
	c.reset()
}

func (c *Collector) reset() {
	c.passID = uuid.NewString()
	c.logger = c.baseLog.With(zap.String("pass_id", c.passID))
	c.data = make(map[string]*collected.Data)
	c.source = make(map[string]string)
}

// PushObject adds the values obj contributes. Values from a declared field of
// the same class as the value already held are merged by type; a different
// class replaces them. Provider values always replace. A getter or provider
// failure stops the push, keeping the fields written before it.
func (c *Collector) PushObject(ctx context.Context, obj any, ignoreNull bool) (err error) {
	defer func() { c.count(ModePush, err) }()

	if !entity.IsObject(obj) {
		return fmt.Errorf("push %T: %w", obj, domain.ErrNotObject)
	}
	fields, err := c.dict.DeclaredFields(ctx)
	if err != nil {
		return fmt.Errorf("declared fields: %w", err)
	}

	for _, f := range fields {
		if !c.entities.IsA(obj, f.Class()) {
			continue
		}
		value, err := c.entities.Call(obj, f.Getter())
		if err != nil {
			return fmt.Errorf("collect %s from %s: %w", f.Name(), f.Class(), err)
		}
		if value == nil && ignoreNull {
			continue
		}

		d, ok := c.data[f.Name()]
		if !ok || c.source[f.Name()] != f.Class() {
			d, err = collected.New(f.Name())
			if err != nil {
				return err
			}
			c.data[f.Name()] = d
			c.source[f.Name()] = f.Class()
		}
		if err := d.Add(f.Type(), value); err != nil {
			return err
		}
	}

	for i, p := range c.dict.Providers() {
		records, err := p.ExtractData(ctx, obj)
		if err != nil {
			return fmt.Errorf("provider #%d: %w", i, err)
		}
		for _, rec := range records {
			if rec == nil {
				continue
			}
			c.data[rec.Field()] = rec.Clone()
			c.source[rec.Field()] = ""
		}
	}

	c.logger.Debug("Object collected",
		zap.String("object", fmt.Sprintf("%T", obj)),
		zap.Int("fields", len(c.data)),
	)
	return nil
}

// Collected returns one value per collected field: the value of the first
// type in types that the field holds. types defaults to string. Namespaced
// names are nested.
func (c *Collector) Collected(types ...field.Type) (map[string]any, error) {
	types, err := requestedTypes(types)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]any, len(c.data))
	for name, d := range c.data {
		if v, _, ok := d.First(types); ok {
			flat[name] = v
		}
	}
	return Unflatten(flat), nil
}

// ForSingleObject extracts obj on its own without touching the pass. For each
// field the most preferred type in types wins; between records of equal
// preference the first in catalog order wins. Providers are not consulted.
func (c *Collector) ForSingleObject(ctx context.Context, obj any, ignoreNull bool, types ...field.Type) (out map[string]any, err error) {
	defer func() { c.count(ModeSingle, err) }()

	if !entity.IsObject(obj) {
		return nil, fmt.Errorf("extract %T: %w", obj, domain.ErrNotObject)
	}
	types, err = requestedTypes(types)
	if err != nil {
		return nil, err
	}
	fields, err := c.dict.DeclaredFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("declared fields: %w", err)
	}

	flat := make(map[string]any)
	rank := make(map[string]int)
	for _, f := range fields {
		r := slices.Index(types, f.Type())
		if r < 0 {
			continue
		}
		if !c.entities.IsA(obj, f.Class()) {
			continue
		}
		if prev, ok := rank[f.Name()]; ok && r >= prev {
			continue
		}

		value, err := c.entities.Call(obj, f.Getter())
		if err != nil {
			return nil, fmt.Errorf("collect %s from %s: %w", f.Name(), f.Class(), err)
		}
		if value == nil && ignoreNull {
			continue
		}
		rank[f.Name()] = r
		flat[f.Name()] = value
	}
	return Unflatten(flat), nil
}

func (c *Collector) count(mode string, err error) {
	if c.extractions == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.extractions.WithLabelValues(mode, status).Inc()
}

func requestedTypes(types []field.Type) ([]field.Type, error) {
	if len(types) == 0 {
		return []field.Type{field.String}, nil
	}
	for _, t := range types {
		if _, err := field.ParseType(string(t)); err != nil {
			return nil, err
		}
	}
	return types, nil
}
