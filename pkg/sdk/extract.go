package dataextract

import (
	"context"
	"time"

	"github.com/kailas-cloud/dataextract/internal/usecase/collector"
)

// Extract returns the declared fields of obj, nested by namespace. Each
// field holds the value of the first of types it has; with no types only
// string values are returned. Providers are not consulted: use a Pass for
// computed fields.
func (c *Client) Extract(ctx context.Context, obj any, types ...FieldType) (data map[string]any, err error) {
	start := time.Now()
	defer func() { c.obs.observe("extract", start, err) }()

	return c.newCollector().ForSingleObject(ctx, obj, !c.keepNulls, types...)
}

// NewPass starts an empty multi-object extraction.
func (c *Client) NewPass() *Pass {
	return &Pass{col: c.newCollector(), keepNulls: c.keepNulls, obs: c.obs}
}

func (c *Client) newCollector() *collector.Collector {
	return collector.New(c.dict, c.registry, c.logger)
}

// Pass accumulates fields over several objects. Objects pushed later
// override earlier values unless both come from the same class, in which
// case values of other types are merged. Not safe for concurrent use.
type Pass struct {
	col       *collector.Collector
	keepNulls bool
	obs       *observer
}

// ID identifies the pass in logs. It changes on Clear.
func (p *Pass) ID() string { return p.col.PassID() }

// Len returns the number of fields collected so far.
func (p *Pass) Len() int { return p.col.FieldCount() }

// Push adds the fields obj contributes. On error the fields written before
// the failing getter or provider are kept.
func (p *Pass) Push(ctx context.Context, obj any) (err error) {
	start := time.Now()
	defer func() { p.obs.observe("pass.push", start, err) }()

	return p.col.PushObject(ctx, obj, !p.keepNulls)
}

// Result returns the collected fields, nested by namespace, choosing for
// each field the first of types it holds. types defaults to string.
func (p *Pass) Result(types ...FieldType) (map[string]any, error) {
	return p.col.Collected(types...)
}

// Clear drops everything collected and starts a new pass.
func (p *Pass) Clear() { p.col.Clear() }
