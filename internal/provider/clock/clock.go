// Package clock stamps extractions with the time they ran.
package clock

import (
	"context"
	"time"

	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
)

// FieldExtractedAt holds the extraction time as datetime and as RFC 3339 string.
const FieldExtractedAt = "export.extracted_at"

// Compile-time check: Provider implements provider.Provider.
var _ provider.Provider = (*Provider)(nil)

// Provider stamps every object with the current time.
type Provider struct {
	now func() time.Time
}

// New creates a clock provider. A nil now uses time.Now.
func New(now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{now: now}
}

// ProvidedFields implements provider.Provider.
func (p *Provider) ProvidedFields(_ context.Context) ([]field.Field, error) {
	return []field.Field{
		field.MustNew(FieldExtractedAt, field.DateTime),
		field.MustNew(FieldExtractedAt, field.String),
	}, nil
}

// ExtractData implements provider.Provider.
func (p *Provider) ExtractData(_ context.Context, _ any) ([]*collected.Data, error) {
	ts := p.now().UTC()
	d, err := collected.Of(FieldExtractedAt, field.DateTime, ts)
	if err != nil {
		return nil, err
	}
	if err := d.Add(field.String, ts.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return []*collected.Data{d}, nil
}
