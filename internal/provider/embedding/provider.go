// Package embedding provides fields derived from a text embedding of the
// object: its dimensionality, its L2 norm and the model that produced it.
package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/collected"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	"github.com/kailas-cloud/dataextract/internal/domain/provider"
)

// Provided field names.
const (
	FieldDimensions = "embedding.dimensions"
	FieldNorm       = "embedding.norm"
	FieldModel      = "embedding.model"
	FieldTokens     = "embedding.tokens"
)

// Compile-time check: Provider implements provider.Provider.
var _ provider.Provider = (*Provider)(nil)

// Provider embeds objects implementing provider.Texter. Its field list is
// empty until a model is configured, so it is registered as non-cacheable.
type Provider struct {
	embedder domain.Embedder
	model    string
	budget   *Budget
	logger   *zap.Logger
}

// New creates the provider. budget may be nil.
func New(embedder domain.Embedder, model string, budget *Budget, logger *zap.Logger) *Provider {
	return &Provider{embedder: embedder, model: model, budget: budget, logger: logger}
}

// ProvidedFields lists the embedding fields, or none without a model.
func (p *Provider) ProvidedFields(_ context.Context) ([]field.Field, error) {
	if p.embedder == nil || p.model == "" {
		return nil, nil
	}
	return []field.Field{
		field.MustNew(FieldDimensions, field.Integer),
		field.MustNew(FieldNorm, field.Float),
		field.MustNew(FieldModel, field.String),
		field.MustNew(FieldTokens, field.Integer),
	}, nil
}

// ExtractData embeds the text of obj. Objects without text yield nothing.
func (p *Provider) ExtractData(ctx context.Context, obj any) ([]*collected.Data, error) {
	if p.embedder == nil || p.model == "" {
		return nil, nil
	}
	texter, ok := obj.(provider.Texter)
	if !ok {
		return nil, nil
	}
	text := strings.TrimSpace(texter.Text())
	if text == "" {
		return nil, nil
	}

	if p.budget != nil {
		if err := p.budget.Check(); err != nil {
			return nil, fmt.Errorf("embed %T: %w", obj, err)
		}
	}

	res, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed %T: %w", obj, err)
	}
	if p.budget != nil {
		p.budget.Record(int64(res.TotalTokens))
	}
	domain.UsageFromContext(ctx).Record(res.TotalTokens)

	model := res.Model
	if model == "" {
		model = p.model
	}

	p.logger.Debug("Object embedded",
		zap.String("object", fmt.Sprintf("%T", obj)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("tokens", res.TotalTokens),
	)

	return records(
		rec{FieldDimensions, field.Integer, len(res.Embedding)},
		rec{FieldNorm, field.Float, norm(res.Embedding)},
		rec{FieldModel, field.String, model},
		rec{FieldTokens, field.Integer, res.TotalTokens},
	)
}

type rec struct {
	name  string
	ft    field.Type
	value any
}

func records(rs ...rec) ([]*collected.Data, error) {
	out := make([]*collected.Data, 0, len(rs))
	for _, r := range rs {
		d, err := collected.Of(r.name, r.ft, r.value)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
