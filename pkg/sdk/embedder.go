package dataextract

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/dataextract/internal/domain"
)

// Embedder converts text to vector embeddings.
// If it also has a HealthCheck(ctx) error method, Health reports on it.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	Model        string
	PromptTokens int
	TotalTokens  int
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		Model:        r.Model,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck forwards to the wrapped embedder when it can check itself.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	hc, ok := a.inner.(interface {
		HealthCheck(ctx context.Context) error
	})
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx)
}
