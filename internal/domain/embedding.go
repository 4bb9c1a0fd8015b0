package domain

import "context"

// Embedder vectorizes text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the vector, the model that produced it and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	Model        string
	PromptTokens int
	TotalTokens  int
}
