package domain

import "context"

type usageKey struct{}

// EmbeddingUsage tallies the embedding work one batch extraction caused. The
// batch handler attaches it to the pass context, the embedding provider adds
// to it once per embedded object, and the handler reports it as headers.
type EmbeddingUsage struct {
	Tokens  int
	Objects int
}

// NewContextWithUsage attaches a fresh tally to ctx.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the tally attached to ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(usageKey{}).(*EmbeddingUsage)
	return u
}

// Record counts one embedded object. Zero-token results still count: the
// object went through the embedder.
func (u *EmbeddingUsage) Record(tokens int) {
	if u == nil {
		return
	}
	u.Objects++
	u.Tokens += tokens
}

// Embedded reports whether any object of the pass was embedded.
func (u *EmbeddingUsage) Embedded() bool {
	return u != nil && u.Objects > 0
}
