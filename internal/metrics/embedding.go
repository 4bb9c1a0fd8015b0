package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics of the embedder behind the embedding field provider. The provider
// label names the backend (openai, ollama, ...), model the configured model.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dataextract",
			Subsystem: "embedding",
			Name:      "requests_total",
			Help:      "Embedding calls made while extracting embedding.* fields",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dataextract",
			Subsystem: "embedding",
			Name:      "request_duration_seconds",
			Help:      "Latency of one embedding call",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dataextract",
			Subsystem: "embedding",
			Name:      "tokens_total",
			Help:      "Tokens billed for embedded object text",
		},
		[]string{"provider", "model", "type"}, // type: "prompt" / "total"
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dataextract",
			Subsystem: "embedding",
			Name:      "errors_total",
			Help:      "Failed embedding calls by error kind",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingBudgetExceededTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dataextract",
			Subsystem: "embedding",
			Name:      "budget_exceeded_total",
			Help:      "Objects embedded or rejected past the daily token budget",
		},
		[]string{"action"}, // "warn" / "reject"
	)
)

var registerEmbedding sync.Once

// RegisterEmbeddingMetrics registers the embedder metrics on the default
// registry. Safe to call more than once.
func RegisterEmbeddingMetrics() {
	registerEmbedding.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingBudgetExceededTotal,
		)
	})
}
