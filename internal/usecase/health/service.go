package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the overall health of the extraction service.
type Status string

const (
	// Healthy means the catalog store and the embedder (if any) answer.
	Healthy Status = "ok"
	// Degraded means extraction still works: a failed catalog store only
	// forces a rebuild per request, a failed embedder only drops its fields.
	Degraded Status = "degraded"
	// Unhealthy is reported when no check could run at all.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one component check.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Component check names as they appear in reports.
const (
	CheckCacheStore = "cache_store"
	CheckEmbedding  = "embedding"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates check results. Errors keeps failure details for logs;
// it is not meant for clients.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Errors map[string]error
}

// Service checks the components an extraction depends on.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
	timeout   time.Duration
}

// New creates a Service. embedding can be nil.
func New(store StorePinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding, timeout: DefaultCheckTimeout}
}

// WithTimeout sets the per-check timeout; non-positive values keep the default.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs the component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]func(context.Context) error, 2)
	if s.store != nil {
		checks[CheckCacheStore] = s.store.Ping
	}
	if s.embedding != nil {
		checks[CheckEmbedding] = s.embedding.HealthCheck
	}
	if len(checks) == 0 {
		return Report{Status: Unhealthy, Checks: map[string]CheckResult{}}
	}

	var mu sync.Mutex
	report := Report{Checks: make(map[string]CheckResult, len(checks))}
	var g errgroup.Group
	for name, fn := range checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			err := fn(cctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Checks[name] = CheckError
				if report.Errors == nil {
					report.Errors = make(map[string]error)
				}
				report.Errors[name] = err
				return nil
			}
			report.Checks[name] = CheckOK
			return nil
		})
	}
	_ = g.Wait()

	report.Status = Healthy
	if len(report.Errors) > 0 {
		report.Status = Degraded
	}
	return report
}
