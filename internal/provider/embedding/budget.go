package embedding

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/metrics"
)

// BudgetAction defines behavior when the token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning and lets the request through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the extraction with domain.ErrEmbeddingQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// ParseBudgetAction validates a configured action. Empty means warn.
func ParseBudgetAction(s string) (BudgetAction, error) {
	switch BudgetAction(s) {
	case "", BudgetActionWarn:
		return BudgetActionWarn, nil
	case BudgetActionReject:
		return BudgetActionReject, nil
	default:
		return "", fmt.Errorf("unknown budget action %q", s)
	}
}

// Budget is an in-process daily token budget. A zero limit is unlimited.
// Counters live for the process lifetime only.
type Budget struct {
	mu        sync.Mutex
	used      int64
	limit     int64
	action    BudgetAction
	lastReset time.Time
	now       func() time.Time
	logger    *zap.Logger
}

// NewBudget creates a daily budget.
func NewBudget(dailyLimit int64, action BudgetAction, logger *zap.Logger) *Budget {
	b := &Budget{limit: dailyLimit, action: action, now: time.Now, logger: logger}
	b.lastReset = truncateToDay(b.now().UTC())
	return b
}

// Check reports whether another request may be issued.
func (b *Budget) Check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	if b.limit == 0 || b.used < b.limit {
		return nil
	}
	metrics.EmbeddingBudgetExceededTotal.WithLabelValues(string(b.action)).Inc()
	if b.action == BudgetActionReject {
		return domain.ErrEmbeddingQuotaExceeded
	}

	b.logger.Warn("Embedding token budget exceeded",
		zap.Int64("daily_used", b.used),
		zap.Int64("daily_limit", b.limit),
	)
	return nil
}

// Record adds consumed tokens.
func (b *Budget) Record(tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	b.used += tokens
}

// Remaining returns tokens left today, or -1 when unlimited.
func (b *Budget) Remaining() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	if b.limit == 0 {
		return -1
	}
	return max(b.limit-b.used, 0)
}

// resetIfNeeded zeroes the counter when the day rolls over.
func (b *Budget) resetIfNeeded() {
	today := truncateToDay(b.now().UTC())
	if today.After(b.lastReset) {
		b.used = 0
		b.lastReset = today
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
