package services

import (
	"context"
	"fmt"

	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/metrics"
)

// Lock rejection kinds, used as the metrics label.
const (
	KindMeal    = "meal"
	KindExpense = "expense"
	KindDeposit = "deposit"
)

// LockGuard rejects mutations dated in a locked month. A period with no month
// record is unlocked. Call it with a transaction-bound reader so the check and
// the write commit together.
type LockGuard struct {
	months MonthReader
}

func NewLockGuard(months MonthReader) *LockGuard {
	return &LockGuard{months: months}
}

// AssertUnlocked returns a *core.MonthLockedError if period is locked.
func (g *LockGuard) AssertUnlocked(ctx context.Context, period core.Period) error {
	m, err := g.months.GetMonth(ctx, period)
	if core.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check month lock: %w", err)
	}
	if m.Locked() {
		return &core.MonthLockedError{Period: period}
	}
	return nil
}

// guard runs AssertUnlocked for the period of date and records rejections.
func (g *LockGuard) guard(ctx context.Context, kind string, date core.Date) error {
	err := g.AssertUnlocked(ctx, date.Period())
	if core.IsLocked(err) {
		metrics.LockRejections.WithLabelValues(kind).Inc()
		log.FromContext(ctx).WithComponent(log.ComponentLock).WarnContext(ctx, "Mutation rejected, month locked",
			"kind", kind,
			log.FieldPeriod, date.Period().String(),
			log.FieldDate, date.String())
	}
	return err
}
