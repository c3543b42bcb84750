package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mealbook/internal/cache"
	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/metrics"
	"mealbook/internal/storage"

	"github.com/shopspring/decimal"
)

// lockedReportCacheSize bounds the number of settled months kept in memory.
const lockedReportCacheSize = 24

// SettlementService computes month-end balances and locks the month.
type SettlementService struct {
	storage   *storage.SQLiteRepository
	publisher SettlementPublisher

	// Locked months never change, so their reports are cached.
	locked *cache.LRU[core.Period, core.MonthReport]
}

// NewSettlementService wires the engine. publisher may be nil.
func NewSettlementService(storage *storage.SQLiteRepository, publisher SettlementPublisher) *SettlementService {
	return &SettlementService{
		storage:   storage,
		publisher: publisher,
		locked:    cache.NewLRU[core.Period, core.MonthReport](lockedReportCacheSize),
	}
}

// Settle derives the month's meal rate and every active member's balance,
// stores one summary per member and locks the month. All of it happens in a
// single transaction: on any error nothing is written and the month keeps
// its previous state.
//
// Only active members' meals count towards the rate, so the summaries always
// account for exactly totalMeals meals and, up to rounding, totalCost.
func (s *SettlementService) Settle(ctx context.Context, period core.Period) (*core.Settlement, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	var result *core.Settlement
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		var err error
		result, err = settle(ctx, tx, period)
		return err
	})
	metrics.SettleDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.Settlements.WithLabelValues(settleResult(err)).Inc()
		return nil, err
	}
	metrics.Settlements.WithLabelValues(metrics.ResultOK).Inc()

	log.NewStructuredLogger(log.FromContext(ctx)).LogSettled(ctx,
		period.String(), result.MonthID,
		result.TotalMeals.String(), result.TotalCost.String(), result.MealRate.String(),
		len(result.Summaries))

	if err := s.publish(ctx, *result); err != nil {
		slog.ErrorContext(ctx, "Failed to publish settlement event",
			"period", period.String(), "error", err)
		// Don't fail the request - the month is settled locally
	}

	return result, nil
}

func settle(ctx context.Context, tx *storage.SQLiteRepository, period core.Period) (*core.Settlement, error) {
	month, err := tx.GetOrCreateMonth(ctx, period)
	if err != nil {
		return nil, err
	}
	if month.Locked() {
		return nil, core.ErrMonthAlreadyLocked
	}

	meals := NewMealAggregator(tx)
	expenses := NewExpenseAggregator(tx)
	deposits := NewDepositAggregator(tx)

	totalMeals, err := meals.ActiveMeals(ctx, period)
	if err != nil {
		return nil, err
	}
	totalCost, err := expenses.TotalExpense(ctx, period)
	if err != nil {
		return nil, err
	}
	if totalMeals.IsZero() {
		return nil, core.ErrZeroMeals
	}
	rate := core.MealRate(totalCost, totalMeals)

	members, err := tx.ListMembers(ctx, true)
	if err != nil {
		return nil, err
	}

	summaries := make([]core.MonthSummary, 0, len(members))
	for _, m := range members {
		memberMeals, err := meals.MemberMeals(ctx, m.ID, period)
		if err != nil {
			return nil, err
		}
		memberDeposit, err := deposits.MemberDeposit(ctx, m.ID, period)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, memberSummary(m, month.ID, memberMeals, memberDeposit, rate))
	}

	for _, sum := range summaries {
		if err := tx.UpsertMonthSummary(ctx, sum); err != nil {
			return nil, err
		}
	}
	if err := tx.LockMonth(ctx, month.ID); err != nil {
		return nil, err
	}

	return &core.Settlement{
		Period:     period,
		MonthID:    month.ID,
		TotalMeals: totalMeals,
		TotalCost:  totalCost,
		MealRate:   rate,
		Summaries:  summaries,
	}, nil
}

func memberSummary(m core.Member, monthID string, meals, deposit, rate decimal.Decimal) core.MonthSummary {
	cost := meals.Mul(rate)
	return core.MonthSummary{
		MemberID:     m.ID,
		MemberName:   m.Name,
		MonthID:      monthID,
		TotalMeals:   meals,
		TotalDeposit: deposit,
		TotalCost:    cost,
		Balance:      deposit.Sub(cost),
	}
}

// GetSummary returns the month's lock state and stored summaries, or nil if
// the period has never been settled or attempted.
func (s *SettlementService) GetSummary(ctx context.Context, period core.Period) (*core.MonthReport, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if report, ok := s.locked.Get(period); ok {
		metrics.ReportCache.WithLabelValues("hit").Inc()
		return copyReport(report), nil
	}
	metrics.ReportCache.WithLabelValues("miss").Inc()

	month, err := s.storage.GetMonth(ctx, period)
	if core.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get month summary: %w", err)
	}

	summaries, err := s.storage.ListMonthSummaries(ctx, month.ID)
	if err != nil {
		return nil, fmt.Errorf("get month summary: %w", err)
	}

	report := core.MonthReport{
		Period:    period,
		MonthID:   month.ID,
		Locked:    month.Locked(),
		Summaries: summaries,
	}
	if report.Locked {
		s.locked.Set(period, report)
	}
	return copyReport(report), nil
}

func copyReport(r core.MonthReport) *core.MonthReport {
	r.Summaries = append([]core.MonthSummary(nil), r.Summaries...)
	return &r
}

func (s *SettlementService) publish(ctx context.Context, result core.Settlement) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No settlement publisher configured, skipping event")
		return nil
	}
	if err := s.publisher.PublishMonthSettled(ctx, result); err != nil {
		metrics.EventsPublished.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

func settleResult(err error) string {
	switch {
	case errors.Is(err, core.ErrMonthAlreadyLocked):
		return metrics.ResultAlreadyLocked
	case errors.Is(err, core.ErrZeroMeals):
		return metrics.ResultZeroMeals
	default:
		return metrics.ResultError
	}
}
