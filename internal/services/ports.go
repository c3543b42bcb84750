package services

import (
	"context"

	"mealbook/internal/core"

	"github.com/shopspring/decimal"
)

// Read-side ports. *storage.SQLiteRepository satisfies all of them, both on
// the shared pool and when bound to a transaction.
type (
	MealSource interface {
		SumMeals(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error)
	}

	ExpenseSource interface {
		SumExpenses(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error)
	}

	DepositSource interface {
		SumDeposits(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error)
	}

	// MonthReader returns core.ErrNotFound for a period with no month record.
	MonthReader interface {
		GetMonth(ctx context.Context, period core.Period) (core.Month, error)
	}
)

// SettlementPublisher announces a committed settlement. Implementations must
// not block the caller for long; failures are logged and swallowed.
type SettlementPublisher interface {
	PublishMonthSettled(ctx context.Context, s core.Settlement) error
}
