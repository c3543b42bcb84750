package services

import (
	"context"
	"fmt"

	"mealbook/internal/core"

	"github.com/shopspring/decimal"
)

// ExpenseAggregator sums shared expenses over a period.
type ExpenseAggregator struct {
	src ExpenseSource
}

func NewExpenseAggregator(src ExpenseSource) *ExpenseAggregator {
	return &ExpenseAggregator{src: src}
}

func (a *ExpenseAggregator) TotalExpense(ctx context.Context, period core.Period) (decimal.Decimal, error) {
	total, err := a.src.SumExpenses(ctx, period.Filter())
	if err != nil {
		return decimal.Zero, fmt.Errorf("aggregate expenses %s: %w", period, err)
	}
	return total, nil
}
