package services

import (
	"context"
	"fmt"

	"mealbook/internal/core"

	"github.com/shopspring/decimal"
)

// DepositAggregator sums member deposits over a period.
type DepositAggregator struct {
	src DepositSource
}

func NewDepositAggregator(src DepositSource) *DepositAggregator {
	return &DepositAggregator{src: src}
}

func (a *DepositAggregator) TotalDeposit(ctx context.Context, period core.Period) (decimal.Decimal, error) {
	return a.sum(ctx, period.Filter())
}

func (a *DepositAggregator) MemberDeposit(ctx context.Context, memberID string, period core.Period) (decimal.Decimal, error) {
	return a.sum(ctx, period.Filter().ForMember(memberID))
}

func (a *DepositAggregator) sum(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error) {
	total, err := a.src.SumDeposits(ctx, f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("aggregate deposits %s..%s: %w", f.From, f.To, err)
	}
	return total, nil
}
