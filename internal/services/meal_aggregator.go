package services

import (
	"context"
	"fmt"

	"mealbook/internal/core"

	"github.com/shopspring/decimal"
)

// MealAggregator sums meal counts over a period. Bounds are the first and
// last calendar day of the month, inclusive.
type MealAggregator struct {
	src MealSource
}

func NewMealAggregator(src MealSource) *MealAggregator {
	return &MealAggregator{src: src}
}

// TotalMeals sums every member's meals in the period.
func (a *MealAggregator) TotalMeals(ctx context.Context, period core.Period) (decimal.Decimal, error) {
	return a.sum(ctx, period.Filter())
}

// ActiveMeals sums the meals of members who are active now.
func (a *MealAggregator) ActiveMeals(ctx context.Context, period core.Period) (decimal.Decimal, error) {
	return a.sum(ctx, period.Filter().Active())
}

func (a *MealAggregator) MemberMeals(ctx context.Context, memberID string, period core.Period) (decimal.Decimal, error) {
	return a.sum(ctx, period.Filter().ForMember(memberID))
}

func (a *MealAggregator) sum(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error) {
	total, err := a.src.SumMeals(ctx, f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("aggregate meals %s..%s: %w", f.From, f.To, err)
	}
	return total, nil
}
