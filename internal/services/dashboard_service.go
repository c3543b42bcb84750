package services

import (
	"context"
	"fmt"

	"mealbook/internal/core"
	"mealbook/internal/storage"

	"golang.org/x/sync/errgroup"
)

// DashboardService reports running totals for a month that may not be
// settled yet. Unlike settlement, the meal total here includes every member.
type DashboardService struct {
	storage     *storage.SQLiteRepository
	concurrency int
}

func NewDashboardService(storage *storage.SQLiteRepository) *DashboardService {
	return &DashboardService{storage: storage, concurrency: 4}
}

func (s *DashboardService) Stats(ctx context.Context, period core.Period) (core.DashboardStats, error) {
	if err := period.Validate(); err != nil {
		return core.DashboardStats{}, err
	}

	stats := core.DashboardStats{Period: period}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalMeals, err = NewMealAggregator(s.storage).TotalMeals(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCost, err = NewExpenseAggregator(s.storage).TotalExpense(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalDeposit, err = NewDepositAggregator(s.storage).TotalDeposit(gctx, period)
		return err
	})
	g.Go(func() error {
		month, err := s.storage.GetMonth(gctx, period)
		if core.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.Locked = month.Locked()
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}

	stats.MealRate = core.MealRate(stats.TotalCost, stats.TotalMeals)
	return stats, nil
}

// Members returns meal and deposit totals for each active member, ordered by
// name.
func (s *DashboardService) Members(ctx context.Context, period core.Period) ([]core.MemberStats, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	members, err := s.storage.ListMembers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("dashboard members: %w", err)
	}

	meals := NewMealAggregator(s.storage)
	deposits := NewDepositAggregator(s.storage)
	out := make([]core.MemberStats, len(members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, m := range members {
		g.Go(func() error {
			count, err := meals.MemberMeals(gctx, m.ID, period)
			if err != nil {
				return err
			}
			deposit, err := deposits.MemberDeposit(gctx, m.ID, period)
			if err != nil {
				return err
			}
			out[i] = core.MemberStats{MemberID: m.ID, MemberName: m.Name, Meals: count, Deposit: deposit}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard members: %w", err)
	}
	return out, nil
}
