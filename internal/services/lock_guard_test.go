package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealbook/internal/core"
)

type fakeMonths struct {
	months map[core.Period]core.Month
	err    error
}

func (f fakeMonths) GetMonth(_ context.Context, p core.Period) (core.Month, error) {
	if f.err != nil {
		return core.Month{}, f.err
	}
	m, ok := f.months[p]
	if !ok {
		return core.Month{}, core.ErrNotFound
	}
	return m, nil
}

func TestAssertUnlocked(t *testing.T) {
	jan := core.Period{Year: 2025, Month: time.January}
	feb := core.Period{Year: 2025, Month: time.February}
	mar := core.Period{Year: 2025, Month: time.March}
	guard := NewLockGuard(fakeMonths{months: map[core.Period]core.Month{
		jan: {Period: jan, State: core.MonthLocked},
		feb: {Period: feb, State: core.MonthUnlocked},
	}})
	ctx := context.Background()

	err := guard.AssertUnlocked(ctx, jan)
	if !errors.Is(err, core.ErrMonthLocked) {
		t.Fatalf("expected ErrMonthLocked, got %v", err)
	}
	var mle *core.MonthLockedError
	if !errors.As(err, &mle) || mle.Period != jan {
		t.Fatalf("expected MonthLockedError for %s, got %v", jan, err)
	}

	if err := guard.AssertUnlocked(ctx, feb); err != nil {
		t.Fatalf("unlocked month rejected: %v", err)
	}
	if err := guard.AssertUnlocked(ctx, mar); err != nil {
		t.Fatalf("missing month must count as unlocked: %v", err)
	}
}

func TestAssertUnlockedPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk I/O error")
	guard := NewLockGuard(fakeMonths{err: boom})
	err := guard.AssertUnlocked(context.Background(), core.Period{Year: 2025, Month: time.May})
	if !errors.Is(err, boom) || core.IsLocked(err) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

// Every mutation dated in a locked month fails and leaves the rows unchanged.
func TestMutationsRejectedInLockedMonth(t *testing.T) {
	repo := newTestStorage(t)
	ctx := context.Background()
	settle := NewSettlementService(repo, nil)
	meals := NewMealService(repo)
	expenses := NewExpenseService(repo)
	deposits := NewDepositService(repo)

	m := mustMember(t, repo, "A")
	mustMeal(t, repo, m.ID, core.NewDate(2025, 3, 1), "2")
	rice := mustExpense(t, repo, "Rice", core.NewDate(2025, 3, 1), "10")
	mustDeposit(t, repo, m.ID, core.NewDate(2025, 3, 1), "15")

	if _, err := settle.Settle(ctx, march); err != nil {
		t.Fatal(err)
	}

	lastDay := core.NewDate(2025, 3, 31)
	cases := []struct {
		name string
		run  func() error
	}{
		{"update meal", func() error {
			_, err := meals.Update(ctx, core.Meal{MemberID: m.ID, Date: core.NewDate(2025, 3, 1), Count: dec("5")})
			return err
		}},
		{"new meal on last day", func() error {
			_, err := meals.Update(ctx, core.Meal{MemberID: m.ID, Date: lastDay, Count: dec("1")})
			return err
		}},
		{"add expense", func() error {
			_, err := expenses.Add(ctx, core.Expense{Title: "Oil", Amount: dec("5"), Date: lastDay})
			return err
		}},
		{"delete expense", func() error {
			return expenses.Delete(ctx, rice.ID)
		}},
		{"add deposit", func() error {
			_, err := deposits.Add(ctx, core.Deposit{MemberID: m.ID, Amount: dec("5"), Date: lastDay})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, core.ErrMonthLocked) {
				t.Fatalf("expected ErrMonthLocked, got %v", err)
			}
		})
	}

	mealTotal, err := NewMealAggregator(repo).TotalMeals(ctx, march)
	if err != nil {
		t.Fatal(err)
	}
	costTotal, err := NewExpenseAggregator(repo).TotalExpense(ctx, march)
	if err != nil {
		t.Fatal(err)
	}
	depositTotal, err := NewDepositAggregator(repo).TotalDeposit(ctx, march)
	if err != nil {
		t.Fatal(err)
	}
	if !mealTotal.Equal(dec("2")) || !costTotal.Equal(dec("10")) || !depositTotal.Equal(dec("15")) {
		t.Fatalf("locked month changed: meals=%s cost=%s deposits=%s", mealTotal, costTotal, depositTotal)
	}

	// The neighbouring month is untouched by the lock.
	if _, err := meals.Update(ctx, core.Meal{MemberID: m.ID, Date: core.NewDate(2025, 4, 1), Count: dec("1")}); err != nil {
		t.Fatalf("April should be writable: %v", err)
	}
}
