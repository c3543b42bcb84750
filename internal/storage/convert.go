package storage

import (
	"fmt"
	"time"

	"mealbook/internal/core"

	"github.com/shopspring/decimal"
)

func toMember(row Member) core.Member {
	return core.Member{
		ID:        row.ID,
		Name:      row.Name,
		Active:    row.Active,
		CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
	}
}

func toMonth(row Month) (core.Month, error) {
	period, err := core.ParsePeriod(row.Period)
	if err != nil {
		return core.Month{}, fmt.Errorf("month %s: %w", row.ID, err)
	}
	state := core.MonthState(row.State)
	if !state.Valid() {
		return core.Month{}, fmt.Errorf("month %s: unknown state %q", row.ID, row.State)
	}
	return core.Month{
		ID:        row.ID,
		Period:    period,
		State:     state,
		CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
	}, nil
}

func toMeal(row Meal) (core.Meal, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Meal{}, fmt.Errorf("meal %s date: %w", row.ID, err)
	}
	count, err := decimal.NewFromString(row.Count)
	if err != nil {
		return core.Meal{}, fmt.Errorf("meal %s count: %w", row.ID, err)
	}
	return core.Meal{ID: row.ID, MemberID: row.MemberID, Date: date, Count: count}, nil
}

func toExpense(row Expense) (core.Expense, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s date: %w", row.ID, err)
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s amount: %w", row.ID, err)
	}
	return core.Expense{
		ID:        row.ID,
		Title:     row.Title,
		Amount:    amount,
		Date:      date,
		CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
	}, nil
}

func toDeposit(row Deposit) (core.Deposit, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("deposit %s date: %w", row.ID, err)
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("deposit %s amount: %w", row.ID, err)
	}
	return core.Deposit{
		ID:         row.ID,
		MemberID:   row.MemberID,
		MemberName: row.MemberName,
		Amount:     amount,
		Date:       date,
		CreatedAt:  time.Unix(row.CreatedAt, 0).UTC(),
	}, nil
}

func toMonthSummary(row MonthSummary) (core.MonthSummary, error) {
	var (
		s   = core.MonthSummary{MemberID: row.MemberID, MemberName: row.MemberName, MonthID: row.MonthID}
		err error
	)
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&s.TotalMeals, row.TotalMeals},
		{&s.TotalDeposit, row.TotalDeposit},
		{&s.TotalCost, row.TotalCost},
		{&s.Balance, row.Balance},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return core.MonthSummary{}, fmt.Errorf("summary for member %s: %w", row.MemberID, err)
		}
	}
	return s, nil
}
