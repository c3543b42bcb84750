package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/storage"

	"github.com/shopspring/decimal"
)

// ExpenseService records shared expenses.
type ExpenseService struct {
	storage *storage.SQLiteRepository
}

func NewExpenseService(storage *storage.SQLiteRepository) *ExpenseService {
	return &ExpenseService{storage: storage}
}

// Add stores an expense dated in an unlocked month.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.Title = strings.TrimSpace(e.Title)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	var saved core.Expense
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := NewLockGuard(tx).guard(ctx, KindExpense, e.Date); err != nil {
			return err
		}
		var err error
		saved, err = tx.CreateExpense(ctx, e)
		return err
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense added",
		log.FieldAmount, saved.Amount.String(),
		log.FieldDate, saved.Date.String(),
		log.FieldOperation, log.OpCreate)
	return saved, nil
}

// Delete removes an expense. The lock is checked against the stored
// expense's date.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		existing, err := tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := NewLockGuard(tx).guard(ctx, KindExpense, existing.Date); err != nil {
			return err
		}
		return tx.DeleteExpense(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, log.FieldOperation, log.OpDelete)
	return nil
}

// ListByPeriod returns the period's expenses, newest first.
func (s *ExpenseService) ListByPeriod(ctx context.Context, period core.Period) ([]core.Expense, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	expenses, err := s.storage.ListExpenses(ctx, period.Filter())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Total(ctx context.Context, period core.Period) (decimal.Decimal, error) {
	return NewExpenseAggregator(s.storage).TotalExpense(ctx, period)
}
