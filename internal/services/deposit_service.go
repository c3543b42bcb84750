package services

import (
	"context"
	"fmt"
	"log/slog"

	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/storage"

	"github.com/shopspring/decimal"
)

// DepositService records cash members pay into the shared pool.
type DepositService struct {
	storage *storage.SQLiteRepository
}

func NewDepositService(storage *storage.SQLiteRepository) *DepositService {
	return &DepositService{storage: storage}
}

// Add stores a deposit for an existing member, dated in an unlocked month.
func (s *DepositService) Add(ctx context.Context, d core.Deposit) (core.Deposit, error) {
	if err := d.Validate(); err != nil {
		return core.Deposit{}, err
	}

	var saved core.Deposit
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := NewLockGuard(tx).guard(ctx, KindDeposit, d.Date); err != nil {
			return err
		}
		member, err := tx.GetMember(ctx, d.MemberID)
		if err != nil {
			return err
		}
		saved, err = tx.CreateDeposit(ctx, d)
		saved.MemberName = member.Name
		return err
	})
	if err != nil {
		return core.Deposit{}, fmt.Errorf("add deposit: %w", err)
	}

	slog.InfoContext(ctx, "Deposit recorded",
		log.FieldMemberID, saved.MemberID,
		log.FieldAmount, saved.Amount.String(),
		log.FieldDate, saved.Date.String(),
		log.FieldOperation, log.OpCreate)
	return saved, nil
}

// ListByPeriod returns the period's deposits with member names, newest first.
func (s *DepositService) ListByPeriod(ctx context.Context, period core.Period) ([]core.Deposit, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	deposits, err := s.storage.ListDeposits(ctx, period.Filter())
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	return deposits, nil
}

func (s *DepositService) MemberTotal(ctx context.Context, memberID string, period core.Period) (decimal.Decimal, error) {
	return NewDepositAggregator(s.storage).MemberDeposit(ctx, memberID, period)
}
