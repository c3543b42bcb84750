package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"mealbook/internal/core"
	"mealbook/internal/storage"

	"github.com/shopspring/decimal"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustMember(t *testing.T, repo *storage.SQLiteRepository, name string) core.Member {
	t.Helper()
	m, err := repo.CreateMember(context.Background(), name)
	if err != nil {
		t.Fatalf("create member %s: %v", name, err)
	}
	return m
}

func mustMeal(t *testing.T, repo *storage.SQLiteRepository, memberID string, date core.Date, count string) {
	t.Helper()
	if _, err := repo.UpsertMeal(context.Background(), core.Meal{MemberID: memberID, Date: date, Count: dec(count)}); err != nil {
		t.Fatalf("upsert meal: %v", err)
	}
}

func mustExpense(t *testing.T, repo *storage.SQLiteRepository, title string, date core.Date, amount string) core.Expense {
	t.Helper()
	e, err := repo.CreateExpense(context.Background(), core.Expense{Title: title, Date: date, Amount: dec(amount)})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}

func mustDeposit(t *testing.T, repo *storage.SQLiteRepository, memberID string, date core.Date, amount string) {
	t.Helper()
	if _, err := repo.CreateDeposit(context.Background(), core.Deposit{MemberID: memberID, Date: date, Amount: dec(amount)}); err != nil {
		t.Fatalf("create deposit: %v", err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.Settlement
	err    error
}

func (p *recordingPublisher) PublishMonthSettled(_ context.Context, s core.Settlement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, s)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
