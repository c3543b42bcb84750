package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mealbook/internal/amqp"
	"mealbook/internal/core"
	"mealbook/internal/services"
	"mealbook/internal/sheets/memory"
	"mealbook/internal/storage"

	"github.com/shopspring/decimal"
)

func setup(t *testing.T) (*storage.SQLiteRepository, *services.SettlementService) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, services.NewSettlementService(repo, nil)
}

func settledMonth(t *testing.T, repo *storage.SQLiteRepository, settlement *services.SettlementService, period core.Period) {
	t.Helper()
	ctx := context.Background()
	first, _ := period.Range()

	m, err := repo.CreateMember(ctx, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpsertMeal(ctx, core.Meal{MemberID: m.ID, Date: first, Count: decimal.NewFromInt(4)}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{Title: "Rice", Date: first, Amount: decimal.NewFromInt(20)}); err != nil {
		t.Fatal(err)
	}
	if _, err := settlement.Settle(ctx, period); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
}

func TestReportWorker_HandleMonthSettled(t *testing.T) {
	repo, settlement := setup(t)
	period := core.Period{Year: 2025, Month: time.March}
	settledMonth(t, repo, settlement, period)

	exporter := memory.New()
	w := NewReportWorker(settlement, repo, exporter)

	msg := &amqp.MonthSettledMessage{Period: "2025-03"}
	if err := w.HandleMonthSettled(context.Background(), msg); err != nil {
		t.Fatalf("HandleMonthSettled failed: %v", err)
	}

	rows, ok := exporter.Report(period)
	if !ok {
		t.Fatal("report was not exported")
	}
	if len(rows) != 3 || rows[1][0] != "Alice" || rows[1][3] != "20.00" {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestReportWorker_UnsettledMonth(t *testing.T) {
	repo, settlement := setup(t)
	exporter := memory.New()
	w := NewReportWorker(settlement, repo, exporter)

	_, err := w.ExportPeriod(context.Background(), core.Period{Year: 2025, Month: time.April})
	if !errors.Is(err, ErrMonthNotSettled) {
		t.Fatalf("expected ErrMonthNotSettled, got %v", err)
	}
	if exporter.Exports() != 0 {
		t.Error("nothing should be exported")
	}
}

type failingExporter struct{}

func (failingExporter) ExportMonthReport(context.Context, core.MonthReport) (string, error) {
	return "", errors.New("sheets unavailable")
}

func TestReportWorker_ExporterError(t *testing.T) {
	repo, settlement := setup(t)
	period := core.Period{Year: 2025, Month: time.March}
	settledMonth(t, repo, settlement, period)

	w := NewReportWorker(settlement, repo, failingExporter{})
	if _, err := w.ExportPeriod(context.Background(), period); err == nil {
		t.Fatal("expected exporter error to propagate")
	}
}

func TestReportWorker_ExportAllLocked(t *testing.T) {
	repo, settlement := setup(t)
	settledMonth(t, repo, settlement, core.Period{Year: 2025, Month: time.March})

	// An unlocked month must not be exported.
	if _, err := repo.GetOrCreateMonth(context.Background(), core.Period{Year: 2025, Month: time.April}); err != nil {
		t.Fatal(err)
	}

	exporter := memory.New()
	w := NewReportWorker(settlement, repo, exporter)

	n, err := w.ExportAllLocked(context.Background())
	if err != nil {
		t.Fatalf("ExportAllLocked failed: %v", err)
	}
	if n != 1 || exporter.Exports() != 1 {
		t.Errorf("exported %d (store %d), want 1", n, exporter.Exports())
	}
}
