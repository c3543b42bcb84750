package memory

import (
	"context"
	"testing"
	"time"

	"mealbook/internal/core"

	"github.com/shopspring/decimal"
)

func TestStore_ExportMonthReport(t *testing.T) {
	s := New()
	ctx := context.Background()
	period := core.Period{Year: 2025, Month: time.March}

	report := core.MonthReport{
		Period: period,
		Locked: true,
		Summaries: []core.MonthSummary{
			{MemberName: "A", TotalMeals: decimal.NewFromInt(10), TotalDeposit: decimal.NewFromInt(60),
				TotalCost: decimal.NewFromInt(50), Balance: decimal.NewFromInt(10)},
		},
	}

	ref, err := s.ExportMonthReport(ctx, report)
	if err != nil {
		t.Fatalf("ExportMonthReport failed: %v", err)
	}
	if ref != "mem:2025-03" {
		t.Errorf("ref = %q", ref)
	}

	rows, ok := s.Report(period)
	if !ok || len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %v", rows)
	}
	if rows[1][0] != "A" || rows[1][4] != "10.00" {
		t.Errorf("unexpected member row %v", rows[1])
	}

	// Overwrite keeps a single table per period.
	report.Summaries = append(report.Summaries, core.MonthSummary{MemberName: "B"})
	if _, err := s.ExportMonthReport(ctx, report); err != nil {
		t.Fatal(err)
	}
	rows, _ = s.Report(period)
	if len(rows) != 4 {
		t.Errorf("expected overwrite with 4 rows, got %d", len(rows))
	}
	if s.Exports() != 2 {
		t.Errorf("Exports() = %d, want 2", s.Exports())
	}
}

func TestStore_RejectsUnlockedAndInvalid(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.ExportMonthReport(ctx, core.MonthReport{Period: core.Period{Year: 2025, Month: time.March}}); err == nil {
		t.Error("expected error for unlocked month")
	}
	if _, err := s.ExportMonthReport(ctx, core.MonthReport{Locked: true}); err == nil {
		t.Error("expected error for zero period")
	}
	if _, ok := s.Report(core.Period{Year: 2025, Month: time.March}); ok {
		t.Error("nothing should have been stored")
	}
}
