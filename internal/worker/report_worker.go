package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mealbook/internal/amqp"
	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/metrics"
	"mealbook/internal/sheets"
)

var (
	ErrMonthNotSettled = errors.New("month has not been settled")
)

// SummaryReader loads a month's stored summaries. Satisfied by
// services.SettlementService.
type SummaryReader interface {
	GetSummary(ctx context.Context, period core.Period) (*core.MonthReport, error)
}

// LockedMonthLister lists every locked month. Satisfied by the storage
// repository.
type LockedMonthLister interface {
	ListLockedMonths(ctx context.Context) ([]core.Month, error)
}

// ReportWorker turns month.settled events into exported reports.
type ReportWorker struct {
	summaries SummaryReader
	months    LockedMonthLister
	exporter  sheets.ReportExporter
}

func NewReportWorker(summaries SummaryReader, months LockedMonthLister, exporter sheets.ReportExporter) *ReportWorker {
	return &ReportWorker{
		summaries: summaries,
		months:    months,
		exporter:  exporter,
	}
}

// HandleMonthSettled processes a single month.settled message from AMQP.
func (w *ReportWorker) HandleMonthSettled(ctx context.Context, msg *amqp.MonthSettledMessage) error {
	slog.InfoContext(ctx, "Processing month settled message",
		"period", msg.Period,
		"month_id", msg.MonthID)

	_, err := w.ExportPeriod(ctx, msg.ParsedPeriod())
	return err
}

// ExportPeriod exports the stored report for one locked month.
func (w *ReportWorker) ExportPeriod(ctx context.Context, period core.Period) (string, error) {
	report, err := w.summaries.GetSummary(ctx, period)
	if err != nil {
		return "", w.failed(ctx, period, fmt.Errorf("load summary: %w", err))
	}
	if report == nil || !report.Locked {
		return "", w.failed(ctx, period, fmt.Errorf("%s: %w", period, ErrMonthNotSettled))
	}

	ref, err := w.exporter.ExportMonthReport(ctx, *report)
	if err != nil {
		return "", w.failed(ctx, period, fmt.Errorf("export report: %w", err))
	}
	metrics.ReportsExported.WithLabelValues(metrics.ResultOK).Inc()

	slog.InfoContext(ctx, "Successfully exported month report",
		"period", period.String(),
		"ref", ref,
		"members", len(report.Summaries))
	return ref, nil
}

// ExportAllLocked re-exports every locked month. It keeps going past
// individual failures and returns how many succeeded.
func (w *ReportWorker) ExportAllLocked(ctx context.Context) (int, error) {
	months, err := w.months.ListLockedMonths(ctx)
	if err != nil {
		return 0, fmt.Errorf("list locked months: %w", err)
	}

	exported := 0
	var errs []error
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if _, err := w.ExportPeriod(ctx, m.Period); err != nil {
			errs = append(errs, err)
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Locked month export completed",
		"total", len(months),
		"exported", exported,
		"errors", len(errs))
	return exported, errors.Join(errs...)
}

func (w *ReportWorker) failed(ctx context.Context, period core.Period, err error) error {
	metrics.ReportsExported.WithLabelValues(metrics.ResultError).Inc()
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Month report export failed", err,
		log.ComponentExport, log.OpExport, log.NewFields().WithPeriod(period.String()))
	return err
}
