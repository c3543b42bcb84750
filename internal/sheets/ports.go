package sheets

import (
	"context"

	"mealbook/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportExporter publishes a settled month's report somewhere people can
	// read it. Exporting the same period twice overwrites the earlier copy.
	ReportExporter interface {
		ExportMonthReport(ctx context.Context, report core.MonthReport) (ref string, err error)
	}
)
