// Package backend selects the report export backend from configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"mealbook/internal/config"
	"mealbook/internal/sheets"
	gsheet "mealbook/internal/sheets/google"
	"mealbook/internal/sheets/memory"
)

// BackendType names a report export backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
)

func (t BackendType) IsValid() bool {
	return t == MemoryBackend || t == SheetsBackend
}

// Result carries the exporter. Memory is set only for the memory backend so
// callers can read back what was exported.
type Result struct {
	Exporter sheets.ReportExporter
	Memory   *memory.Store
}

// Factory builds exporters. newSheets is swapped in tests.
type Factory struct {
	logger    *slog.Logger
	newSheets func(ctx context.Context) (*gsheet.Client, error)
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger, newSheets: gsheet.NewFromEnv}
}

// CreateExporter builds the exporter named by cfg.ExportBackend. An empty
// backend means memory.
func (f *Factory) CreateExporter(ctx context.Context, cfg *config.Config) (*Result, error) {
	kind := BackendType(cfg.ExportBackend)
	if kind == "" {
		kind = MemoryBackend
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid export backend: %s", cfg.ExportBackend)
	}

	switch kind {
	case SheetsBackend:
		client, err := f.newSheets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets export backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "prefix", cfg.ReportSheetPrefix)
		return &Result{Exporter: client}, nil
	default:
		store := memory.New()
		f.logger.Info("Initialized memory export backend")
		return &Result{Exporter: store, Memory: store}, nil
	}
}
