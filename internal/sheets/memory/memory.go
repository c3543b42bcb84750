package memory

import (
	"context"
	"fmt"
	"sync"

	"mealbook/internal/core"
	ports "mealbook/internal/sheets"
)

// Store keeps exported reports in memory, one table per period. It backs
// EXPORT_BACKEND=memory for local runs and tests.
type Store struct {
	mu      sync.Mutex
	reports map[core.Period][][]string
	exports int
}

var _ ports.ReportExporter = (*Store)(nil)

func New() *Store {
	return &Store{reports: make(map[core.Period][][]string)}
}

// ExportMonthReport renders and stores the report, replacing any earlier
// export of the same period.
func (s *Store) ExportMonthReport(_ context.Context, report core.MonthReport) (string, error) {
	if err := report.Period.Validate(); err != nil {
		return "", err
	}
	if !report.Locked {
		return "", fmt.Errorf("export %s: month is not locked", report.Period)
	}
	rows := ports.ReportRows(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.Period] = rows
	s.exports++
	return fmt.Sprintf("mem:%s", report.Period), nil
}

// Report returns a copy of the stored table for period.
func (s *Store) Report(period core.Period) ([][]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.reports[period]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, true
}

// Exports counts successful exports, including overwrites.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
