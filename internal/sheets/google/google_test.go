package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mealbook/internal/core"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuoteAndSheetName(t *testing.T) {
	c := New(nil, "id", "")
	if got := c.SheetName(core.Period{Year: 2025, Month: time.March}); got != "Settlement 2025-03" {
		t.Fatalf("SheetName = %q", got)
	}
	if got := quote("Bob's 2025-03"); got != "'Bob''s 2025-03'" {
		t.Fatalf("quote = %q", got)
	}
}

func TestExportRequiresLockedMonth(t *testing.T) {
	c := &Client{svc: &gsheet.Service{}, spreadsheetID: "id", sheetPrefix: "S"}
	_, err := c.ExportMonthReport(context.Background(), core.MonthReport{Locked: false})
	if !errors.Is(err, errMonthNotLocked) {
		t.Fatalf("expected errMonthNotLocked, got %v", err)
	}
}

// fakeSheetsAPI records the requests the client makes against a minimal
// Sheets v4 endpoint.
type fakeSheetsAPI struct {
	mu       sync.Mutex
	sheets   []string
	calls    []string
	lastBody map[string]any
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/spreadsheets/sheet-id"):
		var sheets []map[string]any
		for _, name := range f.sheets {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": name}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		json.Unmarshal(body, &req)
		f.sheets = append(f.sheets, req.Requests[0].AddSheet.Properties.Title)
		w.Write([]byte(`{}`))
	case strings.HasSuffix(r.URL.Path, ":clear"):
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		f.lastBody = map[string]any{}
		json.Unmarshal(body, &f.lastBody)
		w.Write([]byte(`{}`))
	default:
		http.Error(w, "unexpected "+r.URL.Path, http.StatusNotFound)
	}
}

func TestExportMonthReport(t *testing.T) {
	api := &fakeSheetsAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx, goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication())
	if err != nil {
		t.Fatal(err)
	}
	c := New(svc, "sheet-id", "Mess")

	report := core.MonthReport{
		Period: core.Period{Year: 2025, Month: time.March},
		Locked: true,
		Summaries: []core.MonthSummary{
			{MemberName: "A", TotalMeals: decimal.NewFromInt(10), TotalDeposit: decimal.NewFromInt(60),
				TotalCost: decimal.NewFromInt(50), Balance: decimal.NewFromInt(10)},
		},
	}

	ref, err := c.ExportMonthReport(ctx, report)
	if err != nil {
		t.Fatalf("ExportMonthReport failed: %v (calls %v)", err, api.calls)
	}
	if ref != "'Mess 2025-03'!A1:E3" {
		t.Fatalf("ref = %q", ref)
	}
	if len(api.sheets) != 1 || api.sheets[0] != "Mess 2025-03" {
		t.Fatalf("expected the period tab to be created, got %v", api.sheets)
	}
	values, _ := api.lastBody["values"].([]any)
	if len(values) != 3 {
		t.Fatalf("expected header, one member and totals, got %v", api.lastBody)
	}

	// Second export reuses the tab.
	if _, err := c.ExportMonthReport(ctx, report); err != nil {
		t.Fatal(err)
	}
	if len(api.sheets) != 1 {
		t.Fatalf("tab created twice: %v", api.sheets)
	}
}
