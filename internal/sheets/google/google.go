package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mealbook/internal/core"
	ports "mealbook/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetPrefix = "Settlement"

// Client writes month reports to one tab per period in a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetPrefix   string
}

var _ ports.ReportExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client from the environment.
// Required: GOOGLE_SPREADSHEET_ID and one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: REPORT_SHEET_PREFIX (default "Settlement").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := credentialsFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully")

	return New(svc, spreadsheetID, os.Getenv("REPORT_SHEET_PREFIX")), nil
}

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetPrefix string) *Client {
	sheetPrefix = strings.TrimSpace(sheetPrefix)
	if sheetPrefix == "" {
		sheetPrefix = defaultSheetPrefix
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetPrefix: sheetPrefix}
}

// credentialsFromEnv loads service account credentials, preferring inline JSON.
func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// SheetName returns the tab a period's report is written to.
func (c *Client) SheetName(period core.Period) string {
	return fmt.Sprintf("%s %s", c.sheetPrefix, period)
}

// ExportMonthReport writes the report to its period tab, creating the tab on
// first export and overwriting it afterwards.
func (c *Client) ExportMonthReport(ctx context.Context, report core.MonthReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if !report.Locked {
		return "", fmt.Errorf("export %s: %w", report.Period, errMonthNotLocked)
	}

	sheet := c.SheetName(report.Period)
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	rows := ports.ReportRows(report)
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quote(sheet), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	rng := fmt.Sprintf("%s!A1:E%d", quote(sheet), len(values))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report to %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Month report exported to Google Sheets",
		"period", report.Period.String(), "range", rng, "rows", len(values))
	return rng, nil
}

func (c *Client) ensureSheet(ctx context.Context, name string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	if hasSheet(ss.Sheets, name) {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	slog.InfoContext(ctx, "Created report sheet", "sheet", name)
	return nil
}

var errMonthNotLocked = errors.New("month is not locked")

func hasSheet(sheets []*gsheet.Sheet, name string) bool {
	for _, s := range sheets {
		if s != nil && s.Properties != nil && s.Properties.Title == name {
			return true
		}
	}
	return false
}

// quote wraps a sheet name for A1 notation.
func quote(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
