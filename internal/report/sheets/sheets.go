// Package sheets publishes month reports to a Google Sheets spreadsheet,
// one tab per month.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"shortlog/internal/cache"
	"shortlog/internal/core"
	"shortlog/internal/report"
)

type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	TabPrefix       string
}

type Publisher struct {
	svc           *gsheet.Service
	spreadsheetID string
	prefix        string
	knownTabs     *cache.LRUCache[bool]
}

var _ report.Publisher = (*Publisher)(nil)

// New creates a publisher authenticated with a service account.
func New(ctx context.Context, opts Options) (*Publisher, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := loadCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully", "spreadsheet_id", opts.SpreadsheetID)
	return NewWithService(svc, opts.SpreadsheetID, opts.TabPrefix), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, prefix string) *Publisher {
	if strings.TrimSpace(prefix) == "" {
		prefix = report.SheetName
	}
	return &Publisher{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		prefix:        strings.TrimSpace(prefix),
		knownTabs:     cache.NewLRUCache[bool](64, time.Hour),
	}
}

// loadCredentials prefers inline JSON, then a file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// TabName returns the tab for a month, e.g. "Short Report Mar 2024".
func TabName(prefix string, year int, month time.Month) string {
	return fmt.Sprintf("%s %s", prefix, report.MonthLabel(year, month))
}

// Publish writes the report grid into the month's tab, creating the tab if
// needed and clearing stale values first.
func (p *Publisher) Publish(ctx context.Context, r core.MonthReport) error {
	if p.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tab := TabName(p.prefix, r.Year, r.Month)
	if err := p.ensureTab(ctx, tab); err != nil {
		return err
	}

	rng := fmt.Sprintf("'%s'", tab)
	if _, err := p.svc.Spreadsheets.Values.Clear(p.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		// the tab may have been deleted by hand
		p.knownTabs.Delete(tab)
		return fmt.Errorf("clear tab %s: %w", tab, err)
	}

	values := report.Layout(r).Values()
	vr := &gsheet.ValueRange{Values: values}
	_, err := p.svc.Spreadsheets.Values.Update(p.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update tab %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Report published to Google Sheets",
		"tab", tab,
		"rows", len(values))
	return nil
}

func (p *Publisher) ensureTab(ctx context.Context, tab string) error {
	if _, ok := p.knownTabs.Get(tab); ok {
		return nil
	}
	ss, err := p.svc.Spreadsheets.Get(p.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			p.knownTabs.Set(tab, true)
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		}},
	}
	if _, err := p.svc.Spreadsheets.BatchUpdate(p.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tab %s: %w", tab, err)
	}
	p.knownTabs.Set(tab, true)
	slog.InfoContext(ctx, "Created report tab", "tab", tab)
	return nil
}
