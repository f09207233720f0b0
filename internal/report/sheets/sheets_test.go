package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"shortlog/internal/core"
)

type fakeSheets struct {
	mu      sync.Mutex
	tabs    []string
	calls   []string
	updated [][]any

	failClear bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		var sheets []map[string]any
		for _, t := range f.tabs {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		var req gsheet.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.tabs = append(f.tabs, req.Requests[0].AddSheet.Properties.Title)
		io.WriteString(w, `{}`)
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		if f.failClear {
			http.Error(w, `{"error":{"code":400,"message":"Unable to parse range"}}`, http.StatusBadRequest)
			return
		}
		io.WriteString(w, `{}`)
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.updated = vr.Values
		io.WriteString(w, `{}`)
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestPublisher(t *testing.T, fake *fakeSheets) *Publisher {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, "sheet-id", "")
}

func TestPublishCreatesTabAndWritesGrid(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Other"}}
	p := newTestPublisher(t, fake)

	workers := []core.Worker{{ID: 1, Name: "Ana"}}
	entries := core.EntryCollection{"2024-03-01": {UnrecordedAmount: 120, Attendance: []int64{1}}}
	r := core.BuildMonthlyReport(workers, entries, 2024, time.March)

	if err := p.Publish(context.Background(), r); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := strings.Join(fake.calls, ","); got != "get,add,clear,update" {
		t.Fatalf("calls = %s", got)
	}
	if fake.tabs[1] != "Short Report Mar 2024" {
		t.Fatalf("tab = %q", fake.tabs[1])
	}
	if len(fake.updated) != 3 || fake.updated[0][0] != "Date: Mar 2024" || fake.updated[2][0] != "TOTAL" {
		t.Fatalf("updated values = %v", fake.updated)
	}
	if fake.updated[1][4] != float64(75) {
		t.Fatalf("total penalty cell = %v", fake.updated[1][4])
	}

	// The tab is now known; no spreadsheet lookup.
	fake.calls = nil
	if err := p.Publish(context.Background(), r); err != nil {
		t.Fatalf("republish: %v", err)
	}
	if got := strings.Join(fake.calls, ","); got != "clear,update" {
		t.Fatalf("calls = %s", got)
	}
}

func TestPublishForgetsTabWhenClearFails(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Short Report Mar 2024"}}
	p := newTestPublisher(t, fake)
	r := core.BuildMonthlyReport(nil, nil, 2024, time.March)

	if err := p.Publish(context.Background(), r); err != nil {
		t.Fatalf("publish: %v", err)
	}

	fake.mu.Lock()
	fake.failClear = true
	fake.calls = nil
	fake.mu.Unlock()
	if err := p.Publish(context.Background(), r); err == nil {
		t.Fatalf("expected clear error")
	}

	fake.mu.Lock()
	fake.failClear = false
	fake.calls = nil
	fake.mu.Unlock()
	if err := p.Publish(context.Background(), r); err != nil {
		t.Fatalf("publish after failure: %v", err)
	}
	if got := strings.Join(fake.calls, ","); got != "get,clear,update" {
		t.Fatalf("calls = %s, want a fresh lookup", got)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Fatalf("expected missing id error, got %v", err)
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := New(context.Background(), Options{SpreadsheetID: "x"}); err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestTabName(t *testing.T) {
	if got := TabName("Shorts", 2023, time.December); got != "Shorts Dec 2023" {
		t.Fatalf("TabName = %q", got)
	}
}
