package report

import (
	"errors"
	"testing"
	"time"

	"shortlog/internal/core"
)

func sampleReport() core.MonthReport {
	workers := []core.Worker{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Ben"}}
	entries := core.EntryCollection{
		"2024-03-01": {UnrecordedAmount: 120, Attendance: []int64{1, 2}},
		"2024-03-07": {ShortAmount: 30, Attendance: []int64{2}},
	}
	return core.BuildMonthlyReport(workers, entries, 2024, time.March)
}

func TestLayout(t *testing.T) {
	g := Layout(sampleReport())

	wantHeader := []string{"Date: Mar 2024", "Unrecorded", "Short", "Short Penalty (+50)", "Total Penalty", "Ana", "Ben"}
	if len(g.Header) != len(wantHeader) {
		t.Fatalf("header = %v", g.Header)
	}
	for i, h := range wantHeader {
		if g.Header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, g.Header[i], h)
		}
	}

	if len(g.Rows) != 2 {
		t.Fatalf("rows = %d", len(g.Rows))
	}
	first := g.Rows[0]
	if first[ColDate].Text != "03/01/24" {
		t.Fatalf("date cell = %q", first[ColDate].Text)
	}
	if first[ColTotalPenalty].Value != 75 || first[FirstWorkerCol].Value != 37.5 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	second := g.Rows[1]
	if second[ColShortPenalty].Value != 80 {
		t.Fatalf("short penalty = %v", second[ColShortPenalty].Value)
	}
	if second[FirstWorkerCol].Kind != CellOff || second[FirstWorkerCol].Text != "OFF" {
		t.Fatalf("absent worker cell = %+v", second[FirstWorkerCol])
	}

	if g.Total[ColDate].Text != "TOTAL" || g.Total[ColShortPenalty].Kind != CellDash {
		t.Fatalf("unexpected total labels: %+v", g.Total)
	}
	if g.Total[ColTotalPenalty].Value != 155 || g.Total[FirstWorkerCol+1].Value != 117.5 {
		t.Fatalf("unexpected totals: %+v", g.Total)
	}

	widths := g.ColumnWidths()
	if len(widths) != 7 || widths[3] != 20 || widths[6] != 12 {
		t.Fatalf("widths = %v", widths)
	}
	if v := g.Values(); len(v) != 4 || len(v[3]) != 7 {
		t.Fatalf("values shape = %d rows", len(v))
	}
}

func TestLayoutEmptyMonth(t *testing.T) {
	r := core.BuildMonthlyReport([]core.Worker{{ID: 1, Name: "Ana"}}, nil, 2024, time.February)
	g := Layout(r)
	if len(g.Rows) != 0 {
		t.Fatalf("expected no data rows")
	}
	if g.Header[0] != "Date: Feb 2024" || g.Total[FirstWorkerCol].Value != 0 {
		t.Fatalf("unexpected empty grid: %+v", g)
	}
}

func TestFileNameAndFormat(t *testing.T) {
	if got := FileName(FormatXLSX, 2024, time.March); got != "Short_Report_3_2024.xlsx" {
		t.Fatalf("FileName = %s", got)
	}
	if got := FileName(FormatCSV, 2023, time.December); got != "Short_Report_12_2023.csv" {
		t.Fatalf("FileName = %s", got)
	}
	for in, want := range map[string]Format{"": FormatXLSX, "XLSX": FormatXLSX, " csv ": FormatCSV} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
