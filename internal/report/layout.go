package report

import (
	"fmt"
	"time"

	"shortlog/internal/core"
)

// Fixed columns of the grid; worker columns follow in roster order.
const (
	ColDate = iota
	ColUnrecorded
	ColShort
	ColShortPenalty
	ColTotalPenalty
	FirstWorkerCol
)

const (
	OffLabel   = "OFF"
	TotalLabel = "TOTAL"
	DashLabel  = "-"
)

type CellKind int

const (
	CellText CellKind = iota
	CellNumber
	CellOff
	CellDash
)

type Cell struct {
	Kind  CellKind
	Text  string
	Value float64
}

func text(s string) Cell { return Cell{Kind: CellText, Text: s} }
func number(v float64) Cell { return Cell{Kind: CellNumber, Value: v} }

// Any returns the cell as a plain spreadsheet value.
func (c Cell) Any() any {
	if c.Kind == CellNumber {
		return c.Value
	}
	return c.Text
}

// Grid is the presentation form of a month report: a header row, one row
// per incident day and a totals row.
type Grid struct {
	Header []string
	Rows   [][]Cell
	Total  []Cell
}

// Width is the number of columns.
func (g Grid) Width() int { return len(g.Header) }

// ColumnWidths returns character widths per column.
func (g Grid) ColumnWidths() []float64 {
	widths := []float64{15, 15, 15, 20, 15}
	for i := FirstWorkerCol; i < g.Width(); i++ {
		widths = append(widths, 12)
	}
	return widths
}

// Values returns header, rows and totals as a rectangular value matrix.
func (g Grid) Values() [][]any {
	out := make([][]any, 0, len(g.Rows)+2)
	header := make([]any, len(g.Header))
	for i, h := range g.Header {
		header[i] = h
	}
	out = append(out, header)
	for _, row := range g.Rows {
		out = append(out, cellValues(row))
	}
	return append(out, cellValues(g.Total))
}

func cellValues(cells []Cell) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c.Any()
	}
	return out
}

// MonthLabel formats the period as "Mar 2024".
func MonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// Layout builds the grid. Amounts keep full precision; rounding is left to
// the number format of each renderer.
func Layout(r core.MonthReport) Grid {
	g := Grid{
		Header: []string{
			fmt.Sprintf("Date: %s", MonthLabel(r.Year, r.Month)),
			"Unrecorded",
			"Short",
			fmt.Sprintf("Short Penalty (+%d)", core.ShortSurcharge),
			"Total Penalty",
		},
		Rows: make([][]Cell, 0, len(r.Rows)),
	}
	for _, w := range r.Workers {
		g.Header = append(g.Header, w.Name)
	}

	for _, row := range r.Rows {
		cells := []Cell{
			text(row.Date.Format("01/02/06")),
			number(row.UnrecordedAmount),
			number(row.ShortAmount),
			number(row.ShortPenalty),
			number(row.TotalPenalty),
		}
		for _, s := range row.Shares {
			if s.Present {
				cells = append(cells, number(s.Amount))
			} else {
				cells = append(cells, Cell{Kind: CellOff, Text: OffLabel})
			}
		}
		g.Rows = append(g.Rows, cells)
	}

	g.Total = []Cell{
		text(TotalLabel),
		number(r.Totals.UnrecordedAmount),
		number(r.Totals.ShortAmount),
		{Kind: CellDash, Text: DashLabel},
		number(r.Totals.TotalPenalty),
	}
	for _, wt := range r.Totals.ByWorker {
		g.Total = append(g.Total, number(wt.Amount))
	}
	return g
}
