// Package xlsx renders a month report as an Excel workbook with a single
// "Short Report" sheet.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"shortlog/internal/core"
	"shortlog/internal/report"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// numFmtAmount is the built-in "#,##0.00" format.
const numFmtAmount = 4

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (*Renderer) Format() report.Format { return report.FormatXLSX }

func (*Renderer) ContentType() string { return ContentType }

func (*Renderer) Render(w io.Writer, r core.MonthReport) error {
	g := report.Layout(r)

	f := excelize.NewFile()
	defer f.Close()

	sheet := report.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	for c, h := range g.Header {
		if err := setCell(f, sheet, c+1, 1, h, st.header(c)); err != nil {
			return err
		}
	}
	for i, row := range g.Rows {
		for c, cell := range row {
			style := st.number
			switch cell.Kind {
			case report.CellOff:
				style = st.off
			case report.CellText:
				style = 0
			}
			if err := setCell(f, sheet, c+1, i+2, cell.Any(), style); err != nil {
				return err
			}
		}
	}
	totalRow := len(g.Rows) + 2
	for c, cell := range g.Total {
		style := st.totalNumber
		switch cell.Kind {
		case report.CellText:
			style = st.totalLabel
		case report.CellDash:
			style = st.dash
		}
		if err := setCell(f, sheet, c+1, totalRow, cell.Any(), style); err != nil {
			return err
		}
	}

	for i, width := range g.ColumnWidths() {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any, style int) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, name, v); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	if style == 0 {
		return nil
	}
	if err := f.SetCellStyle(sheet, name, name, style); err != nil {
		return fmt.Errorf("style %s: %w", name, err)
	}
	return nil
}

type styles struct {
	plainHeader  int
	yellowHeader int
	creamHeader  int
	number       int
	off          int
	totalLabel   int
	totalNumber  int
	dash         int
}

func (s styles) header(col int) int {
	switch col {
	case report.ColUnrecorded, report.ColShort:
		return s.yellowHeader
	case report.ColShortPenalty, report.ColTotalPenalty:
		return s.creamHeader
	}
	return s.plainHeader
}

func headerStyle(fill string) *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "000000"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.plainHeader, headerStyle("FFFFFF")},
		{&s.yellowHeader, headerStyle("FFFF00")},
		{&s.creamHeader, headerStyle("F5DEB3")},
		{&s.number, &excelize.Style{NumFmt: numFmtAmount}},
		{&s.off, &excelize.Style{Font: &excelize.Font{Color: "AAAAAA"}}},
		{&s.totalLabel, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.totalNumber, &excelize.Style{NumFmt: numFmtAmount, Font: &excelize.Font{Bold: true, Color: "FF0000"}}},
		{&s.dash, &excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return styles{}, fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

var _ report.Renderer = (*Renderer)(nil)
