// Package report turns a core.MonthReport into exportable documents. The
// subpackages render the same Grid as a spreadsheet file, a CSV file or a
// Google Sheets tab.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"shortlog/internal/core"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SheetName is the worksheet name used by file exports.
const SheetName = "Short Report"

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "xlsx" or "csv", case-insensitive. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FileName returns the download name, e.g. Short_Report_3_2024.xlsx.
func FileName(f Format, year int, month time.Month) string {
	return fmt.Sprintf("Short_Report_%d_%d.%s", int(month), year, f)
}

// Ports implemented by the subpackages.
type (
	Renderer interface {
		Format() Format
		ContentType() string
		Render(w io.Writer, r core.MonthReport) error
	}

	Publisher interface {
		// Publish replaces the month's published copy with r.
		Publish(ctx context.Context, r core.MonthReport) error
	}
)
