// Package csv renders a month report in long form. Each incident day gets a
// day record followed by one record per roster worker; the month closes
// with a TOTAL record and one total record per worker. Day and month
// records carry worker_id 0 and do not depend on the roster.
package csv

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"shortlog/internal/core"
	"shortlog/internal/report"
)

const ContentType = "text/csv; charset=utf-8"

// Record is one CSV line. Amounts are fixed to two decimals.
type Record struct {
	Date              string `csv:"date"`
	WorkerID          int64  `csv:"worker_id"`
	Worker            string `csv:"worker"`
	Status            string `csv:"status"`
	Unrecorded        string `csv:"unrecorded"`
	Short             string `csv:"short"`
	UnrecordedPenalty string `csv:"unrecorded_penalty"`
	ShortPenalty      string `csv:"short_penalty"`
	TotalPenalty      string `csv:"total_penalty"`
	Attendees         int    `csv:"attendees"`
	Share             string `csv:"share"`
}

const (
	StatusDay         = "day"
	StatusPresent     = "present"
	StatusOff         = "off"
	StatusTotal       = "total"
	StatusWorkerTotal = "worker_total"
)

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (*Renderer) Format() report.Format { return report.FormatCSV }

func (*Renderer) ContentType() string { return ContentType }

func (*Renderer) Render(w io.Writer, r core.MonthReport) error {
	records := Records(r)
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

// Records flattens the report.
func Records(r core.MonthReport) []Record {
	out := make([]Record, 0, (len(r.Rows)+1)*(len(r.Workers)+1))
	for _, row := range r.Rows {
		day := Record{
			Date:              row.DateKey,
			Status:            StatusDay,
			Unrecorded:        amount(row.UnrecordedAmount),
			Short:             amount(row.ShortAmount),
			UnrecordedPenalty: amount(row.UnrecordedPenalty),
			ShortPenalty:      amount(row.ShortPenalty),
			TotalPenalty:      amount(row.TotalPenalty),
			Attendees:         row.AttendeeCount,
			Share:             amount(row.PerPersonShare),
		}
		out = append(out, day)

		for i, w := range r.Workers {
			rec := day
			rec.WorkerID = w.ID
			rec.Worker = w.Name
			rec.Status = StatusOff
			rec.Share = ""
			if share := row.Shares[i]; share.Present {
				rec.Status = StatusPresent
				rec.Share = amount(share.Amount)
			}
			out = append(out, rec)
		}
	}

	out = append(out, Record{
		Date:         report.TotalLabel,
		Status:       StatusTotal,
		Unrecorded:   amount(r.Totals.UnrecordedAmount),
		Short:        amount(r.Totals.ShortAmount),
		TotalPenalty: amount(r.Totals.TotalPenalty),
	})
	for i, w := range r.Workers {
		out = append(out, Record{
			Date:     report.TotalLabel,
			WorkerID: w.ID,
			Worker:   w.Name,
			Status:   StatusWorkerTotal,
			Share:    amount(r.Totals.ByWorker[i].Amount),
		})
	}
	return out
}

func amount(v float64) string {
	return core.RoundCents(v).StringFixed(2)
}

var _ report.Renderer = (*Renderer)(nil)
