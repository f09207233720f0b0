package core

import "time"

// WorkerShare is one per-worker cell of a report row. Present distinguishes
// an attending worker with a zero share from an absent one.
type WorkerShare struct {
	WorkerID int64   `json:"worker_id"`
	Present  bool    `json:"present"`
	Amount   float64 `json:"amount"`
}

// WorkerTotal is a worker's cumulative share across the month.
type WorkerTotal struct {
	WorkerID int64   `json:"worker_id"`
	Amount   float64 `json:"amount"`
}

// MonthReportRow is the derived view of one day that carries an incident.
type MonthReportRow struct {
	Date              time.Time     `json:"-"`
	DateKey           string        `json:"date"`
	UnrecordedAmount  float64       `json:"unrecorded_amount"`
	ShortAmount       float64       `json:"short_amount"`
	UnrecordedPenalty float64       `json:"unrecorded_penalty"`
	ShortPenalty      float64       `json:"short_penalty"`
	TotalPenalty      float64       `json:"total_penalty"`
	PerPersonShare    float64       `json:"per_person_share"`
	AttendeeCount     int           `json:"attendee_count"`
	Shares            []WorkerShare `json:"shares"`
}

// MonthReportTotals sums raw amounts, penalties and per-worker shares over
// all included rows.
type MonthReportTotals struct {
	UnrecordedAmount float64       `json:"unrecorded_amount"`
	ShortAmount      float64       `json:"short_amount"`
	TotalPenalty     float64       `json:"total_penalty"`
	ByWorker         []WorkerTotal `json:"by_worker"`
}

// MonthReport is the complete month transform, ordered by ascending date.
type MonthReport struct {
	Year        int               `json:"year"`
	Month       time.Month        `json:"month"`
	DaysScanned int               `json:"days_scanned"`
	Workers     []Worker          `json:"workers"`
	Rows        []MonthReportRow  `json:"rows"`
	Totals      MonthReportTotals `json:"totals"`
}

// Share returns the cell for the given worker, if the worker is a column.
func (r MonthReportRow) Share(workerID int64) (WorkerShare, bool) {
	for _, s := range r.Shares {
		if s.WorkerID == workerID {
			return s, true
		}
	}
	return WorkerShare{}, false
}

// WorkerTotal returns the month total for the given worker.
func (t MonthReportTotals) WorkerTotal(workerID int64) (float64, bool) {
	for _, wt := range t.ByWorker {
		if wt.WorkerID == workerID {
			return wt.Amount, true
		}
	}
	return 0, false
}

// IsEmpty reports whether no day of the month carried an incident.
func (m MonthReport) IsEmpty() bool {
	return len(m.Rows) == 0
}

// BuildMonthlyReport scans every day of the month in order, skips days
// without an incident and derives penalties and per-worker shares from the
// raw entries. The split denominator is the attendance recorded for the
// day, including ids no longer on the roster; only roster workers become
// columns.
func BuildMonthlyReport(workers []Worker, entries EntryCollection, year int, month time.Month) MonthReport {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	year, month = first.Year(), first.Month()
	days := DaysIn(year, month)

	roster := make([]Worker, len(workers))
	copy(roster, workers)
	totals := make([]float64, len(roster))
	report := MonthReport{
		Year:        year,
		Month:       month,
		DaysScanned: days,
		Workers:     roster,
		Rows:        []MonthReportRow{},
	}

	for d := 1; d <= days; d++ {
		date := first.AddDate(0, 0, d-1)
		key := DateKey(date)
		entry, ok := entries[key]
		if !ok || entry.IsEmpty() {
			continue
		}

		unrecorded := NormalizeAmount(entry.UnrecordedAmount)
		short := NormalizeAmount(entry.ShortAmount)
		split := SplitDailyPenalty(unrecorded, short, len(entry.Attendance))
		row := MonthReportRow{
			Date:              date,
			DateKey:           key,
			UnrecordedAmount:  unrecorded,
			ShortAmount:       short,
			UnrecordedPenalty: split.UnrecordedPenalty,
			ShortPenalty:      split.ShortPenalty,
			TotalPenalty:      split.TotalPenalty,
			PerPersonShare:    split.PerPersonShare,
			AttendeeCount:     len(entry.Attendance),
			Shares:            make([]WorkerShare, len(roster)),
		}
		for i, w := range roster {
			cell := WorkerShare{WorkerID: w.ID}
			if entry.Attends(w.ID) {
				cell.Present = true
				cell.Amount = split.PerPersonShare
				totals[i] += split.PerPersonShare
			}
			row.Shares[i] = cell
		}

		report.Totals.UnrecordedAmount += unrecorded
		report.Totals.ShortAmount += short
		report.Totals.TotalPenalty += split.TotalPenalty
		report.Rows = append(report.Rows, row)
	}

	report.Totals.ByWorker = make([]WorkerTotal, len(roster))
	for i, w := range roster {
		report.Totals.ByWorker[i] = WorkerTotal{WorkerID: w.ID, Amount: totals[i]}
	}
	return report
}
