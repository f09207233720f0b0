package ledger

import (
	"context"
	"time"

	"shortlog/internal/core"
)

// Ports for the persisted roster and day entries.
type (
	RosterStore interface {
		// Workers returns the roster in insertion order.
		Workers(ctx context.Context) ([]core.Worker, error)
		// AddWorker assigns the next id and appends the worker.
		AddWorker(ctx context.Context, name string) (core.Worker, error)
		// RemoveWorker drops the worker from the roster. Saved entries keep
		// the id in their attendance. Returns core.ErrWorkerNotFound.
		RemoveWorker(ctx context.Context, id int64) error
	}

	EntryStore interface {
		// Entry returns the raw entry for a date key and whether one exists.
		Entry(ctx context.Context, dateKey string) (core.DayEntry, bool, error)
		// SaveEntry overwrites the entry for a date key wholesale.
		SaveEntry(ctx context.Context, dateKey string, e core.DayEntry) error
		// Entries returns every saved entry.
		Entries(ctx context.Context) (core.EntryCollection, error)
		// MonthEntries returns the entries whose key falls in the month.
		MonthEntries(ctx context.Context, year int, month time.Month) (core.EntryCollection, error)
	}

	Store interface {
		RosterStore
		EntryStore
	}
)

// DefaultWorkers is the roster used when nothing has been persisted yet.
func DefaultWorkers() []core.Worker {
	return []core.Worker{
		{ID: 1, Name: "Worker A"},
		{ID: 2, Name: "Worker B"},
		{ID: 3, Name: "Worker C"},
		{ID: 4, Name: "Worker D"},
	}
}

// MonthPrefix returns the "YYYY-MM-" prefix shared by every date key of
// the month.
func MonthPrefix(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-")
}

// FilterMonth keeps the entries of the given month.
func FilterMonth(all core.EntryCollection, year int, month time.Month) core.EntryCollection {
	prefix := MonthPrefix(year, month)
	out := make(core.EntryCollection)
	for k, v := range all {
		if len(k) == len(core.DateKeyLayout) && k[:len(prefix)] == prefix {
			out[k] = v.Clone()
		}
	}
	return out
}

// NextID returns one past the highest id in workers.
func NextID(workers []core.Worker) int64 {
	var max int64
	for _, w := range workers {
		if w.ID > max {
			max = w.ID
		}
	}
	return max + 1
}
