package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shortlog/internal/core"
	"shortlog/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements ledger.Store. Removed workers are soft
// deleted so their ids are never reused.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Workers(ctx context.Context) ([]core.Worker, error) {
	rows, err := r.queries.ListActiveWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	workers := make([]core.Worker, len(rows))
	for i, w := range rows {
		workers[i] = core.Worker{ID: w.ID, Name: w.Name}
	}
	return workers, nil
}

func (r *SQLiteRepository) AddWorker(ctx context.Context, name string) (core.Worker, error) {
	name, err := core.NewWorkerName(name)
	if err != nil {
		return core.Worker{}, err
	}
	w, err := r.queries.CreateWorker(ctx, name)
	if err != nil {
		return core.Worker{}, fmt.Errorf("create worker: %w", err)
	}
	slog.InfoContext(ctx, "Worker added to SQLite", "id", w.ID, "name", w.Name)
	return core.Worker{ID: w.ID, Name: w.Name}, nil
}

func (r *SQLiteRepository) RemoveWorker(ctx context.Context, id int64) error {
	n, err := r.queries.RemoveWorker(ctx, id)
	if err != nil {
		return fmt.Errorf("remove worker: %w", err)
	}
	if n == 0 {
		return core.ErrWorkerNotFound
	}
	slog.InfoContext(ctx, "Worker removed from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) Entry(ctx context.Context, dateKey string) (core.DayEntry, bool, error) {
	dateKey, err := core.NormalizeDateKey(dateKey)
	if err != nil {
		return core.DayEntry{}, false, err
	}
	row, err := r.queries.GetDayEntry(ctx, dateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DayEntry{}, false, nil
	}
	if err != nil {
		return core.DayEntry{}, false, fmt.Errorf("get entry %s: %w", dateKey, err)
	}
	attendance, err := r.queries.ListAttendance(ctx, dateKey)
	if err != nil {
		return core.DayEntry{}, false, fmt.Errorf("get attendance %s: %w", dateKey, err)
	}
	return core.DayEntry{
		UnrecordedAmount: row.UnrecordedAmount,
		ShortAmount:      row.ShortAmount,
		Attendance:       attendance,
	}, true, nil
}

// SaveEntry replaces the entry and its attendance in one transaction.
func (r *SQLiteRepository) SaveEntry(ctx context.Context, dateKey string, e core.DayEntry) error {
	dateKey, err := core.NormalizeDateKey(dateKey)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.UpsertDayEntry(ctx, UpsertDayEntryParams{
		DateKey:          dateKey,
		UnrecordedAmount: e.UnrecordedAmount,
		ShortAmount:      e.ShortAmount,
	}); err != nil {
		return fmt.Errorf("upsert entry %s: %w", dateKey, err)
	}
	if err := q.DeleteAttendance(ctx, dateKey); err != nil {
		return fmt.Errorf("clear attendance %s: %w", dateKey, err)
	}
	// Duplicate ids would violate the primary key; keep the first one.
	seen := make(map[int64]struct{}, len(e.Attendance))
	pos := int64(0)
	for _, id := range e.Attendance {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if err := q.InsertAttendance(ctx, EntryAttendance{DateKey: dateKey, WorkerID: id, Position: pos}); err != nil {
			return fmt.Errorf("insert attendance %s/%d: %w", dateKey, id, err)
		}
		pos++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry %s: %w", dateKey, err)
	}

	slog.DebugContext(ctx, "Entry saved to SQLite", "date", dateKey, "attendees", pos)
	return nil
}

func (r *SQLiteRepository) Entries(ctx context.Context) (core.EntryCollection, error) {
	return r.entriesByPrefix(ctx, "")
}

func (r *SQLiteRepository) MonthEntries(ctx context.Context, year int, month time.Month) (core.EntryCollection, error) {
	return r.entriesByPrefix(ctx, ledger.MonthPrefix(year, month))
}

func (r *SQLiteRepository) entriesByPrefix(ctx context.Context, prefix string) (core.EntryCollection, error) {
	rows, err := r.queries.ListDayEntriesByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	att, err := r.queries.ListAttendanceByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	out := make(core.EntryCollection, len(rows))
	for _, row := range rows {
		out[row.DateKey] = core.DayEntry{
			UnrecordedAmount: row.UnrecordedAmount,
			ShortAmount:      row.ShortAmount,
			Attendance:       []int64{},
		}
	}
	for _, a := range att {
		e, ok := out[a.DateKey]
		if !ok {
			continue
		}
		e.Attendance = append(e.Attendance, a.WorkerID)
		out[a.DateKey] = e
	}
	return out, nil
}

var _ ledger.Store = (*SQLiteRepository)(nil)
