package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const listActiveWorkers = `SELECT id, name FROM workers WHERE removed_at IS NULL ORDER BY id`

func (q *Queries) ListActiveWorkers(ctx context.Context) ([]Worker, error) {
	rows, err := q.db.QueryContext(ctx, listActiveWorkers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Worker
	for rows.Next() {
		var i Worker
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createWorker = `INSERT INTO workers (name) VALUES (?) RETURNING id, name`

func (q *Queries) CreateWorker(ctx context.Context, name string) (Worker, error) {
	var i Worker
	err := q.db.QueryRowContext(ctx, createWorker, name).Scan(&i.ID, &i.Name)
	return i, err
}

const removeWorker = `UPDATE workers SET removed_at = CURRENT_TIMESTAMP WHERE id = ? AND removed_at IS NULL`

func (q *Queries) RemoveWorker(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, removeWorker, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getDayEntry = `SELECT date_key, unrecorded_amount, short_amount FROM day_entries WHERE date_key = ?`

func (q *Queries) GetDayEntry(ctx context.Context, dateKey string) (DayEntry, error) {
	var i DayEntry
	err := q.db.QueryRowContext(ctx, getDayEntry, dateKey).Scan(&i.DateKey, &i.UnrecordedAmount, &i.ShortAmount)
	return i, err
}

const upsertDayEntry = `INSERT INTO day_entries (date_key, unrecorded_amount, short_amount)
VALUES (?, ?, ?)
ON CONFLICT (date_key) DO UPDATE SET
    unrecorded_amount = excluded.unrecorded_amount,
    short_amount = excluded.short_amount,
    updated_at = CURRENT_TIMESTAMP`

type UpsertDayEntryParams struct {
	DateKey          string
	UnrecordedAmount float64
	ShortAmount      float64
}

func (q *Queries) UpsertDayEntry(ctx context.Context, arg UpsertDayEntryParams) error {
	_, err := q.db.ExecContext(ctx, upsertDayEntry, arg.DateKey, arg.UnrecordedAmount, arg.ShortAmount)
	return err
}

const deleteAttendance = `DELETE FROM entry_attendance WHERE date_key = ?`

func (q *Queries) DeleteAttendance(ctx context.Context, dateKey string) error {
	_, err := q.db.ExecContext(ctx, deleteAttendance, dateKey)
	return err
}

const insertAttendance = `INSERT INTO entry_attendance (date_key, worker_id, position) VALUES (?, ?, ?)`

func (q *Queries) InsertAttendance(ctx context.Context, arg EntryAttendance) error {
	_, err := q.db.ExecContext(ctx, insertAttendance, arg.DateKey, arg.WorkerID, arg.Position)
	return err
}

const listAttendance = `SELECT worker_id FROM entry_attendance WHERE date_key = ? ORDER BY position`

func (q *Queries) ListAttendance(ctx context.Context, dateKey string) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listAttendance, dateKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, rows.Err()
}

const listDayEntriesByPrefix = `SELECT date_key, unrecorded_amount, short_amount
FROM day_entries WHERE date_key LIKE ? || '%' ORDER BY date_key`

func (q *Queries) ListDayEntriesByPrefix(ctx context.Context, prefix string) ([]DayEntry, error) {
	rows, err := q.db.QueryContext(ctx, listDayEntriesByPrefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DayEntry
	for rows.Next() {
		var i DayEntry
		if err := rows.Scan(&i.DateKey, &i.UnrecordedAmount, &i.ShortAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listAttendanceByPrefix = `SELECT date_key, worker_id, position
FROM entry_attendance WHERE date_key LIKE ? || '%' ORDER BY date_key, position`

func (q *Queries) ListAttendanceByPrefix(ctx context.Context, prefix string) ([]EntryAttendance, error) {
	rows, err := q.db.QueryContext(ctx, listAttendanceByPrefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EntryAttendance
	for rows.Next() {
		var i EntryAttendance
		if err := rows.Scan(&i.DateKey, &i.WorkerID, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
