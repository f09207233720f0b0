package storage

import (
	"database/sql"
	"time"
)

type Worker struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	RemovedAt sql.NullTime
}

type DayEntry struct {
	DateKey          string
	UnrecordedAmount float64
	ShortAmount      float64
}

type EntryAttendance struct {
	DateKey  string
	WorkerID int64
	Position int64
}
