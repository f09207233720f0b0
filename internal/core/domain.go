package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// DateKeyLayout is the canonical, date-only form used to key day entries.
const DateKeyLayout = "2006-01-02"

// MaxWorkerNameLength bounds roster names (in runes).
const MaxWorkerNameLength = 100

type (
	Worker struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// DayEntry is the raw record saved for one calendar day. Penalties are
	// never stored; they are derived from the amounts on every read.
	DayEntry struct {
		UnrecordedAmount float64 `json:"unrecorded"`
		ShortAmount      float64 `json:"short"`
		Attendance       []int64 `json:"attendance"`
	}

	// EntryCollection maps date keys (YYYY-MM-DD) to day entries.
	EntryCollection map[string]DayEntry
)

var (
	ErrEmptyName       = errors.New("empty worker name")
	ErrNameTooLong     = errors.New("worker name too long (max 100 characters)")
	ErrInvalidDateKey  = errors.New("invalid date key (want YYYY-MM-DD)")
	ErrWorkerNotFound  = errors.New("worker not found")
	ErrInvalidWorkerID = errors.New("invalid worker id")
)

// NewWorkerName trims the raw name and validates it.
func NewWorkerName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxWorkerNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func (w Worker) Validate() error {
	if w.ID <= 0 {
		return ErrInvalidWorkerID
	}
	_, err := NewWorkerName(w.Name)
	return err
}

// DateKey returns the canonical key for the calendar date of t.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// NormalizeDateKey validates key and returns its canonical form, so
// " 2024-03-01" and "2024-03-01" address the same entry.
func NormalizeDateKey(key string) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	return DateKey(t), nil
}

// ParseDateKey parses a canonical key into a UTC midnight time.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, strings.TrimSpace(key))
	if err != nil {
		return time.Time{}, ErrInvalidDateKey
	}
	return t, nil
}

// DaysIn returns the number of days in the given month, leap years included.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsEmpty reports whether the entry carries no incident amount. Negative
// and non-finite amounts count as zero.
func (e DayEntry) IsEmpty() bool {
	return NormalizeAmount(e.UnrecordedAmount) == 0 && NormalizeAmount(e.ShortAmount) == 0
}

// Attends reports whether id is in the entry's attendance set.
func (e DayEntry) Attends(id int64) bool {
	for _, a := range e.Attendance {
		if a == id {
			return true
		}
	}
	return false
}

// Normalize returns a copy fit for persisting: amounts coerced to
// non-negative finite values and attendance deduplicated in first-seen order.
func (e DayEntry) Normalize() DayEntry {
	out := DayEntry{
		UnrecordedAmount: NormalizeAmount(e.UnrecordedAmount),
		ShortAmount:      NormalizeAmount(e.ShortAmount),
		Attendance:       make([]int64, 0, len(e.Attendance)),
	}
	seen := make(map[int64]struct{}, len(e.Attendance))
	for _, id := range e.Attendance {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out.Attendance = append(out.Attendance, id)
	}
	return out
}

// Clone returns a deep copy of the entry.
func (e DayEntry) Clone() DayEntry {
	c := e
	c.Attendance = append([]int64(nil), e.Attendance...)
	return c
}

// Clone returns a deep copy of the collection.
func (c EntryCollection) Clone() EntryCollection {
	out := make(EntryCollection, len(c))
	for k, v := range c {
		out[k] = v.Clone()
	}
	return out
}

// RosterIDs returns the ids of workers in roster order.
func RosterIDs(workers []Worker) []int64 {
	ids := make([]int64, len(workers))
	for i, w := range workers {
		ids[i] = w.ID
	}
	return ids
}

// InRoster keeps only the attendance ids that belong to the current roster,
// preserving roster order.
func InRoster(attendance []int64, workers []Worker) []int64 {
	present := make(map[int64]struct{}, len(attendance))
	for _, id := range attendance {
		present[id] = struct{}{}
	}
	out := make([]int64, 0, len(attendance))
	for _, w := range workers {
		if _, ok := present[w.ID]; ok {
			out = append(out, w.ID)
		}
	}
	return out
}
