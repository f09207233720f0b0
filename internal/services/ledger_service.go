package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shortlog/internal/amqp"
	"shortlog/internal/core"
	"shortlog/internal/ledger"
	applog "shortlog/internal/log"
)

// LedgerService orchestrates roster and day-entry operations. Saving an
// entry persists the raw amounts first and then publishes a month sync
// request; a failed publish never fails the save.
type LedgerService struct {
	store ledger.Store
	bus   SyncPublisher
}

func NewLedgerService(store ledger.Store, bus SyncPublisher) *LedgerService {
	return &LedgerService{store: store, bus: bus}
}

// DayView is what the entry form shows for one date.
type DayView struct {
	Date             string          `json:"date"`
	Saved            bool            `json:"saved"`
	UnrecordedAmount float64         `json:"unrecorded"`
	ShortAmount      float64         `json:"short"`
	Attendance       []int64         `json:"attendance"`
	Present          []int64         `json:"present"`
	Split            core.DailySplit `json:"split"`
	Workers          []core.Worker   `json:"workers"`
}

// SaveResult reports a persisted entry and the day the form moves to.
type SaveResult struct {
	DayView
	NextDate string `json:"next_date"`
}

func (s *LedgerService) Workers(ctx context.Context) ([]core.Worker, error) {
	return s.store.Workers(ctx)
}

// Entries returns every saved raw entry, keyed by date.
func (s *LedgerService) Entries(ctx context.Context) (core.EntryCollection, error) {
	entries, err := s.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return entries, nil
}

func (s *LedgerService) AddWorker(ctx context.Context, name string) (core.Worker, error) {
	name, err := core.NewWorkerName(name)
	if err != nil {
		return core.Worker{}, err
	}
	w, err := s.store.AddWorker(ctx, name)
	if err != nil {
		return core.Worker{}, fmt.Errorf("add worker: %w", err)
	}
	slog.InfoContext(ctx, "Worker added", "worker_id", w.ID, "name", w.Name)
	return w, nil
}

// RemoveWorker drops the worker from the roster. Entries keep the id, so
// past per-person shares do not change.
func (s *LedgerService) RemoveWorker(ctx context.Context, id int64) error {
	if id <= 0 {
		return core.ErrInvalidWorkerID
	}
	if err := s.store.RemoveWorker(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Worker removed", "worker_id", id)
	return nil
}

// DayView loads the entry for a date. Without a saved entry every roster
// worker is marked present and both amounts are zero.
func (s *LedgerService) DayView(ctx context.Context, dateKey string) (DayView, error) {
	date, err := core.ParseDateKey(dateKey)
	if err != nil {
		return DayView{}, err
	}
	workers, err := s.store.Workers(ctx)
	if err != nil {
		return DayView{}, fmt.Errorf("load workers: %w", err)
	}
	entry, ok, err := s.store.Entry(ctx, core.DateKey(date))
	if err != nil {
		return DayView{}, fmt.Errorf("load entry: %w", err)
	}
	if !ok {
		entry = core.DayEntry{Attendance: core.RosterIDs(workers)}
	}
	return newDayView(date, ok, entry, workers), nil
}

func newDayView(date time.Time, saved bool, e core.DayEntry, workers []core.Worker) DayView {
	attendance := e.Attendance
	if attendance == nil {
		attendance = []int64{}
	}
	return DayView{
		Date:             core.DateKey(date),
		Saved:            saved,
		UnrecordedAmount: e.UnrecordedAmount,
		ShortAmount:      e.ShortAmount,
		Attendance:       attendance,
		Present:          core.InRoster(attendance, workers),
		Split:            core.SplitDailyPenalty(e.UnrecordedAmount, e.ShortAmount, len(attendance)),
		Workers:          workers,
	}
}

// SaveEntry normalises and overwrites the entry for a date.
func (s *LedgerService) SaveEntry(ctx context.Context, dateKey string, e core.DayEntry) (SaveResult, error) {
	date, err := core.ParseDateKey(dateKey)
	if err != nil {
		return SaveResult{}, err
	}
	key := core.DateKey(date)
	e = e.Normalize()
	if err := s.store.SaveEntry(ctx, key, e); err != nil {
		return SaveResult{}, fmt.Errorf("save entry: %w", err)
	}

	split := core.SplitDailyPenalty(e.UnrecordedAmount, e.ShortAmount, len(e.Attendance))
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogEntrySaved(ctx, key, e.UnrecordedAmount, e.ShortAmount, split.TotalPenalty, len(e.Attendance))

	s.publish(ctx, date.Year(), date.Month(), amqp.ReasonEntrySaved)

	workers, err := s.store.Workers(ctx)
	if err != nil {
		return SaveResult{}, fmt.Errorf("load workers: %w", err)
	}
	return SaveResult{
		DayView:  newDayView(date, true, e, workers),
		NextDate: core.DateKey(date.AddDate(0, 0, 1)),
	}, nil
}

// Preview computes the live split for unsaved form values.
func (s *LedgerService) Preview(unrecorded, short float64, attendees int) core.DailySplit {
	return core.SplitDailyPenalty(unrecorded, short, attendees)
}

// PenaltyRules describes the penalty schedule.
type PenaltyRules struct {
	UnrecordedTiers []core.PenaltyTier `json:"unrecorded_tiers"`
	AboveTopTier    string             `json:"above_top_tier"`
	ShortSurcharge  float64            `json:"short_surcharge"`
}

func (s *LedgerService) PenaltyRules() PenaltyRules {
	return PenaltyRules{
		UnrecordedTiers: core.UnrecordedTiers(),
		AboveTopTier:    "full amount",
		ShortSurcharge:  core.ShortSurcharge,
	}
}

func (s *LedgerService) publish(ctx context.Context, year int, month time.Month, reason string) {
	if s.bus == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	if err := s.bus.PublishMonthSync(ctx, year, month, reason); err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Failed to publish sync message", err,
			applog.ComponentAMQP, applog.OpPublish, applog.NewFields().WithPeriod(year, int(month)))
	}
}
