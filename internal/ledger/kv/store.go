package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"shortlog/internal/core"
	"shortlog/internal/ledger"
)

// Storage keys.
const (
	KeyWorkers   = "workers"
	KeyEntries   = "entries"
	KeyWorkerSeq = "worker_seq"
)

// Store implements ledger.Store on top of a KV. Every operation reads and
// writes whole blobs; the roster and a month of entries are small.
type Store struct {
	kv KV
	mu sync.Mutex
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) Workers(ctx context.Context) ([]core.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadWorkers(ctx)
}

func (s *Store) AddWorker(ctx context.Context, name string) (core.Worker, error) {
	name, err := core.NewWorkerName(name)
	if err != nil {
		return core.Worker{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	workers, err := s.loadWorkers(ctx)
	if err != nil {
		return core.Worker{}, err
	}
	seq, err := s.loadSeq(ctx, workers)
	if err != nil {
		return core.Worker{}, err
	}
	w := core.Worker{ID: seq, Name: name}
	workers = append(workers, w)
	if err := s.put(ctx, KeyWorkers, workers); err != nil {
		return core.Worker{}, err
	}
	if err := s.kv.Set(ctx, KeyWorkerSeq, []byte(strconv.FormatInt(seq+1, 10))); err != nil {
		return core.Worker{}, fmt.Errorf("save worker sequence: %w", err)
	}
	return w, nil
}

func (s *Store) RemoveWorker(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers, err := s.loadWorkers(ctx)
	if err != nil {
		return err
	}
	for i, w := range workers {
		if w.ID != id {
			continue
		}
		// Persist the sequence before the roster shrinks so the id is
		// never handed out again.
		seq, err := s.loadSeq(ctx, workers)
		if err != nil {
			return err
		}
		if err := s.kv.Set(ctx, KeyWorkerSeq, []byte(strconv.FormatInt(seq, 10))); err != nil {
			return fmt.Errorf("save worker sequence: %w", err)
		}
		workers = append(workers[:i], workers[i+1:]...)
		return s.put(ctx, KeyWorkers, workers)
	}
	return core.ErrWorkerNotFound
}

func (s *Store) Entry(ctx context.Context, dateKey string) (core.DayEntry, bool, error) {
	dateKey, err := core.NormalizeDateKey(dateKey)
	if err != nil {
		return core.DayEntry{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadEntries(ctx)
	if err != nil {
		return core.DayEntry{}, false, err
	}
	e, ok := all[dateKey]
	return e, ok, nil
}

func (s *Store) SaveEntry(ctx context.Context, dateKey string, e core.DayEntry) error {
	dateKey, err := core.NormalizeDateKey(dateKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadEntries(ctx)
	if err != nil {
		return err
	}
	e = e.Clone()
	if e.Attendance == nil {
		e.Attendance = []int64{}
	}
	all[dateKey] = e
	return s.put(ctx, KeyEntries, all)
}

func (s *Store) Entries(ctx context.Context) (core.EntryCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadEntries(ctx)
}

func (s *Store) MonthEntries(ctx context.Context, year int, month time.Month) (core.EntryCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadEntries(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.FilterMonth(all, year, month), nil
}

// loadWorkers falls back to the default roster until one is saved.
func (s *Store) loadWorkers(ctx context.Context) ([]core.Worker, error) {
	var workers []core.Worker
	found, err := s.get(ctx, KeyWorkers, &workers)
	if err != nil {
		return nil, err
	}
	if !found {
		return ledger.DefaultWorkers(), nil
	}
	if workers == nil {
		workers = []core.Worker{}
	}
	return workers, nil
}

func (s *Store) loadEntries(ctx context.Context) (core.EntryCollection, error) {
	all := make(core.EntryCollection)
	if _, err := s.get(ctx, KeyEntries, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = make(core.EntryCollection)
	}
	return all, nil
}

// loadSeq returns the next worker id. A missing or stale counter is
// recovered from the roster.
func (s *Store) loadSeq(ctx context.Context, workers []core.Worker) (int64, error) {
	next := ledger.NextID(workers)
	b, err := s.kv.Get(ctx, KeyWorkerSeq)
	if errors.Is(err, ErrNotFound) {
		return next, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load worker sequence: %w", err)
	}
	seq, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil || seq < next {
		return next, nil
	}
	return seq, nil
}

func (s *Store) get(ctx context.Context, key string, v any) (bool, error) {
	b, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
