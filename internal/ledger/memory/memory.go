package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shortlog/internal/core"
	"shortlog/internal/ledger"
)

// Store keeps the roster and entries in process memory.
type Store struct {
	mu      sync.Mutex
	workers []core.Worker
	entries core.EntryCollection
	nextID  int64
}

func New(workers []core.Worker) *Store {
	roster := make([]core.Worker, len(workers))
	copy(roster, workers)
	return &Store{
		workers: roster,
		entries: make(core.EntryCollection),
		nextID:  ledger.NextID(roster),
	}
}

// NewFromFiles seeds the roster from seed_workers.txt in base, one name per
// line. Without a seed file the default roster is used.
func NewFromFiles(base string) *Store {
	names := readLines(filepath.Join(base, "seed_workers.txt"))
	if len(names) == 0 {
		return New(ledger.DefaultWorkers())
	}
	workers := make([]core.Worker, 0, len(names))
	for i, n := range names {
		workers = append(workers, core.Worker{ID: int64(i + 1), Name: n})
	}
	return New(workers)
}

func (s *Store) Workers(_ context.Context) ([]core.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Worker, len(s.workers))
	copy(out, s.workers)
	return out, nil
}

func (s *Store) AddWorker(_ context.Context, name string) (core.Worker, error) {
	name, err := core.NewWorkerName(name)
	if err != nil {
		return core.Worker{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w := core.Worker{ID: s.nextID, Name: name}
	s.nextID++
	s.workers = append(s.workers, w)
	return w, nil
}

func (s *Store) RemoveWorker(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.workers {
		if w.ID == id {
			s.workers = append(s.workers[:i], s.workers[i+1:]...)
			return nil
		}
	}
	return core.ErrWorkerNotFound
}

func (s *Store) Entry(_ context.Context, dateKey string) (core.DayEntry, bool, error) {
	dateKey, err := core.NormalizeDateKey(dateKey)
	if err != nil {
		return core.DayEntry{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[dateKey]
	if !ok {
		return core.DayEntry{}, false, nil
	}
	return e.Clone(), true, nil
}

func (s *Store) SaveEntry(_ context.Context, dateKey string, e core.DayEntry) error {
	dateKey, err := core.NormalizeDateKey(dateKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[dateKey] = e.Clone()
	return nil
}

func (s *Store) Entries(_ context.Context) (core.EntryCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Clone(), nil
}

func (s *Store) MonthEntries(_ context.Context, year int, month time.Month) (core.EntryCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.FilterMonth(s.entries, year, month), nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, err := core.NewWorkerName(line)
		if err != nil {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
