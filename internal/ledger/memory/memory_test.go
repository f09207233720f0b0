package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shortlog/internal/core"
)

func TestMemoryStoreRoster(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Worker{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}})

	w, err := s.AddWorker(ctx, "  Carla ")
	if err != nil || w.ID != 3 || w.Name != "Carla" {
		t.Fatalf("unexpected add: %+v err=%v", w, err)
	}
	if _, err := s.AddWorker(ctx, "   "); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	if err := s.RemoveWorker(ctx, 3); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveWorker(ctx, 3); !errors.Is(err, core.ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}

	// Ids are never reused after a removal.
	w, _ = s.AddWorker(ctx, "Dan")
	if w.ID != 4 {
		t.Fatalf("expected id 4, got %d", w.ID)
	}

	workers, _ := s.Workers(ctx)
	if len(workers) != 3 || workers[2].Name != "Dan" {
		t.Fatalf("unexpected roster: %v", workers)
	}
}

func TestMemoryStoreEntries(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	in := core.DayEntry{UnrecordedAmount: 120, Attendance: []int64{1, 2}}
	if err := s.SaveEntry(ctx, "2024-03-01", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	in.Attendance[0] = 99

	got, ok, err := s.Entry(ctx, "2024-03-01")
	if err != nil || !ok {
		t.Fatalf("entry: ok=%v err=%v", ok, err)
	}
	if got.Attendance[0] != 1 {
		t.Fatalf("store aliases caller slice: %v", got.Attendance)
	}

	if _, ok, _ := s.Entry(ctx, "2024-03-02"); ok {
		t.Fatalf("expected no entry")
	}
	if err := s.SaveEntry(ctx, "03/01/2024", in); !errors.Is(err, core.ErrInvalidDateKey) {
		t.Fatalf("expected ErrInvalidDateKey, got %v", err)
	}

	_ = s.SaveEntry(ctx, "2024-04-01", core.DayEntry{ShortAmount: 5})
	month, _ := s.MonthEntries(ctx, 2024, time.March)
	if len(month) != 1 {
		t.Fatalf("expected 1 march entry, got %d", len(month))
	}
	all, _ := s.Entries(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	workers, _ := s.Workers(context.Background())
	if len(workers) != 4 || workers[0].Name != "Worker A" {
		t.Fatalf("expected default roster, got %v", workers)
	}

	content := "# roster\nAna\nBen\nAna\n\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_workers.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	workers, _ = s.Workers(context.Background())
	if len(workers) != 2 || workers[0].ID != 1 || workers[1].Name != "Ben" {
		t.Fatalf("unexpected seeded roster: %v", workers)
	}
}

func TestMemoryStoreCanonicalisesKeys(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	if err := s.SaveEntry(ctx, " 2024-03-01\n", core.DayEntry{ShortAmount: 5}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, _ := s.Entry(ctx, "2024-03-01"); !ok {
		t.Fatalf("entry saved under a padded key is not found by its canonical key")
	}
	all, _ := s.Entries(ctx)
	if _, ok := all["2024-03-01"]; !ok || len(all) != 1 {
		t.Fatalf("entries = %v", all)
	}
}
