package ledger

import (
	"testing"
	"time"

	"shortlog/internal/core"
)

func TestFilterMonth(t *testing.T) {
	all := core.EntryCollection{
		"2024-03-01": {UnrecordedAmount: 1},
		"2024-03-31": {ShortAmount: 2},
		"2024-04-01": {UnrecordedAmount: 3},
		"2023-03-15": {UnrecordedAmount: 4},
		"garbage":    {UnrecordedAmount: 5},
	}
	got := FilterMonth(all, 2024, time.March)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if _, ok := got["2024-03-31"]; !ok {
		t.Fatalf("missing last day of month")
	}
}

func TestNextID(t *testing.T) {
	if got := NextID(nil); got != 1 {
		t.Fatalf("NextID(nil) = %d", got)
	}
	if got := NextID([]core.Worker{{ID: 7}, {ID: 2}}); got != 8 {
		t.Fatalf("NextID = %d", got)
	}
}
