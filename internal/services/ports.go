package services

import (
	"context"
	"time"
)

// SyncPublisher announces that a month's published report is stale.
type SyncPublisher interface {
	PublishMonthSync(ctx context.Context, year int, month time.Month, reason string) error
}
