package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"shortlog/internal/amqp"
	"shortlog/internal/services"
)

// MonthPublisher rebuilds a month report and publishes it.
type MonthPublisher interface {
	Publish(ctx context.Context, year int, month time.Month) error
}

// Consumer delivers month sync messages until ctx is done.
type Consumer interface {
	ConsumeMonthSync(ctx context.Context, handler func(context.Context, *amqp.MonthSyncMessage) error) error
}

// SyncWorker keeps the published month reports in step with the ledger.
// Messages drive it; a periodic resync of the current month covers lost
// messages.
type SyncWorker struct {
	reports MonthPublisher
	now     func() time.Time
}

func NewSyncWorker(reports MonthPublisher) *SyncWorker {
	return &SyncWorker{reports: reports, now: time.Now}
}

// HandleMonthSync processes one message from AMQP.
func (w *SyncWorker) HandleMonthSync(ctx context.Context, msg *amqp.MonthSyncMessage) error {
	year, month := msg.Period()
	slog.InfoContext(ctx, "Processing month sync",
		"message_id", msg.ID,
		"year", year,
		"month", int(month),
		"reason", msg.Reason)

	start := time.Now()
	if err := w.reports.Publish(ctx, year, month); err != nil {
		if errors.Is(err, services.ErrInvalidPeriod) || errors.Is(err, services.ErrSyncDisabled) {
			err = amqp.Permanent(err)
		}
		return fmt.Errorf("publish %d-%02d: %w", year, int(month), err)
	}
	slog.InfoContext(ctx, "Month synced",
		"message_id", msg.ID,
		"year", year,
		"month", int(month),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// SyncCurrentMonth republishes the month containing now.
func (w *SyncWorker) SyncCurrentMonth(ctx context.Context) error {
	now := w.now()
	if err := w.reports.Publish(ctx, now.Year(), now.Month()); err != nil {
		return fmt.Errorf("sync current month: %w", err)
	}
	slog.DebugContext(ctx, "Month synced",
		"year", now.Year(),
		"month", int(now.Month()),
		"reason", amqp.ReasonScheduled)
	return nil
}

// Run syncs the current month once, then consumes messages and resyncs on
// every tick until ctx is cancelled. consumer may be nil.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	if err := w.SyncCurrentMonth(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeMonthSync(gctx, w.HandleMonthSync)
		})
	}
	if interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
					if err := w.SyncCurrentMonth(gctx); err != nil {
						slog.ErrorContext(gctx, "Periodic sync failed", "error", err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
