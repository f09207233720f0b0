package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"shortlog/internal/amqp"
	"shortlog/internal/core"
	"shortlog/internal/ledger"
	"shortlog/internal/report"
)

var (
	ErrInvalidPeriod = errors.New("invalid report period")
	ErrSyncDisabled  = errors.New("report publishing is not configured")
)

// ReportService builds month reports on demand; nothing is cached.
type ReportService struct {
	store     ledger.Store
	renderers map[report.Format]report.Renderer
	publisher report.Publisher
	bus       SyncPublisher
}

// NewReportService wires the renderers by format. publisher and bus are
// optional.
func NewReportService(store ledger.Store, publisher report.Publisher, bus SyncPublisher, renderers ...report.Renderer) *ReportService {
	s := &ReportService{
		store:     store,
		renderers: make(map[report.Format]report.Renderer, len(renderers)),
		publisher: publisher,
		bus:       bus,
	}
	for _, r := range renderers {
		s.renderers[r.Format()] = r
	}
	return s
}

// ValidatePeriod accepts years 1..9999 and months 1..12.
func ValidatePeriod(year int, month time.Month) error {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	return nil
}

// MonthReport loads roster and entries concurrently and aggregates them.
func (s *ReportService) MonthReport(ctx context.Context, year int, month time.Month) (core.MonthReport, error) {
	if err := ValidatePeriod(year, month); err != nil {
		return core.MonthReport{}, err
	}

	var (
		workers []core.Worker
		entries core.EntryCollection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		workers, err = s.store.Workers(gctx)
		if err != nil {
			return fmt.Errorf("load workers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.MonthEntries(gctx, year, month)
		if err != nil {
			return fmt.Errorf("load entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.MonthReport{}, err
	}

	return core.BuildMonthlyReport(workers, entries, year, month), nil
}

// Renderer returns the renderer for a format.
func (s *ReportService) Renderer(f report.Format) (report.Renderer, error) {
	r, ok := s.renderers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", report.ErrUnknownFormat, f)
	}
	return r, nil
}

// Export renders the month report to w.
func (s *ReportService) Export(ctx context.Context, w io.Writer, f report.Format, year int, month time.Month) error {
	r, err := s.Renderer(f)
	if err != nil {
		return err
	}
	mr, err := s.MonthReport(ctx, year, month)
	if err != nil {
		return err
	}
	if err := r.Render(w, mr); err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	slog.InfoContext(ctx, "Report exported",
		"format", string(f),
		"year", year,
		"month", int(month),
		"rows", len(mr.Rows))
	return nil
}

// FileName is the download name for an export.
func (s *ReportService) FileName(f report.Format, year int, month time.Month) string {
	return report.FileName(f, year, month)
}

// Publish rebuilds the month and pushes it to the publisher.
func (s *ReportService) Publish(ctx context.Context, year int, month time.Month) error {
	if s.publisher == nil {
		return ErrSyncDisabled
	}
	mr, err := s.MonthReport(ctx, year, month)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, mr)
}

// RequestSync queues a publish through the bus, or publishes inline when
// no bus is configured. It reports whether the work was queued.
func (s *ReportService) RequestSync(ctx context.Context, year int, month time.Month) (bool, error) {
	if err := ValidatePeriod(year, month); err != nil {
		return false, err
	}
	if s.bus != nil {
		if err := s.bus.PublishMonthSync(ctx, year, month, amqp.ReasonRequested); err != nil {
			return false, fmt.Errorf("queue sync: %w", err)
		}
		return true, nil
	}
	return false, s.Publish(ctx, year, month)
}
