// Package scheduler triggers synchronization cycles on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/platform/logging"
)

// SyncScheduler runs portssvc.SyncSvc.Synchronize every interval until its context ends.
type SyncScheduler struct {
	sync      portssvc.SyncSvc
	interval  time.Duration
	onStartup bool
	logger    *slog.Logger
}

// NewSyncScheduler creates a scheduler. When onStartup is set, the first cycle runs immediately
// instead of after one interval.
func NewSyncScheduler(sync portssvc.SyncSvc, interval time.Duration, onStartup bool, logger *slog.Logger) *SyncScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncScheduler{
		sync:      sync,
		interval:  interval,
		onStartup: onStartup,
		logger:    logger.With(slog.String("component", "sync_scheduler")),
	}
}

// Start blocks until ctx is canceled. Cycle errors are logged and never stop the loop.
func (s *SyncScheduler) Start(ctx context.Context) {
	s.logger.Info("Sync scheduler started", slog.Duration("interval", s.interval))
	defer s.logger.Info("Sync scheduler stopped")

	if s.onStartup {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.run(ctx)
	}
}

func (s *SyncScheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx = logging.WithLogger(ctx, s.logger)

	report, err := s.sync.Synchronize(ctx)
	switch {
	case errors.Is(err, apperrors.ErrSyncInProgress):
		s.logger.Info("Scheduled sync skipped, a cycle is already running")
	case err != nil:
		s.logger.Error("Scheduled sync failed", slog.String("error", err.Error()))
	default:
		s.logger.Info("Scheduled sync completed",
			slog.Int("currencies", report.CurrenciesUpserted),
			slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
	}
}
