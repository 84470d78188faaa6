package services

import (
	"context"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
)

// SyncSvc drives synchronization cycles and exposes their freshness signal.
type SyncSvc interface {
	// Synchronize runs one full cycle. It returns apperrors.ErrSyncInProgress when another
	// cycle is still running.
	Synchronize(ctx context.Context) (*domain.SyncReport, error)

	// LastSuccessfulSync returns the start date of the last fully successful cycle.
	LastSuccessfulSync() (time.Time, bool)

	// Phase reports where the current cycle is, or SyncIdle.
	Phase() domain.SyncPhase

	// LastReport returns the report of the most recent finished cycle, successful or not.
	LastReport() *domain.SyncReport
}
