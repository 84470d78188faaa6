// Package events declares the outbound notifications emitted by synchronization cycles.
package events

import (
	"context"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
)

// SyncEventPublisher announces finished synchronization cycles to downstream consumers.
type SyncEventPublisher interface {
	PublishSyncCompleted(ctx context.Context, report domain.SyncReport) error
	Close() error
}

// SyncObserver receives the counters of a synchronization cycle, typically for metrics.
type SyncObserver interface {
	SyncFinished(report domain.SyncReport)
	SnapshotAppended(regime domain.Regime)
	RecordSkipped(reason domain.SkipReason)
}
