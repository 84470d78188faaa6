package repositories

import (
	"context"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
)

// RateSnapshotReader defines read operations for rate snapshots
type RateSnapshotReader interface {
	// ListRateSnapshots retrieves every stored snapshot ordered by date, then creation time.
	ListRateSnapshots(ctx context.Context) ([]domain.RateSnapshot, error)

	// FindLatestSnapshot returns the snapshot with the maximum date that carries an amount
	// for currencyCode in the given regime. It returns apperrors.ErrNotFound when none exists
	// and apperrors.ErrAmbiguous when several snapshots share that maximum date.
	FindLatestSnapshot(ctx context.Context, regime domain.Regime, currencyCode string) (*domain.RateSnapshot, error)

	// FindLatestSnapshotDate returns the most recent snapshot date for a regime.
	FindLatestSnapshotDate(ctx context.Context, regime domain.Regime) (time.Time, error)

	// ListSnapshotsByDate retrieves all snapshots of a regime on a date.
	ListSnapshotsByDate(ctx context.Context, regime domain.Regime, date time.Time) ([]domain.RateSnapshot, error)

	// ListSnapshotsForCurrencyInRange retrieves a currency's snapshots between from and to, inclusive.
	ListSnapshotsForCurrencyInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) ([]domain.RateSnapshot, error)

	// ExistsSnapshot reports whether a snapshot for (regime, date) already targets currencyCode.
	ExistsSnapshot(ctx context.Context, regime domain.Regime, date time.Time, currencyCode string) (bool, error)

	// ListReferencedCurrencyCodes returns the codes used as a target by at least one snapshot.
	ListReferencedCurrencyCodes(ctx context.Context) ([]string, error)
}

// RateSnapshotWriter defines write operations for rate snapshots
type RateSnapshotWriter interface {
	// SaveRateSnapshot appends a snapshot together with its components atomically and
	// returns the stored record.
	SaveRateSnapshot(ctx context.Context, snapshot domain.RateSnapshot) (*domain.RateSnapshot, error)
}

// RateSnapshotRepositoryFacade combines all snapshot-related repository interfaces
type RateSnapshotRepositoryFacade interface {
	RateSnapshotReader
	RateSnapshotWriter
}
