package services

import (
	"context"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FxRateReaderSvc defines read operations for stored rate snapshots
type FxRateReaderSvc interface {
	// GetCurrentRates returns the snapshots of the latest stored date for a regime.
	GetCurrentRates(ctx context.Context, regime domain.Regime) ([]domain.RateSnapshot, error)

	// GetRatesOnDate returns the snapshots of a regime on a given date.
	GetRatesOnDate(ctx context.Context, regime domain.Regime, date time.Time) ([]domain.RateSnapshot, error)

	// GetRatesForCurrencyInRange returns a currency's snapshots between from and to, inclusive.
	GetRatesForCurrencyInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) ([]domain.RateSnapshot, error)
}

// CrossRateSvc derives bilateral rates from the latest anchor-based snapshots.
type CrossRateSvc interface {
	// CrossRate returns how many units of toCode one unit of fromCode buys.
	CrossRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)
}

// FxRateSvcFacade combines all rate-related service interfaces
type FxRateSvcFacade interface {
	FxRateReaderSvc
	CrossRateSvc
}

// ReconciliationSvc merges decoded records into the durable store.
type ReconciliationSvc interface {
	// UpsertCurrencies creates or updates currencies keyed by code and returns how many were written.
	UpsertCurrencies(ctx context.Context, currencies []domain.Currency) (int, error)

	// BuildCurrencyIndex snapshots the stored currency set for reference resolution.
	BuildCurrencyIndex(ctx context.Context) (domain.CurrencyIndex, error)

	// AppendRateSnapshot stores draft as a new snapshot of regime. When the draft is rejected
	// the returned snapshot is nil and the SkipReason says why; err is reserved for store failures.
	AppendRateSnapshot(ctx context.Context, regime domain.Regime, draft domain.RateSnapshotDraft, index domain.CurrencyIndex) (*domain.RateSnapshot, domain.SkipReason, error)
}
