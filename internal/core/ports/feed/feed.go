// Package feed declares the boundary between the core and the upstream FX rates web service.
package feed

import (
	"context"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
)

// DocumentFetcher retrieves raw XML documents from the upstream service. Every method may
// return an error wrapping apperrors.ErrTransport.
type DocumentFetcher interface {
	FetchCurrencyCatalogue(ctx context.Context) (string, error)
	FetchCurrentRates(ctx context.Context, regime domain.Regime) (string, error)
	FetchRatesOnDate(ctx context.Context, regime domain.Regime, date time.Time) (string, error)
	FetchRatesInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) (string, error)
}

// DocumentDecoder turns upstream documents into domain records without touching state.
type DocumentDecoder interface {
	DecodeCurrencies(ctx context.Context, doc string) ([]domain.Currency, error)
	DecodeRates(ctx context.Context, doc string) ([]domain.RateSnapshotDraft, error)
}
