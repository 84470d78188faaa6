package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsfeed "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/feed"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
)

type fxRateService struct {
	BaseService
	portssvc.CrossRateSvc
	rateSnapshotRepo portsrepo.RateSnapshotReader
	currencyRepo     portsrepo.CurrencyReader
	fetcher          portsfeed.DocumentFetcher
	decoder          portsfeed.DocumentDecoder
}

// NewFxRateService creates the rate query service. When the store holds nothing for a requested
// currency range, fetcher and decoder serve the range live without persisting it; either may be
// nil to disable that fallback.
func NewFxRateService(
	rateSnapshotRepo portsrepo.RateSnapshotReader,
	currencyRepo portsrepo.CurrencyReader,
	crossRate portssvc.CrossRateSvc,
	fetcher portsfeed.DocumentFetcher,
	decoder portsfeed.DocumentDecoder,
) portssvc.FxRateSvcFacade {
	return &fxRateService{
		CrossRateSvc:     crossRate,
		rateSnapshotRepo: rateSnapshotRepo,
		currencyRepo:     currencyRepo,
		fetcher:          fetcher,
		decoder:          decoder,
	}
}

var _ portssvc.FxRateSvcFacade = (*fxRateService)(nil)

func (s *fxRateService) GetCurrentRates(ctx context.Context, regime domain.Regime) ([]domain.RateSnapshot, error) {
	latest, err := s.rateSnapshotRepo.FindLatestSnapshotDate(ctx, regime)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []domain.RateSnapshot{}, nil
		}
		s.LogError(ctx, err, "Failed to find latest snapshot date", slog.String("regime", regime.String()))
		return nil, fmt.Errorf("failed to get current rates: %w", err)
	}
	return s.GetRatesOnDate(ctx, regime, latest)
}

func (s *fxRateService) GetRatesOnDate(ctx context.Context, regime domain.Regime, date time.Time) ([]domain.RateSnapshot, error) {
	snapshots, err := s.rateSnapshotRepo.ListSnapshotsByDate(ctx, regime, domain.TruncateToDate(date))
	if err != nil {
		s.LogError(ctx, err, "Failed to list snapshots by date",
			slog.String("regime", regime.String()),
			slog.String("date", date.Format(domain.DateLayout)))
		return nil, fmt.Errorf("failed to get rates on date: %w", err)
	}
	return nonNil(snapshots), nil
}

func (s *fxRateService) GetRatesForCurrencyInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) ([]domain.RateSnapshot, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	from, to = domain.TruncateToDate(from), domain.TruncateToDate(to)
	if code == "" {
		return nil, apperrors.NewValidationError("currency code is required")
	}
	if from.After(to) {
		return nil, apperrors.NewValidationError("start date must not be after end date")
	}

	snapshots, err := s.rateSnapshotRepo.ListSnapshotsForCurrencyInRange(ctx, regime, code, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list snapshots in range", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to get rates for currency: %w", err)
	}
	if len(snapshots) > 0 || s.fetcher == nil || s.decoder == nil {
		return nonNil(snapshots), nil
	}

	s.LogInfo(ctx, "No stored rates in range, reading from upstream",
		slog.String("currency_code", code),
		slog.String("regime", regime.String()))
	return s.fetchRange(ctx, regime, code, from, to)
}

func (s *fxRateService) fetchRange(ctx context.Context, regime domain.Regime, code string, from, to time.Time) ([]domain.RateSnapshot, error) {
	doc, err := s.fetcher.FetchRatesInRange(ctx, regime, code, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch rates in range", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to fetch rates for currency: %w", err)
	}
	drafts, err := s.decoder.DecodeRates(ctx, doc)
	if err != nil {
		s.LogError(ctx, err, "Failed to decode rates in range", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to decode rates for currency: %w", err)
	}

	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	index := domain.NewCurrencyIndex(currencies)

	snapshots := make([]domain.RateSnapshot, 0, len(drafts))
	for _, draft := range drafts {
		snapshot, reason, _ := resolveDraft(regime, draft, index)
		if reason != domain.SkipNone {
			s.LogDebug(ctx, "Ignoring upstream rate entry", slog.String("reason", string(reason)))
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func nonNil(snapshots []domain.RateSnapshot) []domain.RateSnapshot {
	if snapshots == nil {
		return []domain.RateSnapshot{}
	}
	return snapshots
}
